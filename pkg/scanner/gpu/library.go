// Package gpu adapts the external bt2 BSGS library (bt2.so on Linux, bt2.dll
// on Windows) to the bsgs.Scanner interface. The adapter is only compiled
// with -tags bt2; other builds get a stub that reports ErrNotCompiled.
package gpu

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Exported symbols of the library.
const (
	symbolScan = "bsgsGPU"
	symbolFree = "free_memory"
)

var (
	ErrNotCompiled         = errors.New("GPU support not compiled. Build with: go build -tags bt2")
	ErrLibraryMissing      = errors.New("bt2 library not found")
	ErrUnsupportedPlatform = errors.New("[-] Unsupported Platform currently for ctypes dll method. Only [Windows and Linux] is working")
)

// LibraryName returns the file name of the library on goos.
func LibraryName(goos string) (string, error) {
	switch goos {
	case "windows":
		return "bt2.dll", nil
	case "linux":
		return "bt2.so", nil
	default:
		return "", fmt.Errorf("%w (%s)", ErrUnsupportedPlatform, goos)
	}
}

// LocateLibrary resolves path, or the default library name for goos when path
// is empty, to an absolute path of an existing file.
func LocateLibrary(path, goos string) (string, error) {
	if path == "" {
		name, err := LibraryName(goos)
		if err != nil {
			return "", err
		}
		path = name
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: File %s not found", ErrLibraryMissing, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrLibraryMissing, path)
	}
	return abs, nil
}
