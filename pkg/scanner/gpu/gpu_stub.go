//go:build !bt2 || !((linux && cgo) || windows)

package gpu

import (
	"context"
	"fmt"
	"runtime"

	"github.com/Amr-9/BSGSHunter/pkg/bsgs"
)

// Scanner is a stub for builds without the bt2 adapter.
type Scanner struct{}

// Available returns false when the adapter is not compiled.
func Available() bool { return false }

// Open reports why no GPU scanner is available.
func Open(path string) (*Scanner, error) {
	if _, err := LibraryName(runtime.GOOS); err != nil {
		return nil, err
	}
	return nil, ErrNotCompiled
}

// Name returns the implementation name.
func (s *Scanner) Name() string {
	return "GPU (Disabled)"
}

// Scan returns ErrNotCompiled.
func (s *Scanner) Scan(context.Context, *bsgs.ScanRequest) (bsgs.ScanResult, error) {
	return nil, fmt.Errorf("scan: %w", ErrNotCompiled)
}

// Close does nothing.
func (s *Scanner) Close() error { return nil }
