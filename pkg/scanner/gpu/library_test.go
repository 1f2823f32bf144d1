package gpu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryName(t *testing.T) {
	name, err := LibraryName("windows")
	require.NoError(t, err)
	assert.Equal(t, "bt2.dll", name)

	name, err = LibraryName("linux")
	require.NoError(t, err)
	assert.Equal(t, "bt2.so", name)

	_, err = LibraryName("darwin")
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestLocateLibrary(t *testing.T) {
	dir := t.TempDir()

	_, err := LocateLibrary(filepath.Join(dir, "bt2.so"), "linux")
	assert.ErrorIs(t, err, ErrLibraryMissing)

	_, err = LocateLibrary(dir, "linux")
	assert.ErrorIs(t, err, ErrLibraryMissing)

	lib := filepath.Join(dir, "custom.so")
	require.NoError(t, os.WriteFile(lib, []byte{0}, 0644))
	got, err := LocateLibrary(lib, "linux")
	require.NoError(t, err)
	assert.Equal(t, lib, got)

	_, err = LocateLibrary("", "plan9")
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}
