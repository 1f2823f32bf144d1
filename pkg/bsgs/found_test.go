package bsgs

import (
	"bytes"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoundKeyWriteTo(t *testing.T) {
	f := &FoundKey{Key: big.NewInt(0xabc), Point: mul(0xabc)}

	var buf bytes.Buffer
	n, err := f.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Private Key: 0xabc", lines[0])
	assert.Equal(t, "Public Key: "+mul(0xabc).Hex(), lines[1])
	assert.Equal(t, "======================================", lines[2])
}

func TestFoundKeyAppendToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "found_keys.txt")

	require.NoError(t, (&FoundKey{Key: big.NewInt(1), Point: mul(1)}).AppendToFile(path))
	require.NoError(t, (&FoundKey{Key: big.NewInt(2), Point: mul(2)}).AppendToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "Private Key: "))
	assert.True(t, strings.HasPrefix(string(data), "Private Key: 0x1\n"))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}
