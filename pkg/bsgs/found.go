package bsgs

import (
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

const foundSeparator = "======================================"

// FoundKey is a verified private key and its public point.
type FoundKey struct {
	Key   *big.Int
	Point secp.Point
}

// KeyHex renders the key as 0x-prefixed lowercase hex without padding.
func (f *FoundKey) KeyHex() string {
	return "0x" + f.Key.Text(16)
}

// WriteTo emits the three-line record persisted for every find.
func (f *FoundKey) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "Private Key: %s\nPublic Key: %s\n%s\n", f.KeyHex(), f.Point.Hex(), foundSeparator)
	return int64(n), err
}

// AppendToFile appends the record to path, creating it owner-only.
func (f *FoundKey) AppendToFile(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.WriteTo(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
