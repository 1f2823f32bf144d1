package bsgs

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

// CoverageSectors is the number of equal slices the keyspace is split into
// for coverage accounting.
const CoverageSectors = 1 << 16

// Keyspace is the inclusive search interval [A, B].
type Keyspace struct {
	A, B *big.Int
}

// Range is one inclusive sub-range handed to a scanner.
type Range struct {
	K1, K2 *big.Int
}

// ParseKeyspace parses "min:max" in hex. Both bounds must lie in [1, n-1].
func ParseKeyspace(s string) (*Keyspace, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return nil, fmt.Errorf("%w: expected min:max, got %q", ErrKeyspace, s)
	}
	a, err := secp.ParseScalar(lo)
	if err != nil {
		return nil, fmt.Errorf("%w: min: %v", ErrKeyspace, err)
	}
	b, err := secp.ParseScalar(hi)
	if err != nil {
		return nil, fmt.Errorf("%w: max: %v", ErrKeyspace, err)
	}
	return NewKeyspace(a, b)
}

// NewKeyspace validates the bounds.
func NewKeyspace(a, b *big.Int) (*Keyspace, error) {
	n := secp.N()
	switch {
	case a.Sign() <= 0:
		return nil, fmt.Errorf("%w: min must be at least 1", ErrKeyspace)
	case b.Cmp(n) >= 0:
		return nil, fmt.Errorf("%w: max must be below the curve order", ErrKeyspace)
	case a.Cmp(b) > 0:
		return nil, fmt.Errorf("%w: min %x is above max %x", ErrKeyspace, a, b)
	}
	return &Keyspace{A: new(big.Int).Set(a), B: new(big.Int).Set(b)}, nil
}

// Width returns B - A + 1.
func (ks *Keyspace) Width() *big.Int {
	w := new(big.Int).Sub(ks.B, ks.A)
	return w.Add(w, big.NewInt(1))
}

// String renders the keyspace the way it is accepted on the command line.
func (ks *Keyspace) String() string {
	return fmt.Sprintf("%X:%X", ks.A, ks.B)
}

// Random draws two independent uniform scalars in [A, B] and orders them.
// A nil reader means crypto/rand.
func (ks *Keyspace) Random(r io.Reader) (*Range, error) {
	if r == nil {
		r = rand.Reader
	}
	width := ks.Width()
	x, err := rand.Int(r, width)
	if err != nil {
		return nil, fmt.Errorf("draw range bound: %w", err)
	}
	y, err := rand.Int(r, width)
	if err != nil {
		return nil, fmt.Errorf("draw range bound: %w", err)
	}
	x.Add(x, ks.A)
	y.Add(y, ks.A)
	if x.Cmp(y) > 0 {
		x, y = y, x
	}
	return &Range{K1: x, K2: y}, nil
}

// Contains reports whether k lies in [A, B].
func (ks *Keyspace) Contains(k *big.Int) bool {
	return k.Cmp(ks.A) >= 0 && k.Cmp(ks.B) <= 0
}

// Sector maps k onto [0, CoverageSectors).
func (ks *Keyspace) Sector(k *big.Int) uint32 {
	off := new(big.Int).Sub(k, ks.A)
	if off.Sign() < 0 {
		return 0
	}
	off.Mul(off, big.NewInt(CoverageSectors))
	off.Div(off, ks.Width())
	if !off.IsUint64() || off.Uint64() >= CoverageSectors {
		return CoverageSectors - 1
	}
	return uint32(off.Uint64())
}

// Spec renders the range in the scanner's "hex(k1):hex(k2)" form, lowercase
// and unpadded.
func (r *Range) Spec() string {
	return r.K1.Text(16) + ":" + r.K2.Text(16)
}

// String renders the range for display.
func (r *Range) String() string {
	return "0x" + r.K1.Text(16) + " - 0x" + r.K2.Text(16)
}

// ParseRangeSpec is the inverse of Range.Spec.
func ParseRangeSpec(s string) (*Range, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%w: expected k1:k2, got %q", ErrKeyspace, s)
	}
	k1, err := secp.ParseScalar(lo)
	if err != nil {
		return nil, fmt.Errorf("%w: k1: %v", ErrKeyspace, err)
	}
	k2, err := secp.ParseScalar(hi)
	if err != nil {
		return nil, fmt.Errorf("%w: k2: %v", ErrKeyspace, err)
	}
	if k1.Cmp(k2) > 0 {
		return nil, fmt.Errorf("%w: k1 above k2 in %q", ErrKeyspace, s)
	}
	return &Range{K1: k1, K2: k2}, nil
}
