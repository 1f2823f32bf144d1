package bsgs

import (
	"fmt"
	"math/big"

	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

// KeyFromMatch converts a scanner hit into the private key of the target.
// pvk*G has the X coordinate found at byte offset idx of the table (idx >= 1),
// so pvk*G = P + (start + (idx-1)/65)*G and the key is the difference mod n.
func KeyFromMatch(pvk *big.Int, idx int, start uint64) *big.Int {
	offset := new(big.Int).SetUint64(uint64((idx - 1) / RecordSize))
	offset.Add(offset, new(big.Int).SetUint64(start))

	key := new(big.Int).Sub(pvk, offset)
	return key.Mod(key, secp.N())
}

// Resolver turns scanner candidates into verified keys.
type Resolver struct {
	table *Table
}

func NewResolver(t *Table) *Resolver {
	return &Resolver{table: t}
}

// Resolve locates pvk*G in the table, derives the key and checks that it
// reproduces the target exactly. An X-only hit on the negated point fails with
// ErrIntegrity.
func (r *Resolver) Resolve(pvkHex string) (*FoundKey, error) {
	pvk, err := secp.ParseScalar(pvkHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCandidate, err)
	}

	q := secp.ScalarMultiplication(pvk)
	if q.IsInfinity() {
		return nil, fmt.Errorf("%w: pvk %s maps to infinity", ErrIntegrity, pvkHex)
	}
	idx := r.table.FindX(q.X())
	if idx < 1 {
		return nil, fmt.Errorf("%w: pvk %s not in baby table", ErrIntegrity, pvkHex)
	}

	key := KeyFromMatch(pvk, idx, r.table.Start)
	p := secp.ScalarMultiplication(key)
	if p != r.table.Target {
		return nil, fmt.Errorf("%w: pvk %s idx %d gives %s", ErrIntegrity, pvkHex, idx, p.Hex())
	}
	return &FoundKey{Key: key, Point: p}, nil
}
