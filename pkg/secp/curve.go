// Package secp provides the secp256k1 point arithmetic consumed by the BSGS engine.
// Points travel as 65-byte uncompressed records (0x04 || X || Y) so they can be
// concatenated into flat tables and handed to accelerated backends unchanged.
package secp

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	PointSize      = 65 // 0x04 || X || Y
	CompressedSize = 33 // parity || X
	CoordSize      = 32
)

// ErrInvalidPublicKey is returned when a public key cannot be decoded onto the curve.
var ErrInvalidPublicKey = errors.New("invalid public key")

// Point is an uncompressed secp256k1 point. The zero value is the point at infinity.
type Point [PointSize]byte

// Infinity is the identity element.
var Infinity Point

// IsInfinity reports whether p is the point at infinity.
func (p Point) IsInfinity() bool {
	return p == Infinity
}

// X returns the 32-byte big-endian X coordinate.
func (p Point) X() []byte {
	x := make([]byte, CoordSize)
	copy(x, p[1:1+CoordSize])
	return x
}

// Compressed returns the 33-byte compressed encoding.
func (p Point) Compressed() []byte {
	out := make([]byte, CompressedSize)
	if p.IsInfinity() {
		return out
	}
	out[0] = 0x02 | (p[PointSize-1] & 1)
	copy(out[1:], p[1:1+CoordSize])
	return out
}

// Hex returns the uncompressed encoding as lowercase hex.
func (p Point) Hex() string {
	return hex.EncodeToString(p[:])
}

// N returns a copy of the curve order.
func N() *big.Int {
	return new(big.Int).Set(secp256k1.Params().N)
}

// G returns the generator point.
func G() Point {
	return ScalarMultiplication(big.NewInt(1))
}

// ParsePublicKey decodes a hex public key, compressed (33 bytes) or
// uncompressed (65 bytes), into its uncompressed form.
func ParsePublicKey(s string) (Point, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Infinity, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != CompressedSize && len(raw) != PointSize {
		return Infinity, fmt.Errorf("%w: got %d bytes, expected %d or %d", ErrInvalidPublicKey, len(raw), CompressedSize, PointSize)
	}
	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return Infinity, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	var p Point
	copy(p[:], pub.SerializeUncompressed())
	return p, nil
}

// ParseScalar decodes a hex scalar with an optional 0x prefix.
func ParseScalar(s string) (*big.Int, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if s == "" {
		return nil, errors.New("empty scalar")
	}
	k, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex scalar %q", s)
	}
	return k, nil
}

// ScalarMultiplication returns k*G. k is reduced modulo the curve order first.
func ScalarMultiplication(k *big.Int) Point {
	var s btcec.ModNScalar
	setScalar(&s, k)

	var r btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&s, &r)
	return fromJacobian(&r)
}

// PointAddition returns p + q.
func PointAddition(p, q Point) Point {
	if p.IsInfinity() {
		return q
	}
	if q.IsInfinity() {
		return p
	}
	var pj, qj, r btcec.JacobianPoint
	toJacobian(p, &pj)
	toJacobian(q, &qj)
	btcec.AddNonConst(&pj, &qj, &r)
	return fromJacobian(&r)
}

// PointSubtraction returns p - q.
func PointSubtraction(p, q Point) Point {
	return PointAddition(p, PointNegation(q))
}

// PointNegation returns -p.
func PointNegation(p Point) Point {
	if p.IsInfinity() {
		return p
	}
	var y btcec.FieldVal
	y.SetByteSlice(p[1+CoordSize:])
	y.Negate(1).Normalize()

	out := p
	y.PutBytesUnchecked(out[1+CoordSize:])
	return out
}

// PointDoubling returns 2p.
func PointDoubling(p Point) Point {
	if p.IsInfinity() {
		return p
	}
	var pj, r btcec.JacobianPoint
	toJacobian(p, &pj)
	btcec.DoubleNonConst(&pj, &r)
	return fromJacobian(&r)
}

// PointLoopAddition returns count concatenated records where record i is
// base + i*inc. Only count-1 point additions are performed.
func PointLoopAddition(count uint64, base, inc Point) []byte {
	out := make([]byte, count*PointSize)
	if count == 0 {
		return out
	}

	var acc, step, affine btcec.JacobianPoint
	accInf := !toJacobian(base, &acc)
	incInf := !toJacobian(inc, &step)

	for i := uint64(0); i < count; i++ {
		rec := out[i*PointSize : (i+1)*PointSize]
		if !accInf {
			affine.Set(&acc)
			p := fromJacobian(&affine)
			copy(rec, p[:])
		}
		if i+1 == count || incInf {
			continue
		}
		if accInf {
			acc.Set(&step)
			accInf = false
			continue
		}
		btcec.AddNonConst(&acc, &step, &acc)
		accInf = isInfinity(&acc)
	}
	return out
}

func setScalar(s *btcec.ModNScalar, k *big.Int) {
	m := new(big.Int).Mod(k, secp256k1.Params().N)
	var buf [CoordSize]byte
	m.FillBytes(buf[:])
	s.SetBytes(&buf)
}

// toJacobian loads p into j with Z = 1. It reports false for infinity.
func toJacobian(p Point, j *btcec.JacobianPoint) bool {
	if p.IsInfinity() {
		j.X.SetInt(0)
		j.Y.SetInt(0)
		j.Z.SetInt(0)
		return false
	}
	j.X.SetByteSlice(p[1 : 1+CoordSize])
	j.Y.SetByteSlice(p[1+CoordSize:])
	j.Z.SetInt(1)
	return true
}

func isInfinity(j *btcec.JacobianPoint) bool {
	if j.Z.Normalize().IsZero() {
		return true
	}
	return j.X.Normalize().IsZero() && j.Y.Normalize().IsZero()
}

// fromJacobian converts j to affine in place and serializes it.
func fromJacobian(j *btcec.JacobianPoint) Point {
	if isInfinity(j) {
		return Infinity
	}
	j.ToAffine()

	var p Point
	p[0] = 0x04
	j.X.PutBytesUnchecked(p[1 : 1+CoordSize])
	j.Y.PutBytesUnchecked(p[1+CoordSize:])
	return p
}
