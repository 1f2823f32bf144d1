package bsgs

import (
	"bytes"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/spaolacci/murmur3"

	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

// Table is the baby table: Count concatenated records where record i is
// Target + (Start+i)*G. It is read-only once built.
type Table struct {
	Points []byte
	Count  uint32
	Bits   uint32
	Start  uint64
	Target secp.Point

	index *Index
}

// BuildTable computes the baby table for target with count records starting
// at target + start*G.
func BuildTable(target secp.Point, count uint32, start uint64) (*Table, error) {
	if err := checkShape(count, start); err != nil {
		return nil, err
	}

	base := target
	if start > 0 {
		base = secp.PointAddition(target, secp.ScalarMultiplication(new(big.Int).SetUint64(start)))
	}
	points := secp.PointLoopAddition(uint64(count), base, secp.G())
	return newTable(target, count, start, points), nil
}

// NewTable wraps precomputed records, e.g. read back from disk.
func NewTable(target secp.Point, count uint32, start uint64, points []byte) (*Table, error) {
	if err := checkShape(count, start); err != nil {
		return nil, err
	}
	if len(points) != int(count)*RecordSize {
		return nil, fmt.Errorf("%w: %d bytes for %d records", ErrTableMismatch, len(points), count)
	}
	return newTable(target, count, start, points), nil
}

func newTable(target secp.Point, count uint32, start uint64, points []byte) *Table {
	return &Table{
		Points: points,
		Count:  count,
		Bits:   uint32(bits.TrailingZeros32(count)),
		Start:  start,
		Target: target,
		index:  NewIndex(points),
	}
}

func checkShape(count uint32, start uint64) error {
	if !isPowerOfTwo(count) {
		return fmt.Errorf("%w: got %d", ErrTableSize, count)
	}
	if start >= uint64(count) {
		return fmt.Errorf("%w: start %d with %d records", ErrTableStart, start, count)
	}
	return nil
}

// Record returns record i.
func (t *Table) Record(i uint32) secp.Point {
	var p secp.Point
	copy(p[:], t.Points[int(i)*RecordSize:int(i+1)*RecordSize])
	return p
}

// FindX returns the byte offset of x inside Points (record*65 + 1), or -1.
func (t *Table) FindX(x []byte) int {
	rec := t.index.Lookup(x)
	if rec < 0 {
		return -1
	}
	return rec*RecordSize + 1
}

// Contains reports whether p is a record of the table.
func (t *Table) Contains(p secp.Point) bool {
	rec := t.index.Lookup(p[1 : 1+secp.CoordSize])
	if rec < 0 {
		return false
	}
	return bytes.Equal(t.Points[rec*RecordSize:(rec+1)*RecordSize], p[:])
}

// Index maps record X coordinates to record numbers. Keys are murmur3 hashes
// of X; hash collisions fall through to an explicit compare. When two records
// share an X (Q and -Q), only the first is returned by Lookup.
type Index struct {
	points []byte
	first  map[uint64]uint32
	spill  map[uint64][]uint32
}

// NewIndex indexes the X coordinate of every record in points.
// Infinity records are skipped.
func NewIndex(points []byte) *Index {
	n := len(points) / RecordSize
	ix := &Index{
		points: points,
		first:  make(map[uint64]uint32, n),
	}
	for i := 0; i < n; i++ {
		rec := points[i*RecordSize : (i+1)*RecordSize]
		if rec[0] == 0 {
			continue
		}
		h := murmur3.Sum64(rec[1 : 1+secp.CoordSize])
		if _, dup := ix.first[h]; !dup {
			ix.first[h] = uint32(i)
			continue
		}
		if ix.spill == nil {
			ix.spill = make(map[uint64][]uint32)
		}
		ix.spill[h] = append(ix.spill[h], uint32(i))
	}
	return ix
}

// Lookup returns the first record whose X equals x, or -1.
func (ix *Index) Lookup(x []byte) int {
	h := murmur3.Sum64(x)
	rec, ok := ix.first[h]
	if !ok {
		return -1
	}
	if ix.matchX(rec, x) {
		return int(rec)
	}
	for _, r := range ix.spill[h] {
		if ix.matchX(r, x) {
			return int(r)
		}
	}
	return -1
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	n := len(ix.first)
	for _, recs := range ix.spill {
		n += len(recs)
	}
	return n
}

func (ix *Index) matchX(rec uint32, x []byte) bool {
	off := int(rec)*RecordSize + 1
	return bytes.Equal(ix.points[off:off+secp.CoordSize], x)
}
