package bsgs

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

func mul(k int64) secp.Point {
	return secp.ScalarMultiplication(big.NewInt(k))
}

func TestBuildTableRecords(t *testing.T) {
	target := mul(5)
	for _, start := range []uint64{0, 1, 3} {
		tbl, err := BuildTable(target, 8, start)
		require.NoError(t, err)
		assert.Equal(t, uint32(8), tbl.Count)
		assert.Equal(t, uint32(3), tbl.Bits)
		assert.Len(t, tbl.Points, 8*RecordSize)

		for i := uint32(0); i < 8; i++ {
			want := mul(5 + int64(start) + int64(i))
			assert.Equal(t, want, tbl.Record(i), "start %d record %d", start, i)
			assert.True(t, tbl.Contains(want))
		}
	}
}

func TestBuildTableDeterministic(t *testing.T) {
	target := mul(123456789)
	a, err := BuildTable(target, 256, 1)
	require.NoError(t, err)
	b, err := BuildTable(target, 256, 1)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a.Points, b.Points))
}

func TestBuildTableShape(t *testing.T) {
	_, err := BuildTable(mul(5), 6, 0)
	assert.ErrorIs(t, err, ErrTableSize)
	_, err = BuildTable(mul(5), 0, 0)
	assert.ErrorIs(t, err, ErrTableSize)
	_, err = BuildTable(mul(5), 8, 8)
	assert.ErrorIs(t, err, ErrTableStart)

	_, err = NewTable(mul(5), 8, 0, make([]byte, 7*RecordSize))
	assert.ErrorIs(t, err, ErrTableMismatch)
}

func TestFindX(t *testing.T) {
	tbl, err := BuildTable(mul(5), 8, 1)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		p := mul(6 + int64(i))
		assert.Equal(t, i*RecordSize+1, tbl.FindX(p.X()))

		// The negated point shares X but is not a record.
		neg := secp.PointNegation(p)
		assert.Equal(t, i*RecordSize+1, tbl.FindX(neg.X()))
		assert.False(t, tbl.Contains(neg))
	}
	assert.Equal(t, -1, tbl.FindX(mul(100).X()))
}

func TestIndexDuplicateX(t *testing.T) {
	g := secp.G()
	two := mul(2)
	points := append(append(append([]byte{}, g[:]...), two[:]...), g[:]...)

	ix := NewIndex(points)
	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, 0, ix.Lookup(g.X()))
	assert.Equal(t, 1, ix.Lookup(two.X()))

	neg := secp.PointNegation(g)
	ix = NewIndex(append(append([]byte{}, g[:]...), neg[:]...))
	assert.Equal(t, 0, ix.Lookup(neg.X()))
}

func TestIndexSkipsInfinity(t *testing.T) {
	points := make([]byte, 2*RecordSize)
	g := secp.G()
	copy(points[RecordSize:], g[:])

	ix := NewIndex(points)
	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, -1, ix.Lookup(make([]byte, secp.CoordSize)))
	assert.Equal(t, 1, ix.Lookup(g.X()))
}

func TestTableFileRoundTrip(t *testing.T) {
	target := mul(77)
	tbl, err := BuildTable(target, 16, 1)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "table.bin")
	require.NoError(t, tbl.WriteFile(path))

	back, err := ReadTableFile(path, target, 16, 1)
	require.NoError(t, err)
	assert.Equal(t, tbl.Points, back.Points)
	assert.Equal(t, tbl.Bits, back.Bits)
	assert.Equal(t, tbl.FindX(mul(80).X()), back.FindX(mul(80).X()))

	_, err = ReadTableFile(path, mul(78), 16, 1)
	assert.ErrorIs(t, err, ErrTableMismatch)
	_, err = ReadTableFile(path, target, 32, 1)
	assert.ErrorIs(t, err, ErrTableMismatch)
	_, err = ReadTableFile(path, target, 16, 0)
	assert.ErrorIs(t, err, ErrTableMismatch)
}

func TestReadTableBadMagic(t *testing.T) {
	_, err := ReadTable(bytes.NewReader(make([]byte, tableHeaderSize)))
	assert.ErrorIs(t, err, ErrTableMismatch)
}

func TestReadTableForgedCount(t *testing.T) {
	var buf bytes.Buffer
	hdr := tableHeader{Magic: tableMagic, Count: 1 << 31, Start: 1, Target: mul(7)}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &hdr))

	_, err := ReadTable(&buf)
	assert.ErrorIs(t, err, ErrTableMismatch)
}

func TestReadTableTruncated(t *testing.T) {
	tbl, err := BuildTable(mul(7), 8, 1)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = tbl.WriteTo(&buf)
	require.NoError(t, err)
	data := buf.Bytes()[:buf.Len()-RecordSize]

	_, err = ReadTable(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrTableMismatch)

	path := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(path, data, 0644))
	_, _, err = LoadOrBuildTable(path, mul(7), 8, 1)
	assert.ErrorIs(t, err, ErrTableMismatch)
}

func TestLoadOrBuildTable(t *testing.T) {
	target := mul(99)
	path := filepath.Join(t.TempDir(), "cache.bin")

	first, built, err := LoadOrBuildTable(path, target, 8, 1)
	require.NoError(t, err)
	assert.True(t, built)

	second, built, err := LoadOrBuildTable(path, target, 8, 1)
	require.NoError(t, err)
	assert.False(t, built)
	assert.Equal(t, first.Points, second.Points)

	_, _, err = LoadOrBuildTable(path, mul(100), 8, 1)
	assert.ErrorIs(t, err, ErrTableMismatch)

	_, built, err = LoadOrBuildTable("", target, 8, 1)
	require.NoError(t, err)
	assert.True(t, built)
}
