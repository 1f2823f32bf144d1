package bsgs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Amr-9/BSGSHunter/internal/logs"
	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

// Table file layout, little endian:
//
//	magic  [8]byte  "BSGSTBL1"
//	count  uint32
//	start  uint64
//	target [65]byte
//	points [count*65]byte
var tableMagic = [8]byte{'B', 'S', 'G', 'S', 'T', 'B', 'L', '1'}

type tableHeader struct {
	Magic  [8]byte
	Count  uint32
	Start  uint64
	Target secp.Point
}

const tableHeaderSize = 8 + 4 + 8 + secp.PointSize

// WriteTo serializes the table.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	hdr := tableHeader{Magic: tableMagic, Count: t.Count, Start: t.Start, Target: t.Target}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return 0, fmt.Errorf("write table header: %w", err)
	}
	n, err := w.Write(t.Points)
	if err != nil {
		return int64(tableHeaderSize + n), fmt.Errorf("write table records: %w", err)
	}
	return int64(tableHeaderSize + n), nil
}

// WriteFile saves the table to path.
func (t *Table) WriteFile(path string) error {
	var buf bytes.Buffer
	buf.Grow(tableHeaderSize + len(t.Points))
	if _, err := t.WriteTo(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// ReadTable decodes a serialized table.
func ReadTable(r io.Reader) (*Table, error) {
	var hdr tableHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read table header: %w", err)
	}
	if hdr.Magic != tableMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrTableMismatch, hdr.Magic[:])
	}
	if err := checkShape(hdr.Count, hdr.Start); err != nil {
		return nil, err
	}
	// The header count is untrusted: read what is there, then compare.
	want := int64(hdr.Count) * RecordSize
	points, err := io.ReadAll(io.LimitReader(r, want))
	if err != nil {
		return nil, fmt.Errorf("read table records: %w", err)
	}
	if int64(len(points)) != want {
		return nil, fmt.Errorf("%w: header claims %d records, file holds %d bytes of records",
			ErrTableMismatch, hdr.Count, len(points))
	}
	return NewTable(hdr.Target, hdr.Count, hdr.Start, points)
}

// ReadTableFile loads a table and checks that it was built for target with
// the given shape.
func ReadTableFile(path string, target secp.Point, count uint32, start uint64) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if want := tableHeaderSize + int64(count)*RecordSize; info.Size() != want {
		return nil, fmt.Errorf("%w: %s is %d bytes, expected %d for %d records",
			ErrTableMismatch, path, info.Size(), want, count)
	}

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	switch {
	case t.Target != target:
		return nil, fmt.Errorf("%w: %s was built for a different public key", ErrTableMismatch, path)
	case t.Count != count:
		return nil, fmt.Errorf("%w: %s has %d records, expected %d", ErrTableMismatch, path, t.Count, count)
	case t.Start != start:
		return nil, fmt.Errorf("%w: %s starts at %d, expected %d", ErrTableMismatch, path, t.Start, start)
	}
	return t, nil
}

// LoadOrBuildTable reads the cached table at path, or builds it and saves it
// there when the file does not exist yet. An empty path always builds. The
// second return value reports whether the table was built.
func LoadOrBuildTable(path string, target secp.Point, count uint32, start uint64) (*Table, bool, error) {
	if path != "" {
		t, err := ReadTableFile(path, target, count, start)
		if err == nil {
			return t, false, nil
		}
		if !os.IsNotExist(err) {
			return nil, false, err
		}
	}

	t, err := BuildTable(target, count, start)
	if err != nil {
		return nil, false, err
	}
	if path != "" {
		if err := t.WriteFile(path); err != nil {
			logs.Warn("could not cache baby table: %v", err)
		} else {
			hideFile(path)
		}
	}
	return t, true, nil
}
