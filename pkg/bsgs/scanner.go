package bsgs

import (
	"context"
	"strconv"
)

// ScanRequest carries the arguments of one giant-step scan. The field order
// mirrors the accelerated library's entry point.
type ScanRequest struct {
	Threads         uint32
	Blocks          uint32
	PointsPerThread uint32
	RangeBits       uint32 // log2(TableCount)
	Device          int
	Table           []byte // TableCount*65 bytes, read-only
	TableCount      uint32
	RangeSpec       string // "hex(k1):hex(k2)"
	BabySize        string // decimal table size
}

// ScanResult is the scanner-owned answer of a scan. Text is "" when nothing
// matched, otherwise a lowercase hex scalar whose multiple of G is a table
// record. Release must be called exactly once, after Text has been copied.
type ScanResult interface {
	Text() string
	Release()
}

// Scanner searches one range for a point whose X coordinate is in the table.
// Scan blocks until the whole range is covered, a match is found, or the
// scanner gives up on ctx.
type Scanner interface {
	Scan(ctx context.Context, req *ScanRequest) (ScanResult, error)
	Name() string
}

// TextResult is a ScanResult that owns no foreign memory.
type TextResult string

func (r TextResult) Text() string { return string(r) }

func (TextResult) Release() {}

// NewScanRequest assembles the request for scanning rng against table.
func NewScanRequest(cfg *Config, table *Table, rng *Range) *ScanRequest {
	return &ScanRequest{
		Threads:         cfg.Threads,
		Blocks:          cfg.Blocks,
		PointsPerThread: cfg.Points,
		RangeBits:       table.Bits,
		Device:          cfg.Device,
		Table:           table.Points,
		TableCount:      table.Count,
		RangeSpec:       rng.Spec(),
		BabySize:        strconv.FormatUint(uint64(table.Count), 10),
	}
}

// ScanText runs one scan and returns a copy of the result text. The result
// buffer is released on every path.
func ScanText(ctx context.Context, s Scanner, req *ScanRequest) (string, error) {
	res, err := s.Scan(ctx, req)
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", nil
	}
	defer res.Release()
	return res.Text(), nil
}
