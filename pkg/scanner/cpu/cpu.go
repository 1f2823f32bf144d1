// Package cpu is a giant-step scanner that runs on goroutines. It implements
// the same contract as the accelerated library so it can stand in for it when
// no GPU build is available.
package cpu

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/willf/bloom"

	"github.com/Amr-9/BSGSHunter/pkg/bsgs"
	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

const bloomFalsePositive = 0.001

// Scanner walks c = k1 + m*N for every m in [0, (k2-k1)/N + 2] and reports
// the first c whose c*G is a record of the table. Lanes keep c*G and add N*G
// per step, so each step costs one point addition.
type Scanner struct {
	steps uint64 // atomic, giant steps taken since New

	mu     sync.Mutex
	lookup *lookup
	pool   sync.Pool
}

// New creates a CPU scanner.
func New() *Scanner {
	return &Scanner{
		pool: sync.Pool{New: func() any {
			b := make([]byte, 0, 2*secp.CoordSize)
			return &b
		}},
	}
}

// Name returns the implementation name.
func (s *Scanner) Name() string {
	return "CPU"
}

// Steps returns the number of giant steps taken so far.
func (s *Scanner) Steps() uint64 {
	return atomic.LoadUint64(&s.steps)
}

// lookup is the membership structure for one table buffer: a bloom filter in
// front of the X index, then an exact record compare.
type lookup struct {
	first  *byte
	size   int
	table  []byte
	filter *bloom.BloomFilter
	index  *bsgs.Index
}

func newLookup(table []byte, count uint32) *lookup {
	filter := bloom.NewWithEstimates(uint(count), bloomFalsePositive)
	for i := 0; i < int(count); i++ {
		rec := table[i*bsgs.RecordSize : (i+1)*bsgs.RecordSize]
		if rec[0] != 0 {
			filter.Add(rec[1 : 1+secp.CoordSize])
		}
	}
	return &lookup{
		first:  &table[0],
		size:   len(table),
		table:  table,
		filter: filter,
		index:  bsgs.NewIndex(table),
	}
}

func (l *lookup) match(p *secp.Point) bool {
	x := p[1 : 1+secp.CoordSize]
	if !l.filter.Test(x) {
		return false
	}
	rec := l.index.Lookup(x)
	if rec < 0 {
		return false
	}
	return bytes.Equal(l.table[rec*bsgs.RecordSize:(rec+1)*bsgs.RecordSize], p[:])
}

// prepare reuses the lookup built for the same table buffer.
func (s *Scanner) prepare(table []byte, count uint32) *lookup {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l := s.lookup; l != nil && l.first == &table[0] && l.size == len(table) {
		return l
	}
	s.lookup = newLookup(table, count)
	return s.lookup
}

type workItem struct {
	first *big.Int // c of the first step
	steps uint64
}

// Scan implements bsgs.Scanner.
func (s *Scanner) Scan(ctx context.Context, req *bsgs.ScanRequest) (bsgs.ScanResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	rng, err := bsgs.ParseRangeSpec(req.RangeSpec)
	if err != nil {
		return nil, err
	}
	lk := s.prepare(req.Table, req.TableCount)

	n := new(big.Int).SetUint64(uint64(req.TableCount))
	stride := secp.ScalarMultiplication(n)

	total := new(big.Int).Sub(rng.K2, rng.K1)
	total.Div(total, n)
	total.Add(total, big.NewInt(3))
	chunk := uint64(req.Blocks) * uint64(req.PointsPerThread)

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := make(chan workItem, req.Threads)
	found := make(chan *big.Int, 1)
	var wg sync.WaitGroup
	for i := uint32(0); i < req.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.lane(scanCtx, lk, stride, n, work, found, cancel)
		}()
	}

	m := new(big.Int)
feed:
	for m.Cmp(total) < 0 {
		steps := chunk
		if left := new(big.Int).Sub(total, m); left.IsUint64() && left.Uint64() < steps {
			steps = left.Uint64()
		}
		first := new(big.Int).Mul(m, n)
		first.Add(first, rng.K1)

		select {
		case work <- workItem{first: first, steps: steps}:
		case <-scanCtx.Done():
			break feed
		}
		m.Add(m, new(big.Int).SetUint64(steps))
	}
	close(work)
	wg.Wait()

	select {
	case c := <-found:
		c.Mod(c, secp.N())
		return s.result(c.Text(16)), nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.result(""), nil
}

// lane consumes work items until the channel closes or the scan is cancelled.
func (s *Scanner) lane(ctx context.Context, lk *lookup, stride secp.Point, n *big.Int,
	work <-chan workItem, found chan<- *big.Int, cancel context.CancelFunc) {
	for item := range work {
		if ctx.Err() != nil {
			return
		}
		c := item.first
		p := secp.ScalarMultiplication(c)
		for j := uint64(0); j < item.steps; j++ {
			if !p.IsInfinity() && lk.match(&p) {
				select {
				case found <- c:
				default:
				}
				cancel()
				return
			}
			p = secp.PointAddition(p, stride)
			c.Add(c, n)
		}
		atomic.AddUint64(&s.steps, item.steps)
	}
}

func validate(req *bsgs.ScanRequest) error {
	switch {
	case req.Threads == 0 || req.Blocks == 0 || req.PointsPerThread == 0:
		return fmt.Errorf("cpu scanner: threads, blocks and points must be positive")
	case req.TableCount == 0:
		return fmt.Errorf("cpu scanner: empty baby table")
	case len(req.Table) != int(req.TableCount)*bsgs.RecordSize:
		return fmt.Errorf("cpu scanner: table holds %d bytes, expected %d records", len(req.Table), req.TableCount)
	}
	return nil
}

// result hands the pvk text out of a pooled buffer.
type result struct {
	buf      *[]byte
	pool     *sync.Pool
	released atomic.Bool
}

func (s *Scanner) result(text string) *result {
	buf := s.pool.Get().(*[]byte)
	*buf = append((*buf)[:0], text...)
	return &result{buf: buf, pool: &s.pool}
}

func (r *result) Text() string {
	if r.released.Load() {
		return ""
	}
	return string(*r.buf)
}

func (r *result) Release() {
	if r.released.Swap(true) {
		return
	}
	*r.buf = (*r.buf)[:0]
	r.pool.Put(r.buf)
}
