package bsgs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/Amr-9/BSGSHunter/internal/logs"
)

// State is the position of the driver in its search loop.
type State int32

const (
	StateIdle State = iota
	StateRangeSelect
	StateScanning
	StateResolving
	StateFound
	StateExhausted // unused: random ranges never exhaust the keyspace
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRangeSelect:
		return "selecting range"
	case StateScanning:
		return "scanning"
	case StateResolving:
		return "resolving"
	case StateFound:
		return "found"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// RangeReport describes one completed range without a find.
type RangeReport struct {
	Iteration uint64
	Range     *Range
	Elapsed   time.Duration
	Rate      float64 // nominal Attempts / Elapsed
}

// Reporter receives progress events from the driver goroutine.
type Reporter interface {
	RangeSearched(r RangeReport)
	CandidateFound(pvk string)
	IntegrityMiss(pvk string, err error)
}

type nopReporter struct{}

func (nopReporter) RangeSearched(RangeReport)   {}
func (nopReporter) CandidateFound(string)       {}
func (nopReporter) IntegrityMiss(string, error) {}

// Driver draws random ranges and scans them until the key is found.
type Driver struct {
	cfg      *Config
	keyspace *Keyspace
	table    *Table
	scanner  Scanner
	resolver *Resolver
	reporter Reporter
	rand     io.Reader
	now      func() time.Time

	state atomic.Int32
	stats *tracker
}

func NewDriver(cfg *Config, ks *Keyspace, table *Table, scanner Scanner) *Driver {
	return &Driver{
		cfg:      cfg,
		keyspace: ks,
		table:    table,
		scanner:  scanner,
		resolver: NewResolver(table),
		reporter: nopReporter{},
		now:      time.Now,
		stats:    newTracker(cfg.Attempts),
	}
}

// WithReporter sets the progress sink.
func (d *Driver) WithReporter(r Reporter) *Driver {
	if r != nil {
		d.reporter = r
	}
	return d
}

// WithRand sets the entropy source for range draws (crypto/rand by default).
func (d *Driver) WithRand(r io.Reader) *Driver {
	d.rand = r
	return d
}

func (d *Driver) State() State {
	return State(d.state.Load())
}

// Stats returns a snapshot; it may be called from any goroutine.
func (d *Driver) Stats() Stats {
	return d.stats.snapshot(d.now())
}

func (d *Driver) setState(s State) {
	d.state.Store(int32(s))
}

// Run searches until a verified key is found, ctx is cancelled or the
// scanner fails. Integrity misses are logged and the search continues.
func (d *Driver) Run(ctx context.Context) (*FoundKey, error) {
	d.stats.start(d.now())
	defer func() {
		if d.State() != StateFound {
			d.setState(StateIdle)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d.setState(StateRangeSelect)
		rng, err := d.keyspace.Random(d.rand)
		if err != nil {
			return nil, err
		}

		d.setState(StateScanning)
		req := NewScanRequest(d.cfg, d.table, rng)
		began := d.now()
		pvk, err := ScanText(ctx, d.scanner, req)
		elapsed := d.now().Sub(began)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %s on %s: %w", ErrScanner, d.scanner.Name(), rng.Spec(), err)
		}
		rate := d.stats.rangeDone(d.keyspace, rng, elapsed)

		if pvk != "" {
			d.setState(StateResolving)
			d.reporter.CandidateFound(pvk)
			found, err := d.resolver.Resolve(pvk)
			if err == nil {
				d.setState(StateFound)
				return found, nil
			}
			if !errors.Is(err, ErrIntegrity) && !errors.Is(err, ErrBadCandidate) {
				return nil, err
			}
			d.stats.mismatch()
			logs.Warn("Something is wrong: %v", err)
			d.reporter.IntegrityMiss(pvk, err)
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}

		d.reporter.RangeSearched(RangeReport{
			Iteration: d.Stats().Iterations,
			Range:     rng,
			Elapsed:   elapsed,
			Rate:      rate,
		})
	}
}
