package bsgs

import (
	"bytes"
	"context"
	"errors"
	mrand "math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countedResult struct {
	text     string
	released *int
}

func (r *countedResult) Text() string { return r.text }
func (r *countedResult) Release()     { *r.released++ }

// scriptScanner replays results in order and returns "" once they run out.
type scriptScanner struct {
	results  []string
	errs     []error
	onScan   func(call int)
	calls    int
	released int
	reqs     []*ScanRequest
}

func (s *scriptScanner) Name() string { return "script" }

func (s *scriptScanner) Scan(_ context.Context, req *ScanRequest) (ScanResult, error) {
	s.calls++
	s.reqs = append(s.reqs, req)
	if s.onScan != nil {
		s.onScan(s.calls)
	}
	i := s.calls - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	text := ""
	if i < len(s.results) {
		text = s.results[i]
	}
	return &countedResult{text: text, released: &s.released}, nil
}

type recordingReporter struct {
	searched   []RangeReport
	candidates []string
	misses     []error
}

func (r *recordingReporter) RangeSearched(rep RangeReport)   { r.searched = append(r.searched, rep) }
func (r *recordingReporter) CandidateFound(pvk string)       { r.candidates = append(r.candidates, pvk) }
func (r *recordingReporter) IntegrityMiss(_ string, e error) { r.misses = append(r.misses, e) }

func newTestDriver(t *testing.T, start uint64, sc Scanner) (*Driver, *Table, *Keyspace) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.PublicKey = pubOf(5)
	cfg.BabySize = 8
	cfg.TableStart = start
	cfg.Keyspace = "1:100"
	require.NoError(t, cfg.Validate())

	tbl, err := BuildTable(mul(5), cfg.BabySize, cfg.TableStart)
	require.NoError(t, err)
	ks, err := ParseKeyspace(cfg.Keyspace)
	require.NoError(t, err)

	d := NewDriver(cfg, ks, tbl, sc).WithRand(mrand.New(mrand.NewSource(1)))
	return d, tbl, ks
}

func TestDriverFindsFiveG(t *testing.T) {
	for _, start := range []uint64{0, 1} {
		sc := &scriptScanner{results: []string{"9"}}
		rep := &recordingReporter{}
		d, _, _ := newTestDriver(t, start, sc)
		d.WithReporter(rep)

		found, err := d.Run(context.Background())
		require.NoError(t, err, "start %d", start)
		assert.Equal(t, int64(5), found.Key.Int64())
		assert.Equal(t, StateFound, d.State())
		assert.Equal(t, 1, sc.calls)
		assert.Equal(t, 1, sc.released)
		assert.Equal(t, []string{"9"}, rep.candidates)
		assert.Empty(t, rep.searched)
	}
}

func TestDriverScanRequest(t *testing.T) {
	sc := &scriptScanner{results: []string{"9"}}
	d, tbl, ks := newTestDriver(t, 1, sc)

	_, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sc.reqs, 1)

	req := sc.reqs[0]
	assert.Equal(t, uint32(64), req.Threads)
	assert.Equal(t, uint32(10), req.Blocks)
	assert.Equal(t, uint32(256), req.PointsPerThread)
	assert.Equal(t, uint32(3), req.RangeBits)
	assert.Equal(t, uint32(8), req.TableCount)
	assert.Equal(t, "8", req.BabySize)
	assert.Equal(t, tbl.Points, req.Table)

	rng, err := ParseRangeSpec(req.RangeSpec)
	require.NoError(t, err)
	assert.True(t, ks.Contains(rng.K1))
	assert.True(t, ks.Contains(rng.K2))
	assert.Equal(t, rng.Spec(), req.RangeSpec)
}

func TestDriverContinuesAfterEmptyScans(t *testing.T) {
	sc := &scriptScanner{results: []string{"", "", "9"}}
	rep := &recordingReporter{}
	d, _, _ := newTestDriver(t, 1, sc)
	d.WithReporter(rep)

	found, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), found.Key.Int64())
	assert.Equal(t, 3, sc.calls)
	assert.Equal(t, 3, sc.released)
	require.Len(t, rep.searched, 2)
	assert.Equal(t, uint64(1), rep.searched[0].Iteration)
	assert.Equal(t, uint64(2), rep.searched[1].Iteration)

	st := d.Stats()
	assert.Equal(t, uint64(3), st.Iterations)
	assert.Zero(t, st.Mismatches)
	assert.Greater(t, st.Coverage, 0.0)
}

func TestDriverIntegrityMissIsSoft(t *testing.T) {
	negNine := "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364138"
	sc := &scriptScanner{results: []string{negNine, "garbage", "9"}}
	rep := &recordingReporter{}
	d, _, _ := newTestDriver(t, 1, sc)
	d.WithReporter(rep)

	found, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), found.Key.Int64())
	assert.Equal(t, 3, sc.released)

	require.Len(t, rep.misses, 2)
	assert.ErrorIs(t, rep.misses[0], ErrIntegrity)
	assert.ErrorIs(t, rep.misses[1], ErrBadCandidate)
	assert.Len(t, rep.searched, 2)
	assert.Equal(t, uint64(2), d.Stats().Mismatches)
}

func TestDriverScannerErrorIsFatal(t *testing.T) {
	boom := errors.New("device lost")
	sc := &scriptScanner{results: []string{""}, errs: []error{nil, boom}}
	d, _, _ := newTestDriver(t, 1, sc)

	_, err := d.Run(context.Background())
	assert.ErrorIs(t, err, ErrScanner)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, sc.calls)
	assert.Equal(t, 1, sc.released)
	assert.Equal(t, StateIdle, d.State())
}

func TestDriverCancelDuringScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sc := &scriptScanner{onScan: func(call int) {
		if call == 3 {
			cancel()
		}
	}}
	d, tbl, ks := newTestDriver(t, 1, sc)
	points := bytes.Clone(tbl.Points)
	a, b := ks.A.String(), ks.B.String()

	_, err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, sc.calls)
	assert.Equal(t, 3, sc.released)
	assert.Equal(t, StateIdle, d.State())

	// Empty scans leave the table and keyspace untouched.
	assert.Equal(t, points, tbl.Points)
	assert.Equal(t, a, ks.A.String())
	assert.Equal(t, b, ks.B.String())
}

func TestDriverCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := &scriptScanner{}
	d, _, _ := newTestDriver(t, 1, sc)
	_, err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sc.calls)
}

func TestDriverRate(t *testing.T) {
	sc := &scriptScanner{results: []string{"", "9"}}
	rep := &recordingReporter{}
	d, _, _ := newTestDriver(t, 1, sc)
	d.WithReporter(rep)

	clock := time.Unix(1000, 0)
	d.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	_, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.searched, 1)
	assert.Equal(t, time.Second, rep.searched[0].Elapsed)
	assert.InDelta(t, 1e16, rep.searched[0].Rate, 1)
	assert.InDelta(t, 1e16, d.Stats().AvgRate, 1)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "scanning", StateScanning.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
	assert.Equal(t, "state(42)", State(42).String())
}
