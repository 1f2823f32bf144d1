package bsgs

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerCoverage(t *testing.T) {
	ks, err := ParseKeyspace("1:10000")
	require.NoError(t, err)

	tr := newTracker(1000)
	now := time.Unix(0, 0)
	tr.start(now)

	half := &Range{K1: big.NewInt(1), K2: big.NewInt(0x8000)}
	rate := tr.rangeDone(ks, half, 2*time.Second)
	assert.Equal(t, 500.0, rate)

	st := tr.snapshot(now.Add(5 * time.Second))
	assert.Equal(t, uint64(1), st.Iterations)
	assert.Equal(t, 5*time.Second, st.Elapsed)
	assert.InDelta(t, 0.5, st.Coverage, 0.001)
	assert.Equal(t, "0x1 - 0x8000", st.LastRange)

	// Overlapping ranges are not double counted.
	tr.rangeDone(ks, half, time.Second)
	assert.InDelta(t, 0.5, tr.snapshot(now).Coverage, 0.001)

	tr.rangeDone(ks, &Range{K1: big.NewInt(1), K2: big.NewInt(0x10000)}, time.Second)
	assert.Equal(t, 1.0, tr.snapshot(now).Coverage)
}

func TestNominalRateZeroElapsed(t *testing.T) {
	assert.Zero(t, nominalRate(100, 0))
}
