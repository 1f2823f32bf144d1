package ui

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amr-9/BSGSHunter/pkg/bsgs"
	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "524,288", FormatNumber(524288))
	assert.Equal(t, "10,000,000,000,000,000", FormatNumber(1e16))
}

func TestFormatHashRate(t *testing.T) {
	assert.Equal(t, "12/s", FormatHashRate(12))
	assert.Equal(t, "1.5K/s", FormatHashRate(1500))
	assert.Equal(t, "2.0M/s", FormatHashRate(2e6))
	assert.Equal(t, "10.0P/s", FormatHashRate(1e16))
	assert.Equal(t, "1.0E/s", FormatHashRate(1e18))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m 5s", FormatDuration(125*time.Second))
	assert.Equal(t, "1h 1m", FormatDuration(61*time.Minute))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "32.5 MiB", FormatBytes(524288*65))
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	c.Progress(bsgs.Stats{Iterations: 3}, bsgs.StateScanning, 1)
	assert.Contains(t, buf.String(), "scanning")

	c.RangeSearched(bsgs.RangeReport{
		Iteration: 4,
		Range:     &bsgs.Range{K1: big.NewInt(0x10), K2: big.NewInt(0xff)},
		Elapsed:   2 * time.Second,
		Rate:      5e15,
	})
	out := buf.String()
	assert.Contains(t, out, "Searched range: 0x10 - 0xff")
	assert.Contains(t, out, "5.0P/s")

	buf.Reset()
	c.IntegrityMiss("abc", errors.New("boom"))
	assert.Contains(t, buf.String(), "Something is wrong: 0xabc")

	buf.Reset()
	found := &bsgs.FoundKey{Key: big.NewInt(1), Point: secp.G()}
	c.PrintSuccess(found, bsgs.Stats{Iterations: 9}, "found_keys.txt")
	out = buf.String()
	assert.Contains(t, out, "0x1")
	assert.Contains(t, out, "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn")
	assert.Contains(t, out, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH")
}

func TestPromptSearch(t *testing.T) {
	g := secp.G()
	input := strings.Join([]string{
		"2",
		"nothex",
		g.Hex(),
		"10:1",
		"1:ffff",
	}, "\n") + "\n"

	a, err := PromptSearch(strings.NewReader(input), true)
	require.NoError(t, err)
	assert.Equal(t, EngineGPU, a.Engine)
	assert.Equal(t, g.Hex(), a.PublicKey)
	assert.Equal(t, "1:ffff", a.Keyspace)
}

func TestPromptSearchDefaults(t *testing.T) {
	input := "2\n" + secp.G().Hex() + "\n\n"

	a, err := PromptSearch(strings.NewReader(input), false)
	require.NoError(t, err)
	assert.Equal(t, EngineCPU, a.Engine)
	assert.Equal(t, bsgs.DefaultKeyspace, a.Keyspace)
}

func TestPromptSearchEOF(t *testing.T) {
	_, err := PromptSearch(strings.NewReader("1\n"), false)
	assert.Error(t, err)
}

func TestClearScreen(t *testing.T) {
	var buf bytes.Buffer
	clearScreen(&buf)
	assert.Equal(t, "\033[H\033[2J", buf.String())
}

func TestWaitForExit(t *testing.T) {
	done := make(chan struct{})
	go func() {
		WaitForExit(strings.NewReader("\n"))
		WaitForExit(strings.NewReader(""))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForExit did not return")
	}
}
