// Package scanner checks a giant-step backend against the built-in CPU
// scanner on keys whose answer is known.
package scanner

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Amr-9/BSGSHunter/pkg/bsgs"
	"github.com/Amr-9/BSGSHunter/pkg/scanner/cpu"
	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

const (
	verifyTableSize = 1024
	verifyHalfWidth = 1 << 14
)

// TestResult holds the outcome of one verification case.
type TestResult struct {
	TestName     string
	PrivateKey   string
	BackendKey   string
	CPUKey       string
	Match        bool
	ErrorMessage string
}

type verifyCase struct {
	name string
	key  string
}

var verifyCases = []verifyCase{
	{"Key = 1", "1"},
	{"Small key", "3e8"},
	{"32-bit key", "deadbeef"},
	{"64-bit key", "f7051f27b09112d4"},
	{"Puzzle-sized key", "2832ed74f2b5e35ee"},
	{"Near curve order", "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0360000"},
}

// Verify scans a range around each known key with backend and with the CPU
// scanner and reports whether both resolve to the key.
func Verify(ctx context.Context, backend bsgs.Scanner) (bool, []TestResult) {
	reference := cpu.New()
	results := make([]TestResult, 0, len(verifyCases))
	for _, tc := range verifyCases {
		results = append(results, runCase(ctx, tc, backend, reference))
		if ctx.Err() != nil {
			break
		}
	}

	allPassed := len(results) == len(verifyCases)
	for _, r := range results {
		if !r.Match || r.ErrorMessage != "" {
			allPassed = false
			break
		}
	}
	return allPassed, results
}

func runCase(ctx context.Context, tc verifyCase, backend, reference bsgs.Scanner) TestResult {
	res := TestResult{TestName: tc.name, PrivateKey: tc.key}

	key, err := secp.ParseScalar(tc.key)
	if err != nil {
		res.ErrorMessage = err.Error()
		return res
	}
	table, err := bsgs.BuildTable(secp.ScalarMultiplication(key), verifyTableSize, 1)
	if err != nil {
		res.ErrorMessage = err.Error()
		return res
	}

	req := bsgs.NewScanRequest(&bsgs.Config{Threads: 64, Blocks: 10, Points: 256}, table, rangeAround(key))
	resolver := bsgs.NewResolver(table)

	if res.BackendKey, err = resolveWith(ctx, backend, req, resolver); err != nil {
		res.ErrorMessage = fmt.Sprintf("%s: %v", backend.Name(), err)
		return res
	}
	if res.CPUKey, err = resolveWith(ctx, reference, req, resolver); err != nil {
		res.ErrorMessage = fmt.Sprintf("CPU: %v", err)
		return res
	}

	want := key.Text(16)
	res.Match = res.BackendKey == want && res.CPUKey == want
	return res
}

func resolveWith(ctx context.Context, s bsgs.Scanner, req *bsgs.ScanRequest, r *bsgs.Resolver) (string, error) {
	pvk, err := bsgs.ScanText(ctx, s, req)
	if err != nil {
		return "", err
	}
	if pvk == "" {
		return "", fmt.Errorf("no match in %s", req.RangeSpec)
	}
	found, err := r.Resolve(pvk)
	if err != nil {
		return "", err
	}
	return found.Key.Text(16), nil
}

// rangeAround returns [key-w, key+w] clipped to [1, n-1].
func rangeAround(key *big.Int) *bsgs.Range {
	w := big.NewInt(verifyHalfWidth)
	k1 := new(big.Int).Sub(key, w)
	if k1.Sign() < 1 {
		k1.SetInt64(1)
	}
	k2 := new(big.Int).Add(key, w)
	if max := new(big.Int).Sub(secp.N(), big.NewInt(1)); k2.Cmp(max) > 0 {
		k2 = max
	}
	return &bsgs.Range{K1: k1, K2: k2}
}
