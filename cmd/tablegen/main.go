// tablegen precomputes a baby table for one target public key and saves it
// in the format bsgshunter -table reads back.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/Amr-9/BSGSHunter/internal/ui"
	"github.com/Amr-9/BSGSHunter/pkg/bsgs"
	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

func main() {
	pubkey := flag.String("pubkey", "", "target public key, compressed or uncompressed hex")
	size := flag.Uint("bp", 1<<19, "baby table records, a power of two")
	start := flag.Uint64("start", 1, "scalar offset of the first record")
	out := flag.String("o", "bsgs_table.bin", "output file")
	flag.Parse()

	if *pubkey == "" || *size > 1<<31 {
		flag.Usage()
		os.Exit(1)
	}
	target, err := secp.ParsePublicKey(*pubkey)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	count := uint32(*size)
	fmt.Printf("=== Baby Table Generator ===\n")
	fmt.Printf("Generating %s records (%s)...\n", ui.FormatNumber(uint64(count)), ui.FormatBytes(uint64(count)*bsgs.RecordSize))

	began := time.Now()
	table, err := bsgs.BuildTable(target, count, *start)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n✓ Generated %d records in %v\n", count, time.Since(began).Round(time.Millisecond))

	if err := table.WriteFile(*out); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	info, err := os.Stat(*out)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Output file: %s (%s)\n", *out, ui.FormatBytes(uint64(info.Size())))

	fmt.Printf("\n=== Sample Records (for verification) ===\n")
	if !verifyRecords(table) {
		os.Exit(1)
	}
}

// verifyRecords recomputes the first and last record from scratch.
func verifyRecords(t *bsgs.Table) bool {
	ok := true
	for _, i := range []uint32{0, t.Count - 1} {
		k := new(big.Int).SetUint64(t.Start + uint64(i))
		want := secp.PointAddition(t.Target, secp.ScalarMultiplication(k))
		got := t.Record(i)
		if bytes.Equal(got[:], want[:]) {
			fmt.Printf("  Record %d (P + %d*G): ✓ %s...\n", i, k, got.Hex()[:18])
		} else {
			fmt.Printf("  Record %d (P + %d*G): ✗ MISMATCH\n", i, k)
			ok = false
		}
	}
	return ok
}
