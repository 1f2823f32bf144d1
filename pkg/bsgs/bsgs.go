// Package bsgs implements a Baby-Step Giant-Step private key search on secp256k1.
//
// A baby table of N consecutive multiples of G offset by the target public key
// is built once. Random sub-ranges of the keyspace are then handed to a giant-step
// Scanner; any candidate it reports is resolved back to a private key and
// verified against the target before it is accepted.
package bsgs

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

// RecordSize is the size of one baby table record.
const RecordSize = secp.PointSize

// DefaultKeyspace is [1, n-1].
const DefaultKeyspace = "1:FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364140"

var (
	ErrTableSize     = errors.New("baby table size must be a power of two")
	ErrTableStart    = errors.New("baby table start offset out of range")
	ErrTableMismatch = errors.New("baby table file does not match this search")
	ErrKeyspace      = errors.New("invalid keyspace")
	ErrPublicKey     = errors.New("invalid public key")
	ErrBadCandidate  = errors.New("scanner returned a malformed candidate")
	ErrIntegrity     = errors.New("candidate failed verification")
	ErrScanner       = errors.New("scanner failed")
)

// Config holds the search parameters. Parallelism values are passed to the
// scanner untouched.
type Config struct {
	PublicKey string // hex, compressed or uncompressed
	Keyspace  string // "min:max" in hex

	Attempts uint64 // nominal keys per range, display only
	Device   int
	Threads  uint32
	Blocks   uint32
	Points   uint32 // points per thread

	BabySize   uint32 // baby table records, power of two
	TableStart uint64 // record i of the baby table is P + (TableStart+i)*G

	Random bool // ranges are always drawn at random; kept for CLI compatibility
	Output string
}

// DefaultConfig returns the defaults of the command line tool.
func DefaultConfig() *Config {
	return &Config{
		Keyspace:   DefaultKeyspace,
		Attempts:   10_000_000_000_000_000,
		Device:     0,
		Threads:    64,
		Blocks:     10,
		Points:     256,
		BabySize:   524288,
		TableStart: 1,
		Output:     "found_keys.txt",
	}
}

// Validate checks the configuration before any table is built.
func (c *Config) Validate() error {
	if c.PublicKey == "" {
		return fmt.Errorf("%w: public key is required", ErrPublicKey)
	}
	if _, err := secp.ParsePublicKey(c.PublicKey); err != nil {
		return fmt.Errorf("%w: %v", ErrPublicKey, err)
	}
	if _, err := ParseKeyspace(c.Keyspace); err != nil {
		return err
	}
	if !isPowerOfTwo(c.BabySize) {
		return fmt.Errorf("%w: got %d", ErrTableSize, c.BabySize)
	}
	if c.TableStart >= uint64(c.BabySize) {
		return fmt.Errorf("%w: start %d with %d records", ErrTableStart, c.TableStart, c.BabySize)
	}
	if c.Threads == 0 || c.Blocks == 0 || c.Points == 0 {
		return fmt.Errorf("threads, blocks and points must be positive (got %d, %d, %d)", c.Threads, c.Blocks, c.Points)
	}
	if c.Attempts == 0 {
		return fmt.Errorf("attempts per range must be positive")
	}
	if c.Output == "" {
		return fmt.Errorf("output file is required")
	}
	return nil
}

// RangeBits returns log2(BabySize).
func (c *Config) RangeBits() uint32 {
	return uint32(bits.TrailingZeros32(c.BabySize))
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}
