package bsgs

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

// pubOf returns the uncompressed hex public key of k.
func pubOf(k int64) string {
	return secp.ScalarMultiplication(big.NewInt(k)).Hex()
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, uint64(10_000_000_000_000_000), cfg.Attempts)
	assert.Equal(t, 0, cfg.Device)
	assert.Equal(t, uint32(64), cfg.Threads)
	assert.Equal(t, uint32(10), cfg.Blocks)
	assert.Equal(t, uint32(256), cfg.Points)
	assert.Equal(t, uint32(524288), cfg.BabySize)
	assert.Equal(t, uint32(19), cfg.RangeBits())
	assert.Equal(t, uint64(1), cfg.TableStart)
	assert.Equal(t, "found_keys.txt", cfg.Output)

	// Missing public key.
	assert.ErrorIs(t, cfg.Validate(), ErrPublicKey)

	cfg.PublicKey = pubOf(5)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"bad pubkey", func(c *Config) { c.PublicKey = "02deadbeef" }, ErrPublicKey},
		{"bp not power of two", func(c *Config) { c.BabySize = 500000 }, ErrTableSize},
		{"bp zero", func(c *Config) { c.BabySize = 0 }, ErrTableSize},
		{"start beyond table", func(c *Config) { c.BabySize = 8; c.TableStart = 8 }, ErrTableStart},
		{"bad keyspace", func(c *Config) { c.Keyspace = "10:1" }, ErrKeyspace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.PublicKey = pubOf(5)
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}

	cfg := DefaultConfig()
	cfg.PublicKey = pubOf(5)
	cfg.Threads = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.PublicKey = pubOf(5)
	cfg.BabySize = 1 << 10
	cfg.TableStart = 0
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(10), cfg.RangeBits())
}
