// Package address labels secp256k1 keys with the addresses they control.
// It is used to describe the target at startup and the key once found.
package address

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"

	"github.com/Amr-9/BSGSHunter/pkg/secp"
)

// Summary is the set of addresses derived from one public key.
type Summary struct {
	Hash160            string // of the compressed key
	Legacy             string // P2PKH, compressed
	LegacyUncompressed string // P2PKH, uncompressed
	SegWit             string // P2WPKH
	Taproot            string // P2TR, key-path only
	Ethereum           string
}

// Describe derives every address of pub.
func Describe(pub secp.Point) (*Summary, error) {
	if pub.IsInfinity() {
		return nil, fmt.Errorf("cannot derive addresses for the point at infinity")
	}
	var (
		s   Summary
		err error
	)
	s.Hash160 = fmt.Sprintf("%x", Hash160(pub.Compressed()))
	if s.Legacy, err = P2PKH(pub, true); err != nil {
		return nil, err
	}
	if s.LegacyUncompressed, err = P2PKH(pub, false); err != nil {
		return nil, err
	}
	if s.SegWit, err = P2WPKH(pub); err != nil {
		return nil, err
	}
	if s.Taproot, err = P2TR(pub); err != nil {
		return nil, err
	}
	if s.Ethereum, err = Ethereum(pub); err != nil {
		return nil, err
	}
	return &s, nil
}

// Hash160 computes RIPEMD160(SHA256(data)).
func Hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	ripemd := ripemd160.New()
	ripemd.Write(sha[:])
	return ripemd.Sum(nil)
}

// P2PKH returns the mainnet legacy (1...) address.
func P2PKH(pub secp.Point, compressed bool) (string, error) {
	key := pub[:]
	if compressed {
		key = pub.Compressed()
	}
	addr, err := btcutil.NewAddressPubKeyHash(Hash160(key), &chaincfg.MainNetParams)
	if err != nil {
		return "", fmt.Errorf("p2pkh: %w", err)
	}
	return addr.EncodeAddress(), nil
}

// P2WPKH returns the mainnet native SegWit (bc1q...) address.
func P2WPKH(pub secp.Point) (string, error) {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(Hash160(pub.Compressed()), &chaincfg.MainNetParams)
	if err != nil {
		return "", fmt.Errorf("p2wpkh: %w", err)
	}
	return addr.EncodeAddress(), nil
}

// P2TR returns the mainnet Taproot (bc1p...) address for a key-path spend.
func P2TR(pub secp.Point) (string, error) {
	pubKey, err := btcec.ParsePubKey(pub[:])
	if err != nil {
		return "", fmt.Errorf("p2tr: %w", err)
	}

	// tweaked = P + TaggedHash("TapTweak", x(P))*G
	xOnly := schnorr.SerializePubKey(pubKey)
	tweak := chainhash.TaggedHash([]byte("TapTweak"), xOnly)

	var tweakScalar btcec.ModNScalar
	tweakScalar.SetBytes((*[32]byte)(tweak))

	var result, pubKeyJacobian btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&tweakScalar, &result)
	pubKey.AsJacobian(&pubKeyJacobian)
	btcec.AddNonConst(&pubKeyJacobian, &result, &result)
	result.ToAffine()

	tweaked := schnorr.SerializePubKey(btcec.NewPublicKey(&result.X, &result.Y))
	data, err := bech32.ConvertBits(tweaked, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("p2tr: %w", err)
	}
	addr, err := bech32.EncodeM(chaincfg.MainNetParams.Bech32HRPSegwit, append([]byte{0x01}, data...))
	if err != nil {
		return "", fmt.Errorf("p2tr: %w", err)
	}
	return addr, nil
}

// Ethereum returns the checksummed Ethereum address of pub.
func Ethereum(pub secp.Point) (string, error) {
	pk, err := crypto.UnmarshalPubkey(pub[:])
	if err != nil {
		return "", fmt.Errorf("ethereum: %w", err)
	}
	return crypto.PubkeyToAddress(*pk).Hex(), nil
}

// WIF encodes a private key in Wallet Import Format for mainnet.
func WIF(key *big.Int, compressed bool) string {
	data := make([]byte, 1, 34)
	data[0] = 0x80
	var raw [32]byte
	new(big.Int).Mod(key, secp.N()).FillBytes(raw[:])
	data = append(data, raw[:]...)
	if compressed {
		data = append(data, 0x01)
	}
	return Base58CheckEncode(data)
}

// Base58CheckEncode appends the 4-byte double-SHA256 checksum and encodes the
// result in Base58.
func Base58CheckEncode(data []byte) string {
	checksum := chainhash.DoubleHashB(data)
	full := append(append([]byte{}, data...), checksum[:4]...)
	return base58.Encode(full)
}
