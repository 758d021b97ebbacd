// Package nostr handles NIP-19 key encoding and Ed25519 key derivation and
// signing. Everything here is deterministic: identical seeds always yield
// identical keypairs and identical messages yield identical signatures.
// Replay protection comes from the challenge varying, not the signature.
package nostr

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"

	"github.com/nostrmarket/agora/core"
)

const (
	// SeedSize is the length of the raw secret a keypair derives from
	SeedSize = 32

	hrpNsec = "nsec"
	hrpNpub = "npub"
)

// DecodeNsec decodes a bech32 nsec string into the raw 32-byte seed.
// A wrong prefix, bad checksum or wrong payload length is core.ErrDecode.
func DecodeNsec(nsec string) ([SeedSize]byte, error) {
	var seed [SeedSize]byte

	hrp, data, err := bech32.Decode(nsec)
	if err != nil {
		return seed, fmt.Errorf("%w: %v", core.ErrDecode, err)
	}
	if hrp != hrpNsec {
		return seed, fmt.Errorf("%w: prefix %q is not a secret key", core.ErrDecode, hrp)
	}

	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return seed, fmt.Errorf("%w: %v", core.ErrDecode, err)
	}
	if len(raw) != SeedSize {
		return seed, fmt.Errorf("%w: seed is %d bytes, want %d", core.ErrDecode, len(raw), SeedSize)
	}

	copy(seed[:], raw)
	return seed, nil
}

// DecodeNpub decodes a bech32 npub string into the raw 32-byte public key.
func DecodeNpub(npub string) ([]byte, error) {
	hrp, data, err := bech32.Decode(npub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDecode, err)
	}
	if hrp != hrpNpub {
		return nil, fmt.Errorf("%w: prefix %q is not a public key", core.ErrDecode, hrp)
	}

	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDecode, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key is %d bytes, want %d", core.ErrDecode, len(raw), ed25519.PublicKeySize)
	}

	return raw, nil
}

// EncodeNpub encodes a raw public key as a bech32 npub string.
func EncodeNpub(pub ed25519.PublicKey) (string, error) {
	conv, err := bech32.ConvertBits(pub, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("regrouping public key bits: %w", err)
	}
	return bech32.Encode(hrpNpub, conv)
}

// EncodeNsec encodes a raw seed as a bech32 nsec string.
func EncodeNsec(seed [SeedSize]byte) (string, error) {
	conv, err := bech32.ConvertBits(seed[:], 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("regrouping seed bits: %w", err)
	}
	return bech32.Encode(hrpNsec, conv)
}

// SeedFromHex parses a hex-encoded raw seed, as returned at registration.
func SeedFromHex(s string) ([SeedSize]byte, error) {
	var seed [SeedSize]byte

	raw, err := hex.DecodeString(s)
	if err != nil {
		return seed, fmt.Errorf("%w: %v", core.ErrDecode, err)
	}
	if len(raw) != SeedSize {
		return seed, fmt.Errorf("%w: seed is %d bytes, want %d", core.ErrDecode, len(raw), SeedSize)
	}

	copy(seed[:], raw)
	return seed, nil
}

// DeriveKeypair derives the Ed25519 keypair for a seed. Pure function, no
// system randomness.
func DeriveKeypair(seed [SeedSize]byte) (ed25519.PublicKey, ed25519.PrivateKey) {
	priv := ed25519.NewKeyFromSeed(seed[:])
	return priv.Public().(ed25519.PublicKey), priv
}

// Sign produces a detached signature over message.
func Sign(message []byte, key ed25519.PrivateKey) []byte {
	return ed25519.Sign(key, message)
}

// SignBase64 produces the wire form of a detached signature.
func SignBase64(message []byte, key ed25519.PrivateKey) string {
	return base64.StdEncoding.EncodeToString(Sign(message, key))
}

// NewIdentity builds the in-memory identity for a seed.
func NewIdentity(seed [SeedSize]byte) (*core.Identity, error) {
	pub, priv := DeriveKeypair(seed)

	npub, err := EncodeNpub(pub)
	if err != nil {
		return nil, fmt.Errorf("encoding public key: %w", err)
	}

	return &core.Identity{
		PublicKey:  npub,
		PublicHex:  hex.EncodeToString(pub),
		Seed:       seed,
		SigningKey: priv,
	}, nil
}
