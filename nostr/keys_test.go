package nostr

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nostrmarket/agora/core"
)

// RFC 8032 test vector 1: seed, public key and the signature of the empty
// message.
const (
	rfcSeedHex      = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
	rfcPublicHex    = "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"
	rfcSignatureHex = "e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e06522490155" +
		"5fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b"
)

func rfcSeed(t *testing.T) [SeedSize]byte {
	t.Helper()
	seed, err := SeedFromHex(rfcSeedHex)
	require.NoError(t, err)
	return seed
}

func TestDeriveKeypair(t *testing.T) {
	assert := assert.New(t)

	t.Run("matches reference vector", func(t *testing.T) {
		pub, _ := DeriveKeypair(rfcSeed(t))
		assert.Equal(rfcPublicHex, hex.EncodeToString(pub))
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		var seed [SeedSize]byte // all zero
		first, _ := DeriveKeypair(seed)
		second, _ := DeriveKeypair(seed)
		assert.Equal(first, second)
	})
}

func TestSign(t *testing.T) {
	assert := assert.New(t)

	_, priv := DeriveKeypair(rfcSeed(t))

	t.Run("matches reference vector", func(t *testing.T) {
		assert.Equal(rfcSignatureHex, hex.EncodeToString(Sign(nil, priv)))
	})

	t.Run("no per-call randomness", func(t *testing.T) {
		message := []byte("auth-challenge:c1f3")
		assert.Equal(Sign(message, priv), Sign(message, priv))
		assert.NotEmpty(SignBase64(message, priv))
	})
}

func TestNsecRoundTrip(t *testing.T) {
	assert := assert.New(t)

	seed := rfcSeed(t)
	nsec, err := EncodeNsec(seed)
	assert.NoError(err)
	assert.Contains(nsec, "nsec1")

	decoded, err := DecodeNsec(nsec)
	assert.NoError(err)
	assert.Equal(seed, decoded)
}

func TestNpubRoundTrip(t *testing.T) {
	assert := assert.New(t)

	pub, _ := DeriveKeypair(rfcSeed(t))
	npub, err := EncodeNpub(pub)
	assert.NoError(err)
	assert.Contains(npub, "npub1")

	decoded, err := DecodeNpub(npub)
	assert.NoError(err)
	assert.Equal([]byte(pub), decoded)
}

func TestDecodeNsecRejectsBadInput(t *testing.T) {
	assert := assert.New(t)

	t.Run("wrong prefix", func(t *testing.T) {
		pub, _ := DeriveKeypair(rfcSeed(t))
		npub, err := EncodeNpub(pub)
		assert.NoError(err)

		_, err = DecodeNsec(npub)
		assert.ErrorIs(err, core.ErrDecode)
	})

	t.Run("bad checksum", func(t *testing.T) {
		_, err := DecodeNsec("nsec1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq")
		assert.ErrorIs(err, core.ErrDecode)
	})

	t.Run("not bech32 at all", func(t *testing.T) {
		_, err := DecodeNsec("hello")
		assert.ErrorIs(err, core.ErrDecode)
	})
}

func TestSeedFromHex(t *testing.T) {
	assert := assert.New(t)

	_, err := SeedFromHex("abcd")
	assert.ErrorIs(err, core.ErrDecode)

	_, err = SeedFromHex("zz")
	assert.ErrorIs(err, core.ErrDecode)
}

func TestNewIdentity(t *testing.T) {
	assert := assert.New(t)

	identity, err := NewIdentity(rfcSeed(t))
	assert.NoError(err)
	assert.Equal(rfcPublicHex, identity.PublicHex)
	assert.Contains(identity.PublicKey, "npub1")

	again, err := NewIdentity(rfcSeed(t))
	assert.NoError(err)
	assert.Equal(identity.PublicKey, again.PublicKey)
}
