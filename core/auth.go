package core

import "crypto/ed25519"

// Identity is a user's keypair held in memory for the lifetime of a login.
// The seed and signing key are never written to durable storage.
type Identity struct {
	PublicKey  string             // bech32 npub, the wire form of the key
	PublicHex  string             // raw public key, hex-displayed
	Seed       [32]byte           // 32-byte secret the keypair derives from
	SigningKey ed25519.PrivateKey // derived, deterministic per RFC 8032
}

// Challenge is a server-issued nonce bound to one public key. Single use.
type Challenge struct {
	SessionID string `json:"session_id"` // opaque identifier for the auth attempt
	Text      string `json:"challenge"`  // the string the client must sign
}

// Session is the persisted credential for an authenticated user.
type Session struct {
	Token     string `json:"token"`      // opaque bearer token, valid only while the issuer accepts it
	PublicKey string `json:"public_key"` // bech32 npub of the authenticated user
}

// Registration is the one-time response to a new-account request. The
// private key and raw seed are surfaced exactly once and never stored.
type Registration struct {
	PublicKey  string `json:"nostr_public_key"`
	PrivateKey string `json:"nostr_private_key"`
	RawSeed    string `json:"raw_seed"`
}

// LoginResult identifies the account a private key belongs to.
type LoginResult struct {
	ID        string `json:"id"`
	PublicKey string `json:"nostr_public_key"`
}

// VerifyResult is the issuer's answer to a signed challenge.
type VerifyResult struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token"`
}
