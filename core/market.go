package core

import "github.com/shopspring/decimal"

// ListingStatus is the lifecycle state of a listing.
type ListingStatus string

const (
	// ListingActive means the listing can still be purchased
	ListingActive ListingStatus = "active"

	// ListingEnded means the listing has been paid for
	ListingEnded ListingStatus = "ended"
)

// Listing is a purchasable resource owned by the marketplace service.
// PaidBy is set iff the status is ended.
type Listing struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Condition   string        `json:"condition"`
	Price       int64         `json:"price"` // smallest currency unit (sats)
	Image       string        `json:"image"`
	Pubkey      string        `json:"pubkey"` // owner npub
	Status      ListingStatus `json:"status"`
	PaidBy      string        `json:"paid_by,omitempty"`
}

// ListingDraft is the field set hashed for proof-of-work and submitted on
// creation. Field names are part of the canonicalization contract with the
// remote verifier.
type ListingDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Condition   string `json:"condition"`
	Price       int64  `json:"price"`
	Image       string `json:"image"`
	Pubkey      string `json:"pubkey"`
}

// ListingUpdate is the partial update applied on settlement. Applying the
// same (ended, paid_by) pair twice is a no-op on the server.
type ListingUpdate struct {
	Status ListingStatus `json:"status"`
	PaidBy string        `json:"paid_by"`
}

// ProofOfWork is an admission nonce for listing creation. Hash is the hex
// SHA-256 of the canonical draft bytes concatenated with the decimal nonce.
type ProofOfWork struct {
	Nonce uint64 `json:"nonce"`
	Hash  string `json:"hash"`
}

// SellerProfile is the subset of a user profile the settlement workflow
// needs. LightningAddress may be empty, which makes the seller unpayable.
type SellerProfile struct {
	PublicKey        string
	DisplayName      string
	About            string
	LightningAddress string
}

// Invoice is a lightning invoice bound to one (listing, seller) pair.
// Not reusable across listings; expiry is the issuer's business.
type Invoice struct {
	PaymentRequest string
	Amount         decimal.Decimal
	Description    string
}
