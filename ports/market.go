package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nostrmarket/agora/core"
)

// Market is the contract of the remote marketplace service. All calls are
// synchronous; any non-2xx response surfaces as *core.ServerError and
// transport failures wrap core.ErrNetwork. Nothing is retried here.
type Market interface {
	// Register creates an account for a lightning address and returns the
	// generated key material exactly once.
	Register(ctx context.Context, lightningAddress string) (*core.Registration, error)

	// Login resolves an encoded private key to the account it belongs to.
	Login(ctx context.Context, encodedSecret string) (*core.LoginResult, error)

	// Challenge requests an auth challenge for a public key.
	Challenge(ctx context.Context, publicKey string) (*core.Challenge, error)

	// Verify submits a signed challenge.
	Verify(ctx context.Context, sessionID, signatureB64 string) (*core.VerifyResult, error)

	// ValidateSession asks the issuer whether a token is still accepted.
	ValidateSession(ctx context.Context, token string) error

	// SellerProfile fetches the profile for a public key.
	SellerProfile(ctx context.Context, publicKey string) (*core.SellerProfile, error)

	// CreateInvoice creates a lightning invoice payable to sellerAddress.
	CreateInvoice(ctx context.Context, sellerAddress string, amount decimal.Decimal, description string) (*core.Invoice, error)

	// PayInvoice pays a payment request with the buyer's wallet credential.
	PayInvoice(ctx context.Context, credential, paymentRequest string) error

	// CreateListing submits a listing with its proof of work.
	CreateListing(ctx context.Context, token string, draft core.ListingDraft, proof core.ProofOfWork) (*core.Listing, error)

	// UpdateListing applies a partial update and returns the resulting state.
	UpdateListing(ctx context.Context, id string, update core.ListingUpdate) (*core.Listing, error)

	// Listings returns all listings.
	Listings(ctx context.Context) ([]core.Listing, error)

	// Listing returns one listing by id.
	Listing(ctx context.Context, id string) (*core.Listing, error)
}
