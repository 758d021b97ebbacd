package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nostrmarket/agora/core"
	"github.com/nostrmarket/agora/ports"
)

// fakeMarket counts every call and lets tests override individual
// endpoints. Unset endpoints succeed with zero-ish responses.
type fakeMarket struct {
	mu    sync.Mutex
	calls map[string]int

	registerFn      func(lightningAddress string) (*core.Registration, error)
	loginFn         func(secret string) (*core.LoginResult, error)
	challengeFn     func(publicKey string) (*core.Challenge, error)
	verifyFn        func(sessionID, signatureB64 string) (*core.VerifyResult, error)
	validateFn      func(token string) error
	profileFn       func(publicKey string) (*core.SellerProfile, error)
	createInvoiceFn func(sellerAddress string, amount decimal.Decimal, description string) (*core.Invoice, error)
	payInvoiceFn    func(credential, paymentRequest string) error
	createListingFn func(token string, draft core.ListingDraft, proof core.ProofOfWork) (*core.Listing, error)
	updateListingFn func(id string, update core.ListingUpdate) (*core.Listing, error)
	listingsFn      func() ([]core.Listing, error)
	listingFn       func(id string) (*core.Listing, error)
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{calls: make(map[string]int)}
}

func (m *fakeMarket) count(name string) {
	m.mu.Lock()
	m.calls[name]++
	m.mu.Unlock()
}

func (m *fakeMarket) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *fakeMarket) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *fakeMarket) Register(ctx context.Context, lightningAddress string) (*core.Registration, error) {
	m.count("register")
	if m.registerFn != nil {
		return m.registerFn(lightningAddress)
	}
	return &core.Registration{}, nil
}

func (m *fakeMarket) Login(ctx context.Context, secret string) (*core.LoginResult, error) {
	m.count("login")
	if m.loginFn != nil {
		return m.loginFn(secret)
	}
	return &core.LoginResult{}, nil
}

func (m *fakeMarket) Challenge(ctx context.Context, publicKey string) (*core.Challenge, error) {
	m.count("challenge")
	if m.challengeFn != nil {
		return m.challengeFn(publicKey)
	}
	return &core.Challenge{SessionID: "session-1", Text: "auth-challenge:session-1"}, nil
}

func (m *fakeMarket) Verify(ctx context.Context, sessionID, signatureB64 string) (*core.VerifyResult, error) {
	m.count("verify")
	if m.verifyFn != nil {
		return m.verifyFn(sessionID, signatureB64)
	}
	return &core.VerifyResult{Authenticated: true, Token: "token-1"}, nil
}

func (m *fakeMarket) ValidateSession(ctx context.Context, token string) error {
	m.count("validate")
	if m.validateFn != nil {
		return m.validateFn(token)
	}
	return nil
}

func (m *fakeMarket) SellerProfile(ctx context.Context, publicKey string) (*core.SellerProfile, error) {
	m.count("profile")
	if m.profileFn != nil {
		return m.profileFn(publicKey)
	}
	return &core.SellerProfile{PublicKey: publicKey, LightningAddress: "seller@example.com"}, nil
}

func (m *fakeMarket) CreateInvoice(ctx context.Context, sellerAddress string, amount decimal.Decimal, description string) (*core.Invoice, error) {
	m.count("create_invoice")
	if m.createInvoiceFn != nil {
		return m.createInvoiceFn(sellerAddress, amount, description)
	}
	return &core.Invoice{PaymentRequest: "lnbc1", Amount: amount, Description: description}, nil
}

func (m *fakeMarket) PayInvoice(ctx context.Context, credential, paymentRequest string) error {
	m.count("pay_invoice")
	if m.payInvoiceFn != nil {
		return m.payInvoiceFn(credential, paymentRequest)
	}
	return nil
}

func (m *fakeMarket) CreateListing(ctx context.Context, token string, draft core.ListingDraft, proof core.ProofOfWork) (*core.Listing, error) {
	m.count("create_listing")
	if m.createListingFn != nil {
		return m.createListingFn(token, draft, proof)
	}
	return &core.Listing{ID: "listing-1", Title: draft.Title, Price: draft.Price, Pubkey: draft.Pubkey, Status: core.ListingActive}, nil
}

func (m *fakeMarket) UpdateListing(ctx context.Context, id string, update core.ListingUpdate) (*core.Listing, error) {
	m.count("update_listing")
	if m.updateListingFn != nil {
		return m.updateListingFn(id, update)
	}
	return &core.Listing{ID: id, Status: update.Status, PaidBy: update.PaidBy}, nil
}

func (m *fakeMarket) Listings(ctx context.Context) ([]core.Listing, error) {
	m.count("listings")
	if m.listingsFn != nil {
		return m.listingsFn()
	}
	return nil, nil
}

func (m *fakeMarket) Listing(ctx context.Context, id string) (*core.Listing, error) {
	m.count("listing")
	if m.listingFn != nil {
		return m.listingFn(id)
	}
	return &core.Listing{ID: id, Status: core.ListingActive}, nil
}

var _ ports.Market = (*fakeMarket)(nil)

// fakeEvents records published events.
type fakeEvents struct {
	mu          sync.Mutex
	logins      []string
	logouts     []string
	settlements []string
}

func (e *fakeEvents) PublishLogin(ctx context.Context, publicKey string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logins = append(e.logins, publicKey)
	return nil
}

func (e *fakeEvents) PublishLogout(ctx context.Context, publicKey string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logouts = append(e.logouts, publicKey)
	return nil
}

func (e *fakeEvents) PublishSettlement(ctx context.Context, listingID, buyerPublicKey string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settlements = append(e.settlements, listingID)
	return nil
}

var _ ports.EventPublisher = (*fakeEvents)(nil)
