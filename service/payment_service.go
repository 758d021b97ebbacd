package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nostrmarket/agora/core"
	"github.com/nostrmarket/agora/metrics"
	"github.com/nostrmarket/agora/ports"
)

// PurchaseState is the progress of one settlement attempt.
type PurchaseState int

const (
	PurchaseNotStarted PurchaseState = iota
	PurchaseProfileFetched
	PurchaseInvoiceCreated
	PurchaseAwaitingCredential
	PurchasePaid
	PurchaseListingUpdated
	PurchaseFailed
)

// PurchaseAttempt records one run of the settlement workflow. Failed
// attempts keep the state they failed from and the reason.
type PurchaseAttempt struct {
	ID        string
	ListingID string
	State     PurchaseState
	Invoice   *core.Invoice
	Reason    error
}

// PaymentService drives the settlement workflow: seller profile, invoice,
// payment, then the listing transition. Failures surface synchronously to
// the initiator; nothing is retried and a payment that lands without a
// listing update is reported as a consistency gap for external
// reconciliation, not compensated here.
type PaymentService struct {
	market    ports.Market
	store     ports.SessionStore
	events    ports.EventPublisher
	collector metrics.Collector
	logger    *slog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(market ports.Market, store ports.SessionStore, events ports.EventPublisher, collector metrics.Collector) *PaymentService {
	return &PaymentService{
		market:    market,
		store:     store,
		events:    events,
		collector: collector,
		logger:    slog.Default(),
	}
}

// Purchase pays for a listing with the buyer's wallet credential and marks
// it sold. The credential is opaque; only non-emptiness is checked.
func (s *PaymentService) Purchase(ctx context.Context, listing *core.Listing, credential string) (*PurchaseAttempt, error) {
	attempt := &PurchaseAttempt{
		ID:        uuid.NewString(),
		ListingID: listing.ID,
		State:     PurchaseNotStarted,
	}

	session, err := s.store.Load(ctx)
	if err != nil {
		return s.fail(attempt, fmt.Errorf("loading session: %w", err))
	}
	if session == nil {
		return s.fail(attempt, core.ErrNoSession)
	}

	profile, err := s.market.SellerProfile(ctx, listing.Pubkey)
	if err != nil {
		return s.fail(attempt, fmt.Errorf("fetching seller profile: %w", err))
	}
	if profile.LightningAddress == "" {
		return s.fail(attempt, core.ErrMissingPaymentAddress)
	}
	attempt.State = PurchaseProfileFetched

	amount := decimal.NewFromInt(listing.Price)
	invoice, err := s.market.CreateInvoice(ctx, profile.LightningAddress, amount, listing.Title)
	if err != nil {
		return s.fail(attempt, fmt.Errorf("creating invoice: %w", err))
	}
	attempt.Invoice = invoice
	attempt.State = PurchaseInvoiceCreated

	attempt.State = PurchaseAwaitingCredential
	if strings.TrimSpace(credential) == "" {
		return s.fail(attempt, core.ErrMissingCredential)
	}

	if err := s.market.PayInvoice(ctx, credential, invoice.PaymentRequest); err != nil {
		return s.fail(attempt, fmt.Errorf("%w: %v", core.ErrPaymentFailed, err))
	}
	attempt.State = PurchasePaid

	// The money has moved; from here on a failure is a reconciliation
	// problem, not a payment problem.
	update := core.ListingUpdate{Status: core.ListingEnded, PaidBy: session.PublicKey}
	updated, err := s.market.UpdateListing(ctx, listing.ID, update)
	if err != nil {
		s.collector.RecordConsistencyGap()
		s.logger.Error("payment settled but listing update failed",
			"listing_id", listing.ID, "buyer", session.PublicKey, "error", err)
		return s.fail(attempt, fmt.Errorf("%w: %v", core.ErrConsistencyGap, err))
	}
	if updated.Status != core.ListingEnded || (updated.PaidBy != "" && updated.PaidBy != session.PublicKey) {
		s.collector.RecordConsistencyGap()
		s.logger.Error("listing settled by a different buyer",
			"listing_id", listing.ID, "buyer", session.PublicKey, "paid_by", updated.PaidBy)
		return s.fail(attempt, core.ErrSettlementConflict)
	}
	attempt.State = PurchaseListingUpdated

	if err := s.events.PublishSettlement(ctx, listing.ID, session.PublicKey); err != nil {
		s.logger.Warn("failed to publish settlement event", "error", err)
	}

	s.collector.RecordSettlement("settled")
	return attempt, nil
}

func (s *PaymentService) fail(attempt *PurchaseAttempt, reason error) (*PurchaseAttempt, error) {
	attempt.State = PurchaseFailed
	attempt.Reason = reason
	s.collector.RecordSettlement("failed")
	return attempt, reason
}
