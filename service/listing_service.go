package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nostrmarket/agora/core"
	"github.com/nostrmarket/agora/metrics"
	"github.com/nostrmarket/agora/ports"
	"github.com/nostrmarket/agora/pow"
)

// ListingService creates and reads listings. Creation is gated behind the
// proof-of-work puzzle.
type ListingService struct {
	market    ports.Market
	store     ports.SessionStore
	solver    pow.Solver
	collector metrics.Collector
	logger    *slog.Logger
}

// NewListingService creates a new listing service.
func NewListingService(market ports.Market, store ports.SessionStore, solver pow.Solver, collector metrics.Collector) *ListingService {
	return &ListingService{
		market:    market,
		store:     store,
		solver:    solver,
		collector: collector,
		logger:    slog.Default(),
	}
}

// Create solves the admission puzzle for the draft and submits it with the
// current session token. The solver runs on worker goroutines; the calling
// goroutine blocks but the rest of the process stays responsive.
func (s *ListingService) Create(ctx context.Context, draft core.ListingDraft) (*core.Listing, error) {
	session, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return nil, core.ErrNoSession
	}

	if draft.Pubkey == "" {
		draft.Pubkey = session.PublicKey
	}

	start := time.Now()
	proof, err := s.solver.Solve(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("solving admission puzzle: %w", err)
	}
	s.collector.ObserveSolve(time.Since(start), proof.Nonce)
	s.logger.Info("admission puzzle solved",
		"nonce", proof.Nonce, "difficulty", s.solver.Difficulty, "elapsed", time.Since(start))

	listing, err := s.market.CreateListing(ctx, session.Token, draft, proof)
	if err != nil {
		return nil, fmt.Errorf("submitting listing: %w", err)
	}
	return listing, nil
}

// List returns all listings.
func (s *ListingService) List(ctx context.Context) ([]core.Listing, error) {
	return s.market.Listings(ctx)
}

// ListMine returns the current user's listings.
func (s *ListingService) ListMine(ctx context.Context) ([]core.Listing, error) {
	session, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return nil, core.ErrNoSession
	}

	all, err := s.market.Listings(ctx)
	if err != nil {
		return nil, err
	}

	mine := make([]core.Listing, 0, len(all))
	for _, listing := range all {
		if listing.Pubkey == session.PublicKey {
			mine = append(mine, listing)
		}
	}
	return mine, nil
}

// Get returns one listing by id.
func (s *ListingService) Get(ctx context.Context, id string) (*core.Listing, error) {
	return s.market.Listing(ctx, id)
}
