package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nostrmarket/agora/adapters/store"
	"github.com/nostrmarket/agora/core"
	"github.com/nostrmarket/agora/metrics"
	"github.com/nostrmarket/agora/pow"
)

func TestCreateListing(t *testing.T) {
	ctx := context.Background()
	draft := core.ListingDraft{Title: "Lamp", Description: "desk lamp", Condition: "used", Price: 25}

	t.Run("no session means no market traffic", func(t *testing.T) {
		market := newFakeMarket()
		svc := NewListingService(market, store.NewMemoryStore(), pow.Solver{Difficulty: 1}, metrics.Noop{})

		_, err := svc.Create(ctx, draft)
		assert.ErrorIs(t, err, core.ErrNoSession)
		assert.Equal(t, 0, market.totalCalls())
	})

	t.Run("submits a valid proof with the session token", func(t *testing.T) {
		market := newFakeMarket()
		sessions := store.NewMemoryStore()
		require.NoError(t, sessions.Save(ctx, &core.Session{Token: "tok", PublicKey: "npub1me"}))

		solver := pow.Solver{Difficulty: 2}

		var gotToken string
		var gotDraft core.ListingDraft
		var gotProof core.ProofOfWork
		market.createListingFn = func(token string, d core.ListingDraft, proof core.ProofOfWork) (*core.Listing, error) {
			gotToken = token
			gotDraft = d
			gotProof = proof
			return &core.Listing{ID: "listing-1", Title: d.Title, Pubkey: d.Pubkey}, nil
		}

		svc := NewListingService(market, sessions, solver, metrics.Noop{})
		listing, err := svc.Create(ctx, draft)
		require.NoError(t, err)
		assert.Equal(t, "listing-1", listing.ID)
		assert.Equal(t, "tok", gotToken)

		// The session's key fills the empty pubkey, and that filled draft is
		// what the proof covers.
		assert.Equal(t, "npub1me", gotDraft.Pubkey)
		ok, err := solver.Verify(gotDraft, gotProof)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("keeps an explicit pubkey", func(t *testing.T) {
		market := newFakeMarket()
		sessions := store.NewMemoryStore()
		require.NoError(t, sessions.Save(ctx, &core.Session{Token: "tok", PublicKey: "npub1me"}))

		var gotDraft core.ListingDraft
		market.createListingFn = func(token string, d core.ListingDraft, proof core.ProofOfWork) (*core.Listing, error) {
			gotDraft = d
			return &core.Listing{ID: "listing-2"}, nil
		}

		explicit := draft
		explicit.Pubkey = "npub1other"
		svc := NewListingService(market, sessions, pow.Solver{Difficulty: 0}, metrics.Noop{})
		_, err := svc.Create(ctx, explicit)
		require.NoError(t, err)
		assert.Equal(t, "npub1other", gotDraft.Pubkey)
	})

	t.Run("exhausted puzzle surfaces without submitting", func(t *testing.T) {
		market := newFakeMarket()
		sessions := store.NewMemoryStore()
		require.NoError(t, sessions.Save(ctx, &core.Session{Token: "tok", PublicKey: "npub1me"}))

		svc := NewListingService(market, sessions, pow.Solver{Difficulty: 64, MaxNonce: 1000}, metrics.Noop{})
		_, err := svc.Create(ctx, draft)
		assert.ErrorIs(t, err, core.ErrPowExhausted)
		assert.Equal(t, 0, market.callCount("create_listing"))
	})
}

func TestListMine(t *testing.T) {
	ctx := context.Background()

	market := newFakeMarket()
	market.listingsFn = func() ([]core.Listing, error) {
		return []core.Listing{
			{ID: "a", Pubkey: "npub1me"},
			{ID: "b", Pubkey: "npub1other"},
			{ID: "c", Pubkey: "npub1me"},
		}, nil
	}
	sessions := store.NewMemoryStore()
	require.NoError(t, sessions.Save(ctx, &core.Session{Token: "tok", PublicKey: "npub1me"}))

	svc := NewListingService(market, sessions, pow.Solver{}, metrics.Noop{})
	mine, err := svc.ListMine(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(mine))
	for _, l := range mine {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)
}
