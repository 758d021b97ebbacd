package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nostrmarket/agora/core"
	"github.com/nostrmarket/agora/metrics"
	"github.com/nostrmarket/agora/nostr"
	"github.com/nostrmarket/agora/ports"
)

// AuthState is the progress of one challenge/verify attempt, keyed by the
// issuer's session id.
type AuthState int

const (
	// StateIdle means no attempt exists for the session id
	StateIdle AuthState = iota

	// StateChallengeRequested means a challenge was captured
	StateChallengeRequested

	// StateSigned means the challenge is signed and verification is in flight
	StateSigned

	// StateVerified is terminal success
	StateVerified

	// StateProfileRequired means the signature verified but no profile
	// exists for the key; the caller must provision one and retry
	StateProfileRequired

	// StateFailed is terminal failure
	StateFailed
)

// authOutcome remembers how an attempt ended so duplicate arrivals of the
// same (challenge, session id) never re-trigger verification.
type authOutcome struct {
	state AuthState
	err   error
}

// AuthService drives challenge authentication against the marketplace
// service and owns writes to the session store.
type AuthService struct {
	market         ports.Market
	store          ports.SessionStore
	events         ports.EventPublisher
	collector      metrics.Collector
	requireProfile bool
	logger         *slog.Logger

	mu       sync.Mutex
	attempts map[string]authOutcome
}

// NewAuthService creates a new authentication service. When requireProfile
// is set, a verified key without a profile is parked in
// StateProfileRequired instead of completing.
func NewAuthService(market ports.Market, store ports.SessionStore, events ports.EventPublisher, collector metrics.Collector, requireProfile bool) *AuthService {
	return &AuthService{
		market:         market,
		store:          store,
		events:         events,
		collector:      collector,
		requireProfile: requireProfile,
		logger:         slog.Default(),
		attempts:       make(map[string]authOutcome),
	}
}

// Register creates an account for a lightning address and returns the
// derived identity plus the one-time key material.
func (s *AuthService) Register(ctx context.Context, lightningAddress string) (*core.Identity, *core.Registration, error) {
	reg, err := s.market.Register(ctx, lightningAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("registering: %w", err)
	}

	seed, err := nostr.SeedFromHex(reg.RawSeed)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing registration seed: %w", err)
	}

	identity, err := nostr.NewIdentity(seed)
	if err != nil {
		return nil, nil, err
	}
	if identity.PublicKey != reg.PublicKey {
		s.logger.Warn("derived public key differs from registration response",
			"derived", identity.PublicKey, "issued", reg.PublicKey)
	}

	return identity, reg, nil
}

// Login decodes an nsec key locally, resolves the account, and runs the
// challenge flow. A malformed key fails before any network call.
func (s *AuthService) Login(ctx context.Context, nsec string) (*core.Identity, *core.Session, error) {
	seed, err := nostr.DecodeNsec(nsec)
	if err != nil {
		return nil, nil, err
	}

	identity, err := nostr.NewIdentity(seed)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.market.Login(ctx, nsec); err != nil {
		return nil, nil, fmt.Errorf("resolving account: %w", err)
	}

	session, err := s.Authenticate(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	return identity, session, nil
}

// Authenticate requests a challenge for the identity and verifies it.
func (s *AuthService) Authenticate(ctx context.Context, identity *core.Identity) (*core.Session, error) {
	challenge, err := s.market.Challenge(ctx, identity.PublicKey)
	if err != nil {
		s.collector.RecordAuth("challenge_error")
		return nil, fmt.Errorf("requesting challenge: %w", err)
	}

	return s.VerifyChallenge(ctx, identity, challenge)
}

// VerifyChallenge signs a captured challenge and submits it. A session id
// that already reached a terminal state is never re-submitted: duplicate
// arrivals get the recorded outcome without a second verify call, and a
// concurrent duplicate gets core.ErrAuthInProgress.
func (s *AuthService) VerifyChallenge(ctx context.Context, identity *core.Identity, challenge *core.Challenge) (*core.Session, error) {
	s.mu.Lock()
	switch outcome := s.attempts[challenge.SessionID]; outcome.state {
	case StateVerified:
		s.mu.Unlock()
		return s.store.Load(ctx)
	case StateProfileRequired, StateFailed:
		s.mu.Unlock()
		return nil, outcome.err
	case StateSigned:
		s.mu.Unlock()
		return nil, core.ErrAuthInProgress
	}
	s.attempts[challenge.SessionID] = authOutcome{state: StateSigned}
	s.mu.Unlock()

	signature := nostr.SignBase64([]byte(challenge.Text), identity.SigningKey)

	result, err := s.market.Verify(ctx, challenge.SessionID, signature)
	if err != nil {
		s.collector.RecordAuth("verify_error")
		err = fmt.Errorf("submitting verification: %w", err)
		s.finish(challenge.SessionID, StateFailed, err)
		return nil, err
	}
	if !result.Authenticated {
		s.collector.RecordAuth("rejected")
		s.finish(challenge.SessionID, StateFailed, core.ErrAuthenticationFailed)
		return nil, core.ErrAuthenticationFailed
	}

	if s.requireProfile {
		if _, err := s.market.SellerProfile(ctx, identity.PublicKey); err != nil {
			if core.IsNotFound(err) {
				s.collector.RecordAuth("profile_required")
				s.finish(challenge.SessionID, StateProfileRequired, core.ErrProfileRequired)
				return nil, core.ErrProfileRequired
			}
			s.finish(challenge.SessionID, StateFailed, err)
			return nil, fmt.Errorf("checking profile: %w", err)
		}
	}

	session := &core.Session{Token: result.Token, PublicKey: identity.PublicKey}
	if err := s.store.Save(ctx, session); err != nil {
		s.finish(challenge.SessionID, StateFailed, err)
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	if err := s.events.PublishLogin(ctx, identity.PublicKey); err != nil {
		s.logger.Warn("failed to publish login event", "error", err)
	}

	s.collector.RecordAuth("verified")
	s.finish(challenge.SessionID, StateVerified, nil)
	return session, nil
}

// AttemptState returns the recorded state for a session id.
func (s *AuthService) AttemptState(sessionID string) AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[sessionID].state
}

// Validate re-checks the persisted session against the issuer. Any
// rejection clears the store: the client never trusts a cached token the
// issuer has refused (fail closed). A token that is visibly past its
// expiry is cleared without a network call.
func (s *AuthService) Validate(ctx context.Context) (*core.Session, error) {
	session, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return nil, core.ErrNoSession
	}

	if expiredLocally(session.Token) {
		if err := s.store.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear expired session", "error", err)
		}
		return nil, core.ErrSessionExpired
	}

	if err := s.market.ValidateSession(ctx, session.Token); err != nil {
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.logger.Warn("failed to clear rejected session", "error", clearErr)
		}
		return nil, fmt.Errorf("session rejected by issuer: %w", err)
	}

	return session, nil
}

// CurrentSession returns the persisted session without contacting the
// issuer.
func (s *AuthService) CurrentSession(ctx context.Context) (*core.Session, error) {
	session, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, core.ErrNoSession
	}
	return session, nil
}

// Logout clears the persisted session and announces it.
func (s *AuthService) Logout(ctx context.Context) error {
	session, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	if session != nil {
		if err := s.events.PublishLogout(ctx, session.PublicKey); err != nil {
			s.logger.Warn("failed to publish logout event", "error", err)
		}
	}
	return nil
}

func (s *AuthService) finish(sessionID string, state AuthState, err error) {
	s.mu.Lock()
	s.attempts[sessionID] = authOutcome{state: state, err: err}
	s.mu.Unlock()
}

// expiredLocally peeks at the token's expiry claim without verifying the
// signature; only the issuer can do that. Opaque non-JWT tokens pass
// through and the issuer has the final word.
func expiredLocally(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
