package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nostrmarket/agora/core"
	"github.com/nostrmarket/agora/ports"
)

// Well-known keys of the persisted credential scope. The token and public
// key live under separate keys and are cleared wholesale on logout.
const (
	keyAuthToken     = "agora:session:authToken"
	keyUserPublicKey = "agora:session:userPublicKey"
)

// RedisStore persists the session in Redis so it survives process restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) ports.SessionStore {
	return &RedisStore{client: client}
}

// Save persists the session, replacing any existing one.
func (s *RedisStore) Save(ctx context.Context, session *core.Session) error {
	if err := s.client.MSet(ctx, keyAuthToken, session.Token, keyUserPublicKey, session.PublicKey).Err(); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return nil
}

// Load returns the persisted session, or (nil, nil) when empty. A scope
// with either key missing is treated as empty.
func (s *RedisStore) Load(ctx context.Context) (*core.Session, error) {
	values, err := s.client.MGet(ctx, keyAuthToken, keyUserPublicKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	token, okToken := values[0].(string)
	pubkey, okPubkey := values[1].(string)
	if !okToken || !okPubkey || token == "" || pubkey == "" {
		return nil, nil
	}

	return &core.Session{Token: token, PublicKey: pubkey}, nil
}

// Clear removes the persisted session.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, keyAuthToken, keyUserPublicKey).Err(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
