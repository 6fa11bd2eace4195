package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "got:revoked:"

// TokenDenylistRepository records revoked token ids in Redis. Entries expire
// with the token they revoke, so the set never outgrows live tokens.
type TokenDenylistRepository struct {
	client *redis.Client
}

// NewTokenDenylistRepository constructs a Redis backed denylist.
func NewTokenDenylistRepository(client *redis.Client) *TokenDenylistRepository {
	return &TokenDenylistRepository{client: client}
}

// Revoke marks jti revoked until the given expiry.
func (r *TokenDenylistRepository) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, denylistPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (r *TokenDenylistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("redis check token: %w", err)
	}
	return n > 0, nil
}

// NewTokenDenylist picks the Redis denylist when a client is available and the
// in-process one otherwise.
func NewTokenDenylist(client *redis.Client) TokenDenylist {
	if client == nil {
		return NewTokenDenylistMemoryRepository()
	}
	return NewTokenDenylistRepository(client)
}
