package repository

import (
	"context"
	"sync"
	"time"
)

// TokenDenylistMemoryRepository keeps revoked token ids in process memory.
type TokenDenylistMemoryRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewTokenDenylistMemoryRepository constructs an empty denylist.
func NewTokenDenylistMemoryRepository() *TokenDenylistMemoryRepository {
	return &TokenDenylistMemoryRepository{revoked: make(map[string]time.Time), now: time.Now}
}

func (r *TokenDenylistMemoryRepository) Revoke(ctx context.Context, jti string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purge()
	if until.After(r.now()) {
		r.revoked[jti] = until
	}
	return nil
}

func (r *TokenDenylistMemoryRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[jti]
	return ok && until.After(r.now()), nil
}

// purge drops expired entries; callers hold mu.
func (r *TokenDenylistMemoryRepository) purge() {
	now := r.now()
	for jti, until := range r.revoked {
		if !until.After(now) {
			delete(r.revoked, jti)
		}
	}
}
