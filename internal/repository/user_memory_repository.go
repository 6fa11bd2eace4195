package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
)

// UserMemoryRepository is an in-process credential store.
type UserMemoryRepository struct {
	mu     sync.RWMutex
	lastID int64
	users  map[string]models.User
}

// NewUserMemoryRepository constructs an empty store.
func NewUserMemoryRepository() *UserMemoryRepository {
	return &UserMemoryRepository{users: make(map[string]models.User)}
}

func (r *UserMemoryRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func (r *UserMemoryRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[username]
	return ok, nil
}

// Create stores the account; an existing username is left untouched and reported as ErrDuplicate.
func (r *UserMemoryRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return ErrDuplicate
	}
	r.lastID++
	user.ID = r.lastID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.Username] = *user
	return nil
}
