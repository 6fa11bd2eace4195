package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
)

// CharacterMemoryRepository keeps characters in process memory. All access
// goes through one RWMutex and callers only ever receive copies, so readers
// never observe a half-applied write.
type CharacterMemoryRepository struct {
	mu     sync.RWMutex
	lastID int64
	order  []int64
	byID   map[int64]models.Character
	now    func() time.Time
}

// NewCharacterMemoryRepository constructs an empty in-memory repository.
func NewCharacterMemoryRepository() *CharacterMemoryRepository {
	return &CharacterMemoryRepository{byID: make(map[int64]models.Character), now: time.Now}
}

// Create stores a new character under the next unused id.
func (r *CharacterMemoryRepository) Create(ctx context.Context, draft models.CharacterDraft) (*models.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	now := r.now().UTC()
	c := models.Character{
		ID:        r.lastID,
		Name:      draft.Name,
		House:     draft.House,
		Age:       draft.Age,
		Role:      draft.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	return &c, nil
}

// FindByID returns the character or sql.ErrNoRows.
func (r *CharacterMemoryRepository) FindByID(ctx context.Context, id int64) (*models.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

// List returns a snapshot of all characters in insertion order.
func (r *CharacterMemoryRepository) List(ctx context.Context) ([]models.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Character, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

// Count returns the number of stored characters.
func (r *CharacterMemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}

// Update replaces the mutable fields of an existing character.
func (r *CharacterMemoryRepository) Update(ctx context.Context, id int64, draft models.CharacterDraft) (*models.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c.Name = draft.Name
	c.House = draft.House
	c.Age = draft.Age
	c.Role = draft.Role
	c.UpdatedAt = r.now().UTC()
	r.byID[id] = c
	return &c, nil
}

// Delete removes a character. Its id is not handed out again.
func (r *CharacterMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
