package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
)

const characterColumns = "id, name, house, age, role, created_at, updated_at"

// CharacterRepository persists characters in PostgreSQL or SQLite. Queries
// are written with ? placeholders and rebound for the connected driver.
type CharacterRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewCharacterRepository constructs a CharacterRepository.
func NewCharacterRepository(db *sqlx.DB) *CharacterRepository {
	return &CharacterRepository{db: db, now: time.Now}
}

// Create inserts a character and returns it with its generated id.
func (r *CharacterRepository) Create(ctx context.Context, draft models.CharacterDraft) (*models.Character, error) {
	now := r.now().UTC()
	c := models.Character{
		Name:      draft.Name,
		House:     draft.House,
		Age:       draft.Age,
		Role:      draft.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	query := r.db.Rebind(`INSERT INTO characters (name, house, age, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := r.db.GetContext(ctx, &c.ID, query, c.Name, c.House, c.Age, c.Role, c.CreatedAt, c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	return &c, nil
}

// FindByID fetches a character; a missing id yields sql.ErrNoRows.
func (r *CharacterRepository) FindByID(ctx context.Context, id int64) (*models.Character, error) {
	return findCharacter(ctx, r.db, id)
}

// List returns every character ordered by id, which is insertion order.
func (r *CharacterRepository) List(ctx context.Context) ([]models.Character, error) {
	characters := []models.Character{}
	if err := r.db.SelectContext(ctx, &characters, "SELECT "+characterColumns+" FROM characters ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	return characters, nil
}

// Count returns the number of stored characters.
func (r *CharacterRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM characters"); err != nil {
		return 0, fmt.Errorf("count characters: %w", err)
	}
	return total, nil
}

// Update replaces the mutable fields and returns the stored row, all in one transaction.
func (r *CharacterRepository) Update(ctx context.Context, id int64, draft models.CharacterDraft) (*models.Character, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update character: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := tx.Rebind(`UPDATE characters SET name = ?, house = ?, age = ?, role = ?, updated_at = ? WHERE id = ?`)
	res, err := tx.ExecContext(ctx, query, draft.Name, draft.House, draft.Age, draft.Role, r.now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("update character: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, fmt.Errorf("update character %d: %w", id, err)
	}

	c, err := findCharacter(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update character: %w", err)
	}
	return c, nil
}

// Delete removes a character; a missing id yields sql.ErrNoRows.
func (r *CharacterRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM characters WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	if err := requireRow(res); err != nil {
		return fmt.Errorf("delete character %d: %w", id, err)
	}
	return nil
}

type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

func findCharacter(ctx context.Context, q queryer, id int64) (*models.Character, error) {
	var c models.Character
	query := q.Rebind("SELECT " + characterColumns + " FROM characters WHERE id = ?")
	if err := q.GetContext(ctx, &c, query, id); err != nil {
		return nil, fmt.Errorf("find character %d: %w", id, err)
	}
	return &c, nil
}

// requireRow turns a statement that touched nothing into sql.ErrNoRows.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
