package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
	"github.com/MfFischer/game-of-thrones-api/pkg/config"
	"github.com/MfFischer/game-of-thrones-api/pkg/database"
)

// CharacterStore is implemented by the memory and SQL character repositories.
type CharacterStore interface {
	Create(ctx context.Context, draft models.CharacterDraft) (*models.Character, error)
	FindByID(ctx context.Context, id int64) (*models.Character, error)
	List(ctx context.Context) ([]models.Character, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id int64, draft models.CharacterDraft) (*models.Character, error)
	Delete(ctx context.Context, id int64) error
}

// UserStore is implemented by the memory and SQL user repositories.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

// TokenDenylist is implemented by the memory and Redis denylists.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Store groups the repositories backed by one storage driver.
type Store struct {
	Driver     string
	Characters CharacterStore
	Users      UserStore
	db         *sqlx.DB
}

// OpenStore connects the configured driver and migrates SQL schemas.
func OpenStore(ctx context.Context, cfg config.StorageConfig, dbCfg config.DatabaseConfig) (*Store, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.Driver {
	case "", config.StorageMemory:
		return &Store{
			Driver:     config.StorageMemory,
			Characters: NewCharacterMemoryRepository(),
			Users:      NewUserMemoryRepository(),
		}, nil
	case config.StorageSQLite:
		db, err = database.NewSQLite(cfg.SQLitePath)
	case config.StoragePostgres:
		db, err = database.NewPostgres(ctx, dbCfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		Driver:     cfg.Driver,
		Characters: NewCharacterRepository(db),
		Users:      NewUserRepository(db),
		db:         db,
	}, nil
}

// Close releases the database connection, if any.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
