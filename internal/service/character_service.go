package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
	"github.com/MfFischer/game-of-thrones-api/internal/query"
	appErrors "github.com/MfFischer/game-of-thrones-api/pkg/errors"
)

type characterRepository interface {
	Create(ctx context.Context, draft models.CharacterDraft) (*models.Character, error)
	FindByID(ctx context.Context, id int64) (*models.Character, error)
	List(ctx context.Context) ([]models.Character, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id int64, draft models.CharacterDraft) (*models.Character, error)
	Delete(ctx context.Context, id int64) error
}

type storeObserver interface {
	ObserveStoreOp(op string, duration time.Duration, err error)
}

// CharacterPage is one page of a character listing together with the
// parsed query that produced it.
type CharacterPage struct {
	Result query.Result
	Spec   query.Spec
}

// DefaultCharacters is inserted into an empty store when seeding is enabled.
var DefaultCharacters = []models.CharacterDraft{
	{Name: "Jon Snow", House: "Stark", Age: 25, Role: "Lord Commander of the Night's Watch"},
	{Name: "Daenerys Targaryen", House: "Targaryen", Age: 24, Role: "Queen of the Seven Kingdoms"},
}

// CharacterService implements the character use cases.
type CharacterService struct {
	repo      characterRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   storeObserver
	limits    query.Limits
}

// NewCharacterService constructs a CharacterService.
func NewCharacterService(repo characterRepository, validate *validator.Validate, logger *zap.Logger, metrics storeObserver, limits query.Limits) *CharacterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if metrics == nil {
		metrics = (*MetricsService)(nil)
	}
	return &CharacterService{repo: repo, validator: validate, logger: logger, metrics: metrics, limits: limits}
}

// List validates the query parameters and evaluates them against a snapshot
// of the store.
func (s *CharacterService) List(ctx context.Context, params url.Values) (*CharacterPage, error) {
	spec, err := query.Parse(params, s.limits)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := s.repo.List(ctx)
	s.metrics.ObserveStoreOp("list", time.Since(start), err)
	if err != nil {
		return nil, s.storageFault(err, "failed to list characters")
	}

	return &CharacterPage{Result: query.Apply(records, spec), Spec: spec}, nil
}

// Get returns a character by id.
func (s *CharacterService) Get(ctx context.Context, id int64) (*models.Character, error) {
	start := time.Now()
	character, err := s.repo.FindByID(ctx, id)
	s.observe("get", start, err)
	if err != nil {
		return nil, s.translate(err, id, "failed to load character")
	}
	return character, nil
}

// Create validates the payload and stores a new character.
func (s *CharacterService) Create(ctx context.Context, req CharacterRequest) (*models.Character, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid character payload", err)
	}

	start := time.Now()
	character, err := s.repo.Create(ctx, req.Draft())
	s.metrics.ObserveStoreOp("create", time.Since(start), err)
	if err != nil {
		return nil, s.storageFault(err, "failed to create character")
	}
	return character, nil
}

// Update replaces every mutable field of an existing character.
func (s *CharacterService) Update(ctx context.Context, id int64, req CharacterRequest) (*models.Character, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid character payload", err)
	}

	start := time.Now()
	character, err := s.repo.Update(ctx, id, req.Draft())
	s.observe("update", start, err)
	if err != nil {
		return nil, s.translate(err, id, "failed to update character")
	}
	return character, nil
}

// Delete removes a character.
func (s *CharacterService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.repo.Delete(ctx, id)
	s.observe("delete", start, err)
	if err != nil {
		return s.translate(err, id, "failed to delete character")
	}
	return nil
}

// SeedDefaults inserts DefaultCharacters when the store is empty and returns
// how many records were written.
func (s *CharacterService) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, s.storageFault(err, "failed to count characters")
	}
	if count > 0 {
		s.logger.Debug("character store already populated, skipping seed", zap.Int("count", count))
		return 0, nil
	}

	for i, draft := range DefaultCharacters {
		if _, err := s.repo.Create(ctx, draft); err != nil {
			return i, s.storageFault(err, "failed to seed characters")
		}
	}
	s.logger.Info("seeded default characters", zap.Int("count", len(DefaultCharacters)))
	return len(DefaultCharacters), nil
}

func (s *CharacterService) observe(op string, start time.Time, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	s.metrics.ObserveStoreOp(op, time.Since(start), err)
}

func (s *CharacterService) translate(err error, id int64, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("character %d doesn't exist", id))
	}
	return s.storageFault(err, message)
}

func (s *CharacterService) storageFault(err error, message string) error {
	s.logger.Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
