package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
	"github.com/MfFischer/game-of-thrones-api/internal/query"
	"github.com/MfFischer/game-of-thrones-api/internal/repository"
	"github.com/MfFischer/game-of-thrones-api/internal/service"
	"github.com/MfFischer/game-of-thrones-api/pkg/config"
	"github.com/MfFischer/game-of-thrones-api/pkg/logger"
)

func main() {
	var (
		withUsers      bool
		withCharacters bool
		userName       string
		userPassword   string
		timeout        time.Duration
	)

	flag.BoolVar(&withUsers, "users", true, "Create the admin account and a demo user")
	flag.BoolVar(&withCharacters, "characters", true, "Insert the default characters when the store is empty")
	flag.StringVar(&userName, "user", "user", "Demo user name")
	flag.StringVar(&userPassword, "user-password", "user123", "Demo user password")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Storage.Driver == config.StorageMemory {
		log.Fatalf("seeding the memory store has no lasting effect; set STORAGE_DRIVER to sqlite or postgres")
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := repository.OpenStore(ctx, cfg.Storage, cfg.Database)
	if err != nil {
		logr.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.Close() //nolint:errcheck

	validate := service.NewValidator()

	if withUsers {
		auth := service.NewAuthService(store.Users, nil, validate, logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret})
		accounts := []struct {
			name, password string
			role           models.UserRole
		}{
			{cfg.Admin.Username, cfg.Admin.Password, models.RoleAdmin},
			{userName, userPassword, models.RoleUser},
		}
		for _, account := range accounts {
			created, err := auth.EnsureUser(ctx, account.name, account.password, account.role)
			if err != nil {
				logr.Fatal("failed to seed user", zap.String("username", account.name), zap.Error(err))
			}
			logr.Info("user seeded", zap.String("username", account.name), zap.Bool("created", created))
		}
	}

	if withCharacters {
		characters := service.NewCharacterService(store.Characters, validate, logr, nil, query.DefaultLimits)
		n, err := characters.SeedDefaults(ctx)
		if err != nil {
			logr.Fatal("failed to seed characters", zap.Error(err))
		}
		logr.Info("characters seeded", zap.Int("inserted", n))
	}
}
