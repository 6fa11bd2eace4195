package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/MfFischer/game-of-thrones-api/api/swagger"
	"github.com/MfFischer/game-of-thrones-api/internal/authz"
	"github.com/MfFischer/game-of-thrones-api/internal/handler"
	"github.com/MfFischer/game-of-thrones-api/internal/middleware"
	"github.com/MfFischer/game-of-thrones-api/internal/models"
	"github.com/MfFischer/game-of-thrones-api/internal/query"
	"github.com/MfFischer/game-of-thrones-api/internal/repository"
	"github.com/MfFischer/game-of-thrones-api/internal/service"
	"github.com/MfFischer/game-of-thrones-api/pkg/cache"
	"github.com/MfFischer/game-of-thrones-api/pkg/config"
	"github.com/MfFischer/game-of-thrones-api/pkg/logger"
	corsmiddleware "github.com/MfFischer/game-of-thrones-api/pkg/middleware/cors"
	reqidmiddleware "github.com/MfFischer/game-of-thrones-api/pkg/middleware/requestid"
)

// @title Game of Thrones Character API
// @version 1.0.0
// @description Filter, sort and paginate Game of Thrones characters behind JWT authentication
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.OpenStore(ctx, cfg.Storage, cfg.Database)
	if err != nil {
		logr.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := service.NewValidator()
	metrics := service.NewMetricsService()
	limits := query.Limits{DefaultLimit: cfg.Query.DefaultLimit, MaxLimit: cfg.Query.MaxLimit}

	characterSvc := service.NewCharacterService(store.Characters, validate, logr, metrics, limits)
	authSvc := service.NewAuthService(store.Users, repository.NewTokenDenylist(redisClient), validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Leeway:            cfg.JWT.Leeway,
		Issuer:            cfg.JWT.Issuer,
	})

	if created, err := authSvc.EnsureUser(ctx, cfg.Admin.Username, cfg.Admin.Password, models.RoleAdmin); err != nil {
		logr.Fatal("failed to bootstrap admin account", zap.Error(err))
	} else if created {
		logr.Info("bootstrap admin account created", zap.String("username", cfg.Admin.Username))
	}
	if cfg.Seed.DefaultCharacters {
		if _, err := characterSvc.SeedDefaults(ctx); err != nil {
			logr.Fatal("failed to seed characters", zap.Error(err))
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, handler.Routes{
		Prefix:     cfg.APIPrefix,
		Policy:     authz.Policy{AnonymousRead: cfg.Access.AnonymousReads},
		Characters: handler.NewCharacterHandler(characterSvc),
		Auth:       handler.NewAuthHandler(authSvc),
		Metrics:    handler.NewMetricsHandler(metrics),
		Tokens:     authSvc,
		Observer:   metrics,
		Logger:     logr,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
