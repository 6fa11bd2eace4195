package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MfFischer/game-of-thrones-api/internal/authz"
	"github.com/MfFischer/game-of-thrones-api/internal/middleware"
)

// Routes bundles what RegisterRoutes needs.
type Routes struct {
	Prefix     string
	Policy     authz.Policy
	Characters *CharacterHandler
	Auth       *AuthHandler
	Metrics    *MetricsHandler
	Tokens     middleware.TokenValidator
	Observer   middleware.DecisionObserver
	Logger     *zap.Logger
}

// RegisterRoutes mounts the API on r.
func RegisterRoutes(r *gin.Engine, rt Routes) {
	r.GET("/", rt.Metrics.Root)
	r.GET("/health", rt.Metrics.Health)
	r.GET("/metrics", rt.Metrics.Prometheus)

	api := r.Group(rt.Prefix)
	api.Use(middleware.OptionalJWT(rt.Tokens))

	auth := api.Group("/auth")
	auth.POST("/register", rt.Auth.Register)
	auth.POST("/login", rt.Auth.Login)
	auth.POST("/logout", middleware.JWT(rt.Tokens), rt.Auth.Logout)
	auth.GET("/me", middleware.JWT(rt.Tokens), rt.Auth.Me)

	gate := func(op authz.Operation) gin.HandlerFunc {
		return middleware.Authorize(rt.Policy, op, rt.Observer)
	}
	audit := func(action string) gin.HandlerFunc {
		return middleware.Audit(rt.Logger, action, "character")
	}

	characters := api.Group("/characters")
	characters.GET("", gate(authz.OpRead), rt.Characters.List)
	characters.POST("", gate(authz.OpCreate), audit("create"), rt.Characters.Create)
	characters.GET("/:id", gate(authz.OpRead), rt.Characters.Get)
	characters.PUT("/:id", gate(authz.OpUpdate), audit("update"), rt.Characters.Update)
	characters.DELETE("/:id", gate(authz.OpDelete), audit("delete"), rt.Characters.Delete)
}
