package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
	appErrors "github.com/MfFischer/game-of-thrones-api/pkg/errors"
	"github.com/MfFischer/game-of-thrones-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// ContextAuthErrorKey holds the reason a presented token was rejected.
	ContextAuthErrorKey = "authError"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Abort(c, err)
			return
		}
		if token == "" {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// OptionalJWT attaches claims when a valid token is present but does not
// block. A rejected token is remembered so Authorize can report it if the
// route turns out to need an identity.
func OptionalJWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.Set(ContextAuthErrorKey, err)
			c.Next()
			return
		}
		if token == "" {
			c.Next()
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.Set(ContextAuthErrorKey, err)
			c.Next()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// Claims returns the verified claims of the caller, or nil.
func Claims(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}

// CurrentIdentity returns the verified caller, or nil for anonymous requests.
func CurrentIdentity(c *gin.Context) *models.Identity {
	return Claims(c).Identity()
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
