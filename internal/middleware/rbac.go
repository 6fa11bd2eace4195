package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/MfFischer/game-of-thrones-api/internal/authz"
	appErrors "github.com/MfFischer/game-of-thrones-api/pkg/errors"
	"github.com/MfFischer/game-of-thrones-api/pkg/response"
)

// DecisionObserver records gate outcomes.
type DecisionObserver interface {
	ObserveDecision(operation, decision string)
}

// Authorize consults the access policy for op before the handler runs.
// Unauthenticated callers get 401 and callers lacking the role get 403.
func Authorize(policy authz.Policy, op authz.Operation, observer DecisionObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := policy.Authorize(CurrentIdentity(c).RoleOrNone(), op)
		if observer != nil {
			observer.ObserveDecision(string(op), decision.String())
		}

		switch decision {
		case authz.Allow:
			c.Next()
		case authz.Unauthenticated:
			if value, ok := c.Get(ContextAuthErrorKey); ok {
				if err, ok := value.(error); ok {
					response.Abort(c, err)
					return
				}
			}
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
		default:
			message := "insufficient privileges"
			if op == authz.OpDelete {
				message = "admin privileges required"
			}
			response.Abort(c, appErrors.Clone(appErrors.ErrForbidden, message))
		}
	}
}
