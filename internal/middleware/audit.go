package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MfFischer/game-of-thrones-api/pkg/middleware/requestid"
)

// ContextResourceIDKey lets a handler name the record it created so the
// audit line can include it.
const ContextResourceIDKey = "resourceID"

// Audit logs an audit line after successful mutations.
func Audit(logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		resourceID := c.Param("id")
		if value, ok := c.Get(ContextResourceIDKey); ok {
			if id, ok := value.(int64); ok {
				resourceID = strconv.FormatInt(id, 10)
			}
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("resource", resource),
			zap.String("resource_id", resourceID),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if identity := CurrentIdentity(c); identity != nil {
			fields = append(fields, zap.String("username", identity.Subject), zap.String("role", string(identity.Role)))
		}
		if reqID := requestid.Value(c); reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}
		logger.Info("audit", fields...)
	}
}
