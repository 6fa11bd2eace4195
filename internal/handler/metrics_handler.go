package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MfFischer/game-of-thrones-api/internal/service"
)

// DocsPath is where the interactive API documentation is served.
const DocsPath = "/docs/index.html"

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health godoc
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"message":  "Game of Thrones API is running",
		"docs_url": DocsPath,
	})
}

// Root sends browsers to the documentation.
func (h *MetricsHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, DocsPath)
}
