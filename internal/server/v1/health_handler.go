package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/modelheap/registry-admin/internal/store"
)

type HealthHandler struct {
	startTime time.Time
	repo      store.Repository
}

// NewHealthHandler creates the liveness and readiness probes. repo may be
// nil when the server runs without persistence; Ready then only reports
// that the process is up.
func NewHealthHandler(repo store.Repository) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		repo:      repo,
	}
}

// Health returns the health status and uptime of the API.
//
// This endpoint is used by load balancers and monitoring systems
// to verify the service is running.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.startTime).String(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready checks if the service is ready to handle requests.
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.repo != nil {
		if err := h.repo.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"error":  "database unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
