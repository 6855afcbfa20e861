package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/modelheap/registry-admin/internal/analytics"
	"github.com/modelheap/registry-admin/internal/core/domain"
)

type AnalyticsHandler struct {
	service analytics.Service
}

func NewAnalyticsHandler(service analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

// Trend returns one model's per-day usage history.
//
// GET /stats/trends?name=L3-8B&days=7
func (h *AnalyticsHandler) Trend(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		_ = c.Error(domain.BadRequestError("name parameter is required"))
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil {
		_ = c.Error(domain.BadRequestError("Invalid 'days' parameter"))
		return
	}

	points, err := h.service.Trend(c.Request.Context(), name, days)
	if err != nil {
		_ = c.Error(domain.InternalError("Failed to fetch trend", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"model":  name,
		"data":   points,
	})
}

// TopModels ranks models by peak daily usage over the window.
//
// GET /stats/top?days=7&limit=10
func (h *AnalyticsHandler) TopModels(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil {
		_ = c.Error(domain.BadRequestError("Invalid 'days' parameter"))
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		_ = c.Error(domain.BadRequestError("Invalid 'limit' parameter"))
		return
	}

	top, err := h.service.TopModels(c.Request.Context(), days, limit)
	if err != nil {
		_ = c.Error(domain.InternalError("Failed to fetch top models", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   top,
	})
}
