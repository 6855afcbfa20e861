package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/internal/store"
)

type AuditHandler struct {
	repo store.Repository
}

func NewAuditHandler(repo store.Repository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// Recent returns the latest audit events, newest first.
//
// GET /audit?limit=50
func (h *AuditHandler) Recent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		_ = c.Error(domain.BadRequestError("Invalid 'limit' parameter"))
		return
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	events, err := h.repo.Audit().Recent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(domain.InternalError("Failed to fetch audit events", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   events,
	})
}
