package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/internal/core/modelname"
	"github.com/modelheap/registry-admin/pkg/api"
)

type NameHandler struct{}

func NewNameHandler() *NameHandler {
	return &NameHandler{}
}

// Parse decomposes one model name so the editor can preview how the
// grammar reads it before saving.
//
// POST /names/parse
func (h *NameHandler) Parse(c *gin.Context) {
	var req api.ParseNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(domain.ValidationError(domain.ParseValidationError(err)))
		return
	}

	parsed := modelname.Parse(req.Name)
	c.JSON(http.StatusOK, gin.H{
		"parsed":     parsed,
		"canonical":  modelname.Build(parsed),
		"variations": modelname.AllBackendVariations(req.Name),
	})
}
