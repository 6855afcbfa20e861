package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/internal/core/modelname"
	"github.com/modelheap/registry-admin/internal/core/ports"
	"github.com/modelheap/registry-admin/pkg/schema"
)

type ModelHandler struct {
	service ports.Registry
}

func NewModelHandler(service ports.Registry) *ModelHandler {
	return &ModelHandler{service: service}
}

// List returns the grouped display list.
//
// GET /models?backend=&author=&nsfw=&q=
func (h *ModelHandler) List(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		_ = c.Error(domain.BadRequestError(err.Error()))
		return
	}

	entries, meta, err := h.service.Display(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   entries,
		"meta":   meta,
	})
}

// Get returns one entry by name. Model names contain slashes, so the
// name travels as a query parameter rather than a path segment.
//
// GET /models/detail?name=koboldcpp/L3-8B
func (h *ModelHandler) Get(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		_ = c.Error(domain.BadRequestError("name parameter is required"))
		return
	}

	entry, err := h.service.Get(c.Request.Context(), name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Update writes an edited catalogue record through to the reference.
// The body is the full record; fields this service does not model are
// preserved verbatim.
//
// PUT /models
func (h *ModelHandler) Update(c *gin.Context) {
	var rec schema.ReferenceRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		_ = c.Error(domain.ValidationError(domain.ParseValidationError(err)))
		return
	}

	if modelname.BaseName(rec.Name) == "" {
		_ = c.Error(domain.BadRequestError("record name must contain a model name"))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), rec)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Refresh forces a snapshot rebuild outside the scheduled cycle.
//
// POST /refresh
func (h *ModelHandler) Refresh(c *gin.Context) {
	summary, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Export streams the filtered display list as a CSV download.
//
// GET /models/export?backend=&author=&nsfw=&q=
func (h *ModelHandler) Export(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		_ = c.Error(domain.BadRequestError(err.Error()))
		return
	}

	data, err := h.service.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="models.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func filterFromQuery(c *gin.Context) (ports.ModelFilter, error) {
	filter := ports.ModelFilter{
		Backend: c.Query("backend"),
		Author:  c.Query("author"),
		Query:   c.Query("q"),
	}
	if raw := c.Query("nsfw"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid 'nsfw' parameter")
		}
		filter.NSFW = &v
	}
	return filter, nil
}
