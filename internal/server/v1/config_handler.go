package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/modelheap/registry-admin/internal/config"
	"github.com/modelheap/registry-admin/internal/core/modelname"
)

type ConfigHandler struct {
	config *config.Config
}

func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{config: cfg}
}

// Get returns the runtime settings the editor UI needs. Secrets never
// leave the process; this is a curated view, not the raw config.
//
// GET /config
func (h *ConfigHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"environment":      h.config.Server.Env,
		"refresh_interval": h.config.Refresh.IntervalSeconds,
		"parse_names":      h.config.Refresh.ParseNames,
		"tracing_enabled":  h.config.Tracing.Enabled,
		"known_backends":   modelname.KnownBackends(),
	})
}
