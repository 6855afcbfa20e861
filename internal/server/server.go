package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/modelheap/registry-admin/internal/analytics"
	"github.com/modelheap/registry-admin/internal/config"
	"github.com/modelheap/registry-admin/internal/core/ports"
	"github.com/modelheap/registry-admin/internal/store"
	"go.uber.org/zap"
)

type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    *zap.Logger
	registry  ports.Registry
	analytics analytics.Service
	repo      store.Repository
}

// New assembles the HTTP layer. repo and analytics may be nil when the
// server runs without persistence; the routes needing them are skipped.
func New(cfg *config.Config, logger *zap.Logger, registry ports.Registry, analytics analytics.Service, repo store.Repository) *Server {

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	engine.Use(ginzap.RecoveryWithZap(logger, true))

	s := &Server{
		router:    engine,
		config:    cfg,
		logger:    logger,
		registry:  registry,
		analytics: analytics,
		repo:      repo,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
