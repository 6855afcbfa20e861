package server

import (
	"github.com/modelheap/registry-admin/internal/server/middleware"
	v1 "github.com/modelheap/registry-admin/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	if s.config.Tracing.Enabled {
		s.router.Use(middleware.Tracing("registry-admin"))
	}

	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)
	s.router.Use(limiter.Middleware())

	healthHandler := v1.NewHealthHandler(s.repo)
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/ready", healthHandler.Ready)

	api := s.router.Group("/api/v1")
	api.Use(middleware.Identity())
	api.Use(middleware.Auth(s.repo, s.config.Auth.AdminKeys))
	{
		modelHandler := v1.NewModelHandler(s.registry)
		api.GET("/models", modelHandler.List)
		api.GET("/models/detail", modelHandler.Get)
		api.PUT("/models", modelHandler.Update)
		api.GET("/models/export", modelHandler.Export)
		api.POST("/refresh", modelHandler.Refresh)

		nameHandler := v1.NewNameHandler()
		api.POST("/names/parse", nameHandler.Parse)

		configHandler := v1.NewConfigHandler(s.config)
		api.GET("/config", configHandler.Get)

		if s.analytics != nil {
			analyticsHandler := v1.NewAnalyticsHandler(s.analytics)
			api.GET("/stats/trends", analyticsHandler.Trend)
			api.GET("/stats/top", analyticsHandler.TopModels)
		}

		if s.repo != nil {
			keyHandler := v1.NewKeyHandler(s.repo)
			api.POST("/keys", keyHandler.Create)
			api.GET("/keys", keyHandler.List)

			auditHandler := v1.NewAuditHandler(s.repo)
			api.GET("/audit", auditHandler.Recent)
		}
	}
}
