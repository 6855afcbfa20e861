package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelheap/registry-admin/cmd"
	"github.com/modelheap/registry-admin/internal/adapters/cache/memory"
	rediscache "github.com/modelheap/registry-admin/internal/adapters/cache/redis"
	"github.com/modelheap/registry-admin/internal/adapters/gridstats"
	"github.com/modelheap/registry-admin/internal/adapters/reference"
	"github.com/modelheap/registry-admin/internal/analytics"
	"github.com/modelheap/registry-admin/internal/cli"
	"github.com/modelheap/registry-admin/internal/config"
	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/internal/core/ports"
	"github.com/modelheap/registry-admin/internal/core/resolve"
	"github.com/modelheap/registry-admin/internal/core/services"
	"github.com/modelheap/registry-admin/internal/platform/logger"
	"github.com/modelheap/registry-admin/internal/platform/otel"
	"github.com/modelheap/registry-admin/internal/server"
	"github.com/modelheap/registry-admin/internal/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Initialize(logger.DefaultConfig())
	defer logger.Sync()
	log := logger.Get()

	printBanner()
	go cmd.CheckForUpdates()

	// Register the "modelname" binding rule before any handler binds a body
	domain.InitValidator()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := sqlite.NewSQLiteStorage(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		_ = repo.Close()
	}()

	var cacheService ports.CacheService
	if cfg.Redis.Enabled {
		cacheService, err = rediscache.NewRedisCache(rediscache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unreachable, falling back to in-memory cache", zap.Error(err))
			cacheService = memory.NewMemoryCache()
		} else {
			log.Info("Using Redis snapshot cache", zap.String("addr", cfg.Redis.Addr))
		}
	} else {
		cacheService = memory.NewMemoryCache()
	}

	timeout := time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second
	referenceClient := reference.NewClient(reference.Config{
		BaseURL: cfg.Upstream.ReferenceURL,
		APIKey:  cfg.Upstream.APIKey,
		Timeout: timeout,
	})
	gridClient := gridstats.NewClient(gridstats.Config{
		BaseURL: cfg.Upstream.GridURL,
		Timeout: timeout,
	})

	ingestor := analytics.NewIngestor(log, repo)
	ingestor.Start(ctx)

	registry := services.NewRegistryService(
		log,
		referenceClient,
		gridClient,
		cacheService,
		ingestor,
		repo,
		resolve.MergeOptions{ParseNames: cfg.Refresh.ParseNames},
	)
	registry.StartBackground(ctx, time.Duration(cfg.Refresh.IntervalSeconds)*time.Second)

	shutdownTracer, err := otel.Setup("registry-admin", cfg.Tracing.Enabled, log, os.Stdout)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	srv := server.New(cfg, log, registry, analytics.NewService(repo), repo)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting registry admin API",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}

	// Last flush of any buffered usage rows
	ingestor.Stop()

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}
}

func printBanner() {
	lines := []string{
		` ___ ___  __ _(_)___| |_ _ _ _  _ ___`,
		`| '_/ -_)/ _' | (_-<|  _| '_| || |___|`,
		`|_| \___|\__, |_/__/ \__|_|  \_, |`,
		`         |___/               |__/  admin`,
	}
	for i, line := range lines {
		progress := float64(i) / float64(len(lines)-1)
		fmt.Println(cli.Gradient(line, cli.BrandTeal, cli.BrandIndigo, progress))
	}
	fmt.Printf("  %s registry-admin %s\n\n", cli.Arrow(), cli.Style(cmd.AppVersion, cli.Dim))
}
