package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"repowatch.app/watcher/common/id"
	"repowatch.app/watcher/common/logger"
	"repowatch.app/watcher/common/otel"
	"repowatch.app/watcher/core/config"
	"repowatch.app/watcher/internal/github"
	"repowatch.app/watcher/internal/http/middleware"
	httprouter "repowatch.app/watcher/internal/http/router"
	"repowatch.app/watcher/internal/metrics"
	"repowatch.app/watcher/internal/poller"
	"repowatch.app/watcher/internal/service"
	"repowatch.app/watcher/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "repowatch starting",
		"env", cfg.Env,
		"poll_interval", cfg.Poll.Interval,
		"log_capacity", cfg.EventLog.Capacity,
		"authenticated", cfg.GitHub.Authenticated())

	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	stores := store.NewStores(cfg.EventLog.Capacity)
	m := metrics.New()

	ghClient := github.NewClient(cfg.GitHub)
	p := poller.New(ghClient, stores.Registry(), stores.Ledger())
	manager := poller.NewManager(p, stores.Registry(), stores.Events(), m, cfg.Poll.Interval)

	managerCtx, cancelManager := context.WithCancel(ctx)
	defer cancelManager()
	go func() {
		if err := manager.Run(managerCtx); err != nil && managerCtx.Err() == nil {
			slog.ErrorContext(ctx, "poll manager exited", "error", err)
		}
	}()

	watches := service.NewWatchService(stores)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, watches, m)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	cancelManager()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, watches service.WatchService, m *metrics.Metrics) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, watches, m)

	return router
}

const banner = `
██████╗ ███████╗██████╗  ██████╗ ██╗    ██╗ █████╗ ████████╗ ██████╗██╗  ██╗
██╔══██╗██╔════╝██╔══██╗██╔═══██╗██║    ██║██╔══██╗╚══██╔══╝██╔════╝██║  ██║
██████╔╝█████╗  ██████╔╝██║   ██║██║ █╗ ██║███████║   ██║   ██║     ███████║
██╔══██╗██╔══╝  ██╔═══╝ ██║   ██║██║███╗██║██╔══██║   ██║   ██║     ██╔══██║
██║  ██║███████╗██║     ╚██████╔╝╚███╔███╔╝██║  ██║   ██║   ╚██████╗██║  ██║
╚═╝  ╚═╝╚══════╝╚═╝      ╚═════╝  ╚══╝╚══╝ ╚═╝  ╚═╝   ╚═╝    ╚═════╝╚═╝  ╚═╝
`
