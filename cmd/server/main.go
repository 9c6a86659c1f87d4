package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hugh/go-portal/internal/api"
	"github.com/hugh/go-portal/internal/auth"
	"github.com/hugh/go-portal/internal/store"
	"github.com/hugh/go-portal/internal/web"
	"github.com/hugh/go-portal/pkg/config"
	"github.com/hugh/go-portal/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env, cfg.Log.Level)
	slog.SetDefault(logger)

	logger.Info("starting go-portal server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
		"storage", cfg.Storage.Root,
	)

	if cfg.Session.Secret == config.DefaultSessionSecret {
		if !cfg.Server.IsDevelopment() {
			logger.Error("SESSION_SECRET must be set outside development")
			os.Exit(1)
		}
		logger.Warn("SESSION_SECRET not set, using the development default")
	}

	st, err := store.Open(&cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	if cfg.Storage.SweepSchedule != "" {
		sweeper, err := store.NewSweeper(st, cfg.Storage.SweepSchedule, cfg.Storage.TempMaxAge(), logger)
		if err != nil {
			logger.Error("invalid STORAGE_SWEEP_SCHEDULE", "error", err)
			os.Exit(1)
		}
		stopSweeper, err := sweeper.Start()
		if err != nil {
			logger.Error("failed to start temp file sweeper", "error", err)
			os.Exit(1)
		}
		defer stopSweeper()
	}

	hasher, err := auth.NewHasher(auth.Params{
		Memory:      uint32(cfg.Argon2.MemoryKB),
		Iterations:  uint32(cfg.Argon2.Iterations),
		Parallelism: uint8(cfg.Argon2.Parallelism),
	})
	if err != nil {
		logger.Error("failed to create password hasher", "error", err)
		os.Exit(1)
	}
	params := hasher.Params()
	logger.Info("password hashing",
		"memory_kb", params.Memory,
		"iterations", params.Iterations,
		"parallelism", params.Parallelism,
	)

	sessions := auth.NewSessionManager(cfg.Session.Secret, cfg.Session.MaxAge(), cfg.Session.SecureCookie)
	authService := auth.NewService(st, hasher, logger)

	// Load templates
	templates, err := web.LoadTemplates()
	if err != nil {
		logger.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	// Get static file system
	staticFS, err := web.GetStaticFS()
	if err != nil {
		logger.Error("failed to get static fs", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		Store:          st,
		Logger:         logger,
		AuthService:    authService,
		Sessions:       sessions,
		Templates:      templates,
		StaticFS:       staticFS,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
