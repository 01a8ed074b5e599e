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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/munchmtxi/realtime-gateway/internal/adapters/primary/http"
	mw "github.com/munchmtxi/realtime-gateway/internal/adapters/primary/http/middleware"
	"github.com/munchmtxi/realtime-gateway/internal/adapters/primary/websocket"
	"github.com/munchmtxi/realtime-gateway/internal/adapters/secondary/postgres"
	"github.com/munchmtxi/realtime-gateway/internal/auth"
	"github.com/munchmtxi/realtime-gateway/internal/config"
	"github.com/munchmtxi/realtime-gateway/internal/core/dispatch"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	"github.com/munchmtxi/realtime-gateway/internal/core/ports"
	"github.com/munchmtxi/realtime-gateway/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Initialize the optional dispatch audit store
	ctx := context.Background()

	var pool *pgxpool.Pool
	var auditRepo *postgres.DispatchLogRepository
	if cfg.AuditEnabled() {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			logger.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}

		poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
		poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
		poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Error("database ping failed", "error", err)
			os.Exit(1)
		}

		if err := runMigrations(cfg); err != nil {
			logger.Error("database migration failed", "error", err)
			os.Exit(1)
		}

		auditRepo = postgres.NewDispatchLogRepository(pool)
		logger.Info("dispatch audit store enabled")
	} else {
		logger.Info("dispatch audit store disabled, using log sink only")
	}

	// 4. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	hub := websocket.NewHub(logger)

	sinks := []ports.DispatchSink{dispatch.NewLogSink(logger)}
	if auditRepo != nil {
		sinks = append(sinks, auditRepo)
	}
	dispatcher := dispatch.New(hub, logger, sinks...)
	registry := websocket.NewRegistry(dispatcher, logger)

	// 5. Initialize Rate Limiters
	var generalRateLimiter, emitRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		}, logger)

		emitRateLimiter = mw.NewRateLimiter(mw.AuthRateLimiterConfig(), logger)
	}

	// 6. Handlers (Primary Adapters)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, registry, tokenManager, cfg, logger)
	emitHandler := httpAdapter.NewEmitHandler(dispatcher, cfg, logger)

	var auditReader httpAdapter.DispatchAuditReader
	if auditRepo != nil {
		auditReader = auditRepo
	}
	statsHandler := httpAdapter.NewStatsHandler(hub, auditReader, logger)

	var auditChecker httpAdapter.HealthChecker
	if auditRepo != nil {
		auditChecker = auditRepo
	}
	healthHandler := httpAdapter.NewHealthHandler(auditChecker, hub, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.WebSocket.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Apply general rate limiting if enabled
	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket route (Authentication is handled inside the handler)
		r.Get("/ws", wsHandler.ServeHTTP)

		// Server-to-server emit endpoint with stricter rate limiting
		r.Group(func(r chi.Router) {
			if emitRateLimiter != nil {
				r.Use(emitRateLimiter.Middleware)
			}
			r.Post("/emit", emitHandler.Emit)
		})

		// Operator stats, restricted to admin tokens
		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			r.Use(mw.RequireRole(domain.RoleAdmin))
			r.Get("/stats", statsHandler.Overview)
			r.Get("/stats/dispatches", statsHandler.Dispatches)
			r.Get("/stats/presence/{role}/{userID}", statsHandler.Presence)
			r.Get("/stats/rooms/*", statsHandler.RoomSize)
		})
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}

// runMigrations applies pending schema migrations for the audit store.
func runMigrations(cfg *config.Config) error {
	mig, err := migrate.New("file://"+cfg.Database.MigrationsPath, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
