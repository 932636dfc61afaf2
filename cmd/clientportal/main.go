// Package main is the entry point for the client portal server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
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

	"github.com/getsentry/sentry-go"

	"clientportal/internal/cache"
	"clientportal/internal/config"
	"clientportal/internal/database"
	"clientportal/internal/handlers"
	"clientportal/internal/logging"
	"clientportal/internal/middleware"
	"clientportal/internal/portal"
	"clientportal/internal/router"
	"clientportal/internal/session"
	"clientportal/internal/storage"
	"clientportal/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; real environment wins.
	if err := config.LoadDotenv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Structured logger: text in development, JSON otherwise, optionally
	// tee'd into a rotated file.
	logCloser := logging.Setup(logging.Options{
		Env:   cfg.Env,
		File:  cfg.LogFile,
		Level: logging.ParseLevel(cfg.LogLevel),
	})
	defer logCloser.Close()

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Error reporting is optional; an empty DSN leaves the SDK disabled.
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		}); err != nil {
			return err
		}
		defer sentry.Flush(2 * time.Second)
		slog.Info("sentry error reporting enabled")
	}

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies())
	viewCache := cache.NewViewCache(valkeyClient, cfg.ViewCacheTTL)

	// Initialize data stores and the portal service over them.
	clientStore := store.NewClientStore(db)
	configStore := store.NewConfigStore(db)
	blockStore := store.NewBlockStore(db)
	userStore := store.NewUserStore(db)

	resolver := portal.NewResolver(clientStore, configStore, blockStore)
	public := handlers.NewPublic(resolver, viewCache)
	mutator := portal.NewMutator(clientStore, configStore, blockStore,
		portal.WithInvalidator(public),
	)

	// Resolved views cached by an older deploy may not match this build.
	if err := viewCache.InvalidateAll(context.Background()); err != nil {
		slog.Warn("view cache flush failed", "error", err)
	}

	// Connect to S3-compatible object storage (optional; logo uploads
	// answer 503 without it).
	var logos handlers.LogoStore
	if cfg.StorageEnabled() {
		storageClient, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			return err
		}
		logos = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, logo uploads disabled")
	}

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer loginLimiter.Stop()

	r := router.New(sessionStore,
		handlers.NewAdmin(resolver, mutator, logos),
		handlers.NewAuth(sessionStore, userStore),
		public,
		router.Options{
			SecureCookies: cfg.SecureCookies(),
			LoginLimiter:  loginLimiter,
		},
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-serveErr:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}
