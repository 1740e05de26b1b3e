package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vkuzmenko/wardsync/internal/merge"
	"github.com/vkuzmenko/wardsync/internal/server/handlers"
	"github.com/vkuzmenko/wardsync/internal/server/middleware"
	"github.com/vkuzmenko/wardsync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "wardsync.db", "Path to SQLite database")
	tokenTTL := flag.Duration("token-ttl", 15*time.Minute, "Access token lifetime")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := newLogger(*logLevel)

	if err := run(logger, *addr, *dbPath, *tokenTTL); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, dbPath string, tokenTTL time.Duration) error {
	// Секреты только через окружение, не через флаги
	jwtSecret := os.Getenv("WARDSYNC_JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("WARDSYNC_JWT_SECRET is not set")
	}
	enrollmentKey := os.Getenv("WARDSYNC_ENROLLMENT_KEY")
	if enrollmentKey == "" {
		return fmt.Errorf("WARDSYNC_ENROLLMENT_KEY is not set")
	}

	enrollmentKeyHash, err := bcrypt.GenerateFromPassword([]byte(enrollmentKey), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash enrollment key: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	jwtConfig := handlers.JWTConfig{
		Secret:         []byte(jwtSecret),
		AccessTokenTTL: tokenTTL,
	}

	engine := merge.NewEngine("server", merge.NewResolver())
	deviceHandler := handlers.NewDeviceHandler(logger, store, jwtConfig, enrollmentKeyHash)
	syncHandler := handlers.NewSyncHandler(logger, store, store, store, engine)
	healthHandler := handlers.NewHealthHandler(logger, Version)

	// Публичные эндпоинты лимитируются по IP, защищенные по device_id;
	// auth стоит снаружи logging, чтобы device_id попадал в лог запроса
	authMw := middleware.AuthMiddleware(logger, jwtConfig)
	recoveryMw := middleware.RecoveryMiddleware(logger)
	loggingMw := middleware.LoggingMiddleware(logger)
	publicLimit := middleware.RateLimitMiddleware(30, time.Minute, logger)
	syncLimit := middleware.RateLimitMiddleware(120, time.Minute, logger)

	public := func(h http.HandlerFunc) http.Handler {
		return recoveryMw(publicLimit(loggingMw(h)))
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return recoveryMw(authMw(syncLimit(loggingMw(h))))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/health", recoveryMw(http.HandlerFunc(healthHandler.Health)))
	mux.Handle("POST /api/v1/devices/enroll", public(deviceHandler.Enroll))
	mux.Handle("POST /api/v1/devices/token", public(deviceHandler.Token))
	mux.Handle("POST /api/v1/sync/push", protected(syncHandler.Push))
	mux.Handle("POST /api/v1/sync/pull", protected(syncHandler.Pull))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func printVersion() {
	fmt.Printf("WardSync Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
