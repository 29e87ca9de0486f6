// Package main is the entry point for the college board API server.
//
// main stays minimal:
//  1. Load and validate configuration
//  2. Build the logger and the external resources (database, object storage, OAuth)
//  3. Hand them to internal/server and block until shutdown
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/college-board/internal/auth"
	"github.com/sakif/college-board/internal/config"
	"github.com/sakif/college-board/internal/repository/sqlstore"
	"github.com/sakif/college-board/internal/server"
	"github.com/sakif/college-board/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === DATABASE ===
	// For sqlite the DSN is a file path; create its directory like `mkdir -p`.
	if cfg.DB.Driver == sqlstore.DriverSQLite && cfg.DB.DSN != ":memory:" {
		dir := filepath.Dir(cfg.DB.DSN)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	store, err := sqlstore.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	deps := server.Deps{Store: store}

	// === OBJECT STORAGE ===
	// Optional: without MinIO, clubs can be created but image uploads are rejected.
	if cfg.MinIO.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		images, err := storage.NewMinIOStore(ctx, cfg.MinIO)
		cancel()
		if err != nil {
			logger.Error("failed to connect to MinIO", slog.String("error", err.Error()))
			store.Close()
			os.Exit(1)
		}
		deps.Images = images
		logger.Info("club image storage enabled", slog.String("bucket", cfg.MinIO.Bucket))
	} else {
		logger.Warn("MINIO_ENDPOINT not set, club image uploads are disabled")
	}

	// === GITHUB OAUTH ===
	if cfg.GitHub.Enabled() {
		deps.GitHub = auth.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.CallbackURL)
	}

	srv, err := server.New(cfg, deps, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		store.Close()
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM and closes the store on the way out.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
