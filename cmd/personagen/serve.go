// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"personagen/internal/ai"
	"personagen/internal/cache"
	"personagen/internal/database"
	"personagen/internal/generation"
	"personagen/internal/handlers"
	"personagen/internal/history"
	"personagen/internal/persona"
	"personagen/internal/router"
	"personagen/internal/session"
	"personagen/internal/storage"
	"personagen/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

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

	// Connect to Valkey (bearer token sessions).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient)

	// S3-compatible object storage is optional; without it image uploads
	// answer 503 and everything else works.
	var blobs persona.BlobStore
	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		return fmt.Errorf("initialize s3 storage: %w", err)
	}
	if storageClient != nil {
		blobs = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, persona image uploads disabled")
	}

	provider := ai.NewOpenAI(ai.Config{
		APIKey:     cfg.OpenAIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Timeout:    cfg.AITimeout,
		Moderation: cfg.AIModeration,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := provider.Ping(pingCtx); err != nil {
		slog.Warn("ai provider unreachable at startup", "error", err)
	}
	cancelPing()
	slog.Info("ai provider initialized", "base_url", cfg.OpenAIBaseURL, "timeout", cfg.AITimeout, "moderation", cfg.AIModeration)

	personas := persona.NewService(store.NewPersonaStore(db), blobs)
	generations := generation.NewManager(store.NewGenerationStore(db), personas, provider)
	hist := history.NewService(generations, personas)

	r := router.New(router.Config{
		Sessions: sessionStore,
		API:      handlers.NewAPI(personas, generations, hist),
		Checks: map[string]handlers.Check{
			"postgres": db.PingContext,
			"valkey": func(ctx context.Context) error {
				return valkeyClient.Ping(ctx).Err()
			},
		},
		GenerationsPerMinute: cfg.RateLimitPerMinute,
	})

	// WriteTimeout must outlast a provider call plus persistence.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	// In-flight generations get the provider timeout to finish recording.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.AITimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
