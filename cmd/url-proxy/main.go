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

	"github.com/joho/godotenv"
	"github.com/tendant/url-proxy/pkg/urlproxy/api"
	"github.com/tendant/url-proxy/pkg/urlproxy/config"
	s3storage "github.com/tendant/url-proxy/pkg/urlproxy/storage/s3"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Optional .env for local development
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			logger.Error("AWS credentials not set! Please set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables.")
		} else {
			logger.Error("Server failed", "err", err)
		}
		os.Exit(1)
	}
}

// run loads configuration, builds the signer and serves until ctx is cancelled.
// Configuration errors are returned before the listener is opened.
func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	httpServer, err := newHTTPServer(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting URL proxy service", "port", config.Port)
	logger.Info("AWS configuration", "region", cfg.Region, "bucket", cfg.Bucket, "expiration_seconds", cfg.PresignExpiration)
	logger.Warn("LOCAL DEVELOPMENT ONLY - DO NOT USE IN PRODUCTION")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exiting")
	return nil
}

// newHTTPServer builds the shared S3 signer once and mounts the proxy routes
func newHTTPServer(cfg *config.Config, logger *slog.Logger) (*http.Server, error) {
	backend, err := s3storage.New(s3storage.Config{
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Endpoint:        cfg.Endpoint,
		UsePathStyle:    cfg.UsePathStyle,
		PresignDuration: cfg.Expiration(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 backend: %w", err)
	}

	handler := api.NewProxyHandler(backend, logger)

	return &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler.Routes(),
	}, nil
}
