// Package app wires configuration, storage, sessions, fanout and the
// HTTP server into one lifecycle.
package app

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"burrow/internal/janitor"
	"burrow/pkg/account"
	"burrow/pkg/auth"
	"burrow/pkg/banner"
	"burrow/pkg/blob"
	"burrow/pkg/config"
	"burrow/pkg/logger"
	"burrow/pkg/notify"
	"burrow/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	cfg     *config.Config
	version string

	signer   *auth.Signer
	sessions *auth.SessionStore
	blobs    blob.Store
	accounts *account.Service

	stopFanout chan struct{}
}

// New initializes resources that do not require a running context:
// config validation, logging, the document store, Redis sessions and
// optional blob storage. Call Run to start serving.
func New(cfg *config.Config, version string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := store.Open(cfg.Server.DBPath); err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", cfg.Server.DBPath, err)
	}

	sessions, err := auth.NewSessionStore(cfg.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis sessions: %w", err)
	}

	var blobs blob.Store
	if cfg.Blob.Enabled {
		ms, err := blob.NewMinioStore(
			cfg.Blob.Endpoint, cfg.Blob.AccessKey, cfg.Blob.SecretKey,
			cfg.Blob.Bucket, cfg.Blob.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("blob storage: %w", err)
		}
		blobs = ms
	}

	signer := auth.NewSigner(cfg.Auth.JWTSecret)
	a := &App{
		cfg:      cfg,
		version:  version,
		signer:   signer,
		sessions: sessions,
		blobs:    blobs,
		accounts: account.NewService(signer, sessions),
	}
	return a, nil
}

// Run starts the fanout worker, the janitor and the HTTP server, and
// blocks until ctx is cancelled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	notify.SetDefaultQueue(notify.NewQueue(a.cfg.Fanout.QueueCapacity))
	a.stopFanout = make(chan struct{})
	notify.StartWorker(a.stopFanout)

	stopJanitor, err := janitor.Start(ctx, a.cfg.Janitor)
	if err != nil {
		return err
	}
	defer stopJanitor()

	banner.Print(a.cfg, a.version)

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		return err
	}
}

// shutdown flushes queued notifications and closes connections.
func (a *App) shutdown() {
	close(a.stopFanout)
	notify.Flush()
	if err := a.sessions.Close(); err != nil {
		logger.Error("redis_close_failed", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("store_close_failed", "error", err)
	}
	logger.Sync()
}
