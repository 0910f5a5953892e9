package app

import (
	"context"
	"net/http"
	"time"

	"burrow/pkg/api"
	"burrow/pkg/auth"
	"burrow/pkg/logger"
)

// startHTTP builds the router, starts the HTTP server in a goroutine
// and returns a channel carrying any fatal server error. The server is
// shut down gracefully when ctx is cancelled.
func (a *App) startHTTP(ctx context.Context) <-chan error {
	handler := api.Router(api.Deps{
		Accounts:  a.accounts,
		Signer:    a.signer,
		Sessions:  a.sessions,
		Limiter:   auth.NewLimiterPool(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst),
		Blobs:     a.blobs,
		MaxUpload: a.cfg.Blob.MaxUpload.Int64(),
	})

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		cert := a.cfg.Server.TLS.CertFile
		key := a.cfg.Server.TLS.KeyFile
		logger.Info("http_listening", "addr", srv.Addr, "tls", cert != "" && key != "")
		var err error
		if cert != "" && key != "" {
			err = srv.ListenAndServeTLS(cert, key)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Error("http_shutdown_failed", "error", err)
		}
	}()

	return errCh
}
