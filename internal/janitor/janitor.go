// Package janitor runs the scheduled convergence sweep. Featured-post
// expiry is lazy on read paths; the janitor only bounds how stale a
// flag can get on a quiet instance.
package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"burrow/pkg/config"
	"burrow/pkg/logger"
	"burrow/pkg/social"
)

// Start launches the sweep scheduler when enabled. Returns a no-op
// cancel func when the janitor is disabled.
func Start(ctx context.Context, cfg config.JanitorConfig) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("janitor_disabled")
		return func() {}, nil
	}
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "*/10 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("janitor_invalid_cron", "cron", cronExpr)
		return nil, fmt.Errorf("invalid janitor cron expression: %s", cronExpr)
	}

	logger.Info("janitor_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr)
	return cancel, nil
}

// runScheduler computes the next cron tick with gronx and sleeps until
// then, so full cron syntax is supported.
func runScheduler(ctx context.Context, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("janitor_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("janitor_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			runOnce()
		case <-ctx.Done():
			logger.Info("janitor_stopping")
			return
		}
	}
}

func runOnce() {
	cleared, err := social.ExpireStaleFeatured()
	if err != nil {
		logger.Error("janitor_sweep_failed", "error", err)
		return
	}
	if len(cleared) > 0 {
		logger.Info("janitor_sweep_done", "cleared", len(cleared))
	}
}
