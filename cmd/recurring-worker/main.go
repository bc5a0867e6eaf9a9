package main

import (
	"context"
	"os"
	"time"

	"github.com/Bobboe/hspriveko/internal/backend"
	"github.com/Bobboe/hspriveko/internal/cli"
	"github.com/Bobboe/hspriveko/internal/core"
	applog "github.com/Bobboe/hspriveko/internal/log"
)

func main() {
	// .env is optional outside local development
	if err := cli.LoadEnvFile(); err != nil {
		applog.New(applog.DefaultConfig()).Warn("Ignoring env file", applog.FieldError, err)
	}

	cfg, err := cli.LoadAndValidateConfig(nil)
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker, nil)
	logger.Info("Starting recurring-worker",
		"interval", cfg.RecurringInterval,
		"backend", cfg.DataBackend,
		"sqlite_db", cfg.SQLiteDBPath)

	b, err := cli.OpenBackend(context.Background(), logger.Logger, cfg)
	if err != nil {
		logger.Error("Failed to open backend", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(context.Context) {
		if err := b.Close(); err != nil {
			logger.Warn("Failed to close backend", applog.FieldError, err)
		}
	})

	runWorker(ctx, b, logger, cfg.RecurringInterval, time.Now)
	cli.WaitForShutdown(ctx, done)
}

// runWorker materializes the current month immediately and then on every
// tick until ctx is done. Generation is idempotent, so overlapping runs and
// restarts never duplicate expenses.
func runWorker(ctx context.Context, b *backend.Backend, logger *applog.Logger, interval time.Duration, now func() time.Time) {
	sl := applog.NewStructuredLogger(logger.WithComponent(applog.ComponentRecurring))

	tick := func() {
		month := core.CurrentMonth(now()).String()
		res, err := b.Recurring.GenerateForMonth(ctx, month)
		if err != nil {
			sl.LogError(ctx, "Recurring generation failed", err, applog.OpGenerate, applog.NewFields().WithMonth(month))
			return
		}
		sl.LogGeneration(ctx, month, res.Created, res.Eligible)
	}

	tick()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Recurring worker stopped", applog.FieldOperation, applog.OpShutdown)
			return
		case <-ticker.C:
			tick()
		}
	}
}
