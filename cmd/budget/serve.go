package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	nethttp "net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/export"
	httpapi "github.com/Bobboe/hspriveko/internal/http"
	applog "github.com/Bobboe/hspriveko/internal/log"
	"github.com/Bobboe/hspriveko/internal/middleware/ratelimit"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(opts *rootOptions) *cobra.Command {
	var (
		port     string
		generate bool
		perMin   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve the budget JSON API until interrupted.

By default the current month's recurring expenses are materialized on start.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, cfg, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			if port == "" {
				port = cfg.Port
			}
			logger := applog.New(applog.Config{
				Level:     applog.ParseLevel(cfg.LogLevel),
				Component: applog.ComponentHTTP,
				Output:    cmd.ErrOrStderr(),
			})

			if generate {
				month := core.CurrentMonth(time.Now()).String()
				res, err := b.Recurring.GenerateForMonth(ctx, month)
				if err != nil {
					return err
				}
				applog.NewStructuredLogger(logger.WithComponent(applog.ComponentRecurring)).LogGeneration(ctx, month, res.Created, res.Eligible)
			}

			deps := httpapi.Deps{
				Categories:  b.Categories,
				Expenses:    b.Expenses,
				Recurring:   b.Recurring,
				Overview:    b.Overview,
				Exporter:    export.NewExporter(b.Expenses, b.Categories),
				Logger:      logger,
				TrendMonths: cfg.TrendMonths,
				RateLimit:   ratelimit.Config{RequestsPerMinute: perMin},
			}
			if p, ok := b.Store.(httpapi.Pinger); ok {
				deps.Ready = p
			}
			srv := httpapi.NewServer(net.JoinHostPort("", port), deps)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server listening",
					"addr", srv.Addr,
					"backend", cfg.DataBackend,
					"events", b.Events() != nil)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, nethttp.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("HTTP server shutdown incomplete", "error", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().BoolVar(&generate, "generate", true, "materialize the current month's recurring expenses on start")
	cmd.Flags().IntVar(&perMin, "write-limit", ratelimit.DefaultConfig().RequestsPerMinute, "write requests per minute allowed per client")

	return cmd
}
