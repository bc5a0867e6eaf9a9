package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Bobboe/hspriveko/internal/backend"
	"github.com/Bobboe/hspriveko/internal/cli"
	"github.com/Bobboe/hspriveko/internal/config"
	applog "github.com/Bobboe/hspriveko/internal/log"
)

// rootOptions holds the global flags. Empty values keep the environment's setting.
type rootOptions struct {
	dbPath   string
	backend  string
	logLevel string
	envFile  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Personal monthly budget: categories, expenses and recurring expenses",
		Long: `budget tracks expenses against monthly category budgets.

Recurring expenses are templates that are materialized into one expense per
month. Data lives in a local SQLite database (or in memory for trials).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.envFile != "" {
				if err := cli.LoadEnvFile(opts.envFile); err != nil {
					return err
				}
			} else if err := cli.LoadEnvFile(); err != nil {
				return err
			}
			level := opts.logLevel
			if level == "" {
				level = os.Getenv("LOG_LEVEL")
			}
			cli.SetupLogger(level, applog.ComponentApp, cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides SQLITE_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "storage backend: "+strings.Join(backend.GetBackendTypeStrings(), " or ")+" (overrides DATA_BACKEND)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load environment from this file instead of .env")

	cmd.AddCommand(serveCmd(opts))
	cmd.AddCommand(generateCmd(opts))
	cmd.AddCommand(categoriesCmd(opts))
	cmd.AddCommand(expensesCmd(opts))
	cmd.AddCommand(recurringCmd(opts))
	cmd.AddCommand(overviewCmd(opts))
	cmd.AddCommand(trendCmd(opts))
	cmd.AddCommand(exportCmd(opts))
	cmd.AddCommand(seedCmd(opts))
	cmd.AddCommand(migrateCmd(opts))
	cmd.AddCommand(eventsCmd(opts))

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the global flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return cli.LoadAndValidateConfig(func(c *config.Config) {
		if o.backend != "" {
			c.DataBackend = o.backend
		}
		if o.dbPath != "" {
			c.SQLiteDBPath = o.dbPath
		}
		if o.logLevel != "" {
			c.LogLevel = o.logLevel
		}
	})
}

// open loads configuration and assembles the backend. Callers must Close it.
func (o *rootOptions) open(ctx context.Context) (*backend.Backend, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	b, err := cli.OpenBackend(ctx, slog.Default(), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open backend: %w", err)
	}
	return b, cfg, nil
}
