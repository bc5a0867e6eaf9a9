package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Bobboe/hspriveko/internal/amqp"
	"github.com/Bobboe/hspriveko/internal/cache"
	"github.com/Bobboe/hspriveko/internal/core"
	applog "github.com/Bobboe/hspriveko/internal/log"
	"github.com/Bobboe/hspriveko/internal/seed"
	"github.com/Bobboe/hspriveko/internal/services"
	"github.com/Bobboe/hspriveko/internal/storage"
	"github.com/Bobboe/hspriveko/internal/storage/memory"
	"github.com/Bobboe/hspriveko/internal/storage/sqlite"
)

type Factory struct {
	logger *slog.Logger
	opts   []services.Option
}

// NewFactory creates a backend factory. opts are passed to every service.
func NewFactory(logger *slog.Logger, opts ...services.Option) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger, opts: opts}
}

// CreateBackend opens the configured store and assembles the services.
// An unreachable AMQP broker is logged and events stay disabled.
func (f *Factory) CreateBackend(ctx context.Context, config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(config)
	if err != nil {
		return nil, err
	}

	var events *amqp.Client
	if config.AMQPURL != "" {
		events, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			events = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"routing_key", config.AMQPRoutingKey)
		}
	}

	overview := services.NewOverviewService(store, config.OverviewCacheSize, config.OverviewCacheTTL)
	caches := cache.NewManager()
	overview.RegisterCaches(caches)
	caches.StartCleanup(config.OverviewCacheTTL)

	publishers := services.Publishers{overview, eventLog{applog.NewStructuredLogger(applog.Wrap(f.logger, applog.ComponentBackend))}}
	if events != nil {
		publishers = append(publishers, events)
	}
	opts := append(append([]services.Option{}, f.opts...), services.WithPublisher(publishers))

	generator := services.NewRecurringGenerator(store, opts...)
	b := &Backend{
		Store:      store,
		Categories: services.NewCategoryService(store, overview, opts...),
		Expenses:   services.NewExpenseService(store, opts...),
		Recurring:  services.NewRecurringService(store, generator, opts...),
		Overview:   overview,
		caches:     caches,
		events:     events,
	}

	if config.SeedFile != "" {
		if err := f.applySeed(ctx, b, config.SeedFile); err != nil {
			b.Close()
			return nil, err
		}
	}

	f.logger.Info("Initialized backend",
		"type", config.Type,
		"events_enabled", events != nil)
	return b, nil
}

func (f *Factory) openStore(config Config) (storage.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := sqlite.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Opened SQLite store", "db_path", config.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Opened in-memory store")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *Factory) applySeed(ctx context.Context, b *Backend, path string) error {
	file, err := seed.LoadFile(path)
	if err != nil {
		return err
	}
	res, err := seed.Apply(ctx, file, b.Categories, b.Recurring)
	if err != nil {
		return fmt.Errorf("apply seed file %s: %w", path, err)
	}
	f.logger.Info("Applied seed file",
		"path", path,
		"categories_created", res.CategoriesCreated,
		"recurring_created", res.RecurringCreated,
		"skipped", res.Skipped)
	return nil
}

// eventLog records every expense event at debug level.
type eventLog struct {
	sl *applog.StructuredLogger
}

func (e eventLog) PublishExpenseEvent(ctx context.Context, ev core.ExpenseEvent) error {
	e.sl.LogExpenseEvent(ctx, ev)
	return nil
}
