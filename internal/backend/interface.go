package backend

import (
	"time"

	"github.com/Bobboe/hspriveko/internal/amqp"
	"github.com/Bobboe/hspriveko/internal/cache"
	"github.com/Bobboe/hspriveko/internal/services"
	"github.com/Bobboe/hspriveko/internal/storage"
)

// Backend is the assembled application: one store and the services over it.
type Backend struct {
	Store      storage.Store
	Categories *services.CategoryService
	Expenses   *services.ExpenseService
	Recurring  *services.RecurringService
	Overview   *services.OverviewService

	caches *cache.Manager
	events *amqp.Client
}

// Events returns the AMQP client, or nil when events are disabled.
func (b *Backend) Events() *amqp.Client {
	return b.events
}

// Close stops cache cleanup and releases the event client and the store.
func (b *Backend) Close() error {
	b.caches.Stop()
	if b.events != nil {
		b.events.Close()
	}
	return b.Store.Close()
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional expense events
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	OverviewCacheSize int
	OverviewCacheTTL  time.Duration

	// SeedFile is applied after the store opens when set.
	SeedFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
