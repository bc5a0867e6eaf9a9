package http

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Bobboe/hspriveko/internal/core"
	applog "github.com/Bobboe/hspriveko/internal/log"
	"github.com/Bobboe/hspriveko/internal/middleware/ratelimit"
	"github.com/Bobboe/hspriveko/internal/middleware/security"
	"github.com/Bobboe/hspriveko/internal/middleware/trace"
	"github.com/Bobboe/hspriveko/internal/services"
)

type CategoryAPI interface {
	List(ctx context.Context) ([]core.Category, error)
	Add(ctx context.Context, in core.CategoryInput) (core.Category, error)
	Update(ctx context.Context, id string, patch core.CategoryPatch) (core.Category, error)
	Delete(ctx context.Context, id string) error
}

type ExpenseAPI interface {
	ListByMonth(ctx context.Context, month core.Month, categoryID string) ([]core.Expense, error)
	Add(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error)
	Delete(ctx context.Context, id string) error
}

type RecurringAPI interface {
	List(ctx context.Context) ([]core.RecurringExpense, error)
	Add(ctx context.Context, in core.RecurringInput) (core.RecurringExpense, error)
	Update(ctx context.Context, id string, patch core.RecurringPatch) (core.RecurringExpense, error)
	Delete(ctx context.Context, id string) error
	GenerateForMonth(ctx context.Context, month string) (services.GenerationResult, error)
}

type OverviewAPI interface {
	Month(ctx context.Context, month core.Month) (core.MonthOverview, error)
	Trend(ctx context.Context, month core.Month, n int) (core.Trend, error)
}

type Exporter interface {
	WriteMonth(ctx context.Context, w io.Writer, month core.Month, categoryID string) (int, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server routes to. Ready and Now are optional.
type Deps struct {
	Categories CategoryAPI
	Expenses   ExpenseAPI
	Recurring  RecurringAPI
	Overview   OverviewAPI
	Exporter   Exporter
	Ready      Pinger

	Logger      *applog.Logger
	TrendMonths int
	RateLimit   ratelimit.Config
	Now         func() time.Time
}

type Server struct {
	http.Server
	deps         Deps
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.TrendMonths < 1 {
		deps.TrendMonths = services.DefaultTrendMonths
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		deps:    deps,
		limiter: ratelimit.NewLimiter(deps.RateLimit),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("PATCH /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/recurring", s.handleListRecurring)
	mux.HandleFunc("POST /api/recurring", s.handleCreateRecurring)
	mux.HandleFunc("PATCH /api/recurring/{id}", s.handleUpdateRecurring)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteRecurring)
	mux.HandleFunc("POST /api/recurring/generate", s.handleGenerate)

	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/trend", s.handleTrend)
	mux.HandleFunc("GET /api/export", s.handleExport)

	s.detector = security.NewDetector()
	s.tracer = trace.NewMiddleware(deps.Logger, s.detector.ExtractClientIP)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, isWrite, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	})(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func isWrite(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Shutdown stops the rate limiter, gracefully shuts down the server and
// logs request totals.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
		s.deps.Logger.Info("HTTP server stopped",
			applog.FieldOperation, applog.OpShutdown,
			"requests", s.tracer.TotalRequests(),
			"rate_limited", s.limiter.Hits(),
			"rate_limit_clients", s.limiter.ActiveClients(),
			"suspicious", s.detector.SuspiciousRequests())
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "store unavailable").Write(w)
			return
		}
	}
	NewJSONResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}
