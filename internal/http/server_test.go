package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bobboe/hspriveko/internal/backend"
	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/export"
	applog "github.com/Bobboe/hspriveko/internal/log"
	"github.com/Bobboe/hspriveko/internal/middleware/ratelimit"
	"github.com/Bobboe/hspriveko/internal/services"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("disk gone") }

func newTestServer(t *testing.T, mutate ...func(*Deps)) *Server {
	t.Helper()
	clock := func() time.Time { return testNow }
	b, err := backend.NewFactory(nil, services.WithClock(clock)).CreateBackend(context.Background(), backend.Config{
		Type:              backend.MemoryBackend,
		OverviewCacheSize: 10,
		OverviewCacheTTL:  time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	deps := Deps{
		Categories:  b.Categories,
		Expenses:    b.Expenses,
		Recurring:   b.Recurring,
		Overview:    b.Overview,
		Exporter:    export.NewExporter(b.Expenses, b.Categories),
		Logger:      applog.New(applog.Config{Level: applog.ParseLevel("error"), Output: io.Discard}),
		TrendMonths: 3,
		RateLimit:   ratelimit.Config{RequestsPerMinute: 1000},
		Now:         clock,
	}
	for _, m := range mutate {
		m(&deps)
	}
	srv := NewServer(":0", deps)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createCategory(t *testing.T, srv *Server, name string, budget int64) core.Category {
	t.Helper()
	body, _ := json.Marshal(map[string]any{"name": name, "monthlyBudgetCents": budget})
	rec := do(t, srv, http.MethodPost, "/api/categories", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[core.Category](t, rec)
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	srv = newTestServer(t, func(d *Deps) { d.Ready = failingPinger{} })
	rec = do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCategoriesCRUD(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	food := createCategory(t, srv, "Mat", 500000)
	assert.Equal(t, "Mat", food.Name)
	assert.Equal(t, int64(500000), food.MonthlyBudget.Cents)

	rec = do(t, srv, http.MethodPatch, "/api/categories/"+food.ID, `{"monthlyBudgetCents": 450000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(450000), decode[core.Category](t, rec).MonthlyBudget.Cents)

	rec = do(t, srv, http.MethodGet, "/api/categories", "")
	assert.Len(t, decode[[]core.Category](t, rec), 1)

	rec = do(t, srv, http.MethodDelete, "/api/categories/"+food.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// deleting a missing category is a no-op
	rec = do(t, srv, http.MethodDelete, "/api/categories/"+food.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCategoryValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"blank name", `{"name":"  ","monthlyBudgetCents":100}`, http.StatusUnprocessableEntity},
		{"negative budget", `{"name":"Mat","monthlyBudgetCents":-1}`, http.StatusUnprocessableEntity},
		{"unknown field", `{"name":"Mat","budget":1}`, http.StatusBadRequest},
		{"malformed JSON", `{"name":`, http.StatusBadRequest},
		{"trailing object", `{"name":"Mat"}{"name":"Hyra"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/categories", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}

	rec := do(t, srv, http.MethodPost, "/api/categories", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body is empty")
}

func TestCategoryDeleteInUse(t *testing.T) {
	srv := newTestServer(t)
	food := createCategory(t, srv, "Mat", 0)

	rec := do(t, srv, http.MethodPost, "/api/expenses",
		`{"amountCents":12900,"categoryId":"`+food.ID+`","date":"2024-03-02"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodDelete, "/api/categories/"+food.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExpensesCRUD(t *testing.T) {
	srv := newTestServer(t)
	food := createCategory(t, srv, "Mat", 0)
	home := createCategory(t, srv, "Hem", 0)

	rec := do(t, srv, http.MethodPost, "/api/expenses",
		`{"amountCents":12900,"categoryId":"`+food.ID+`","date":"2024-03-02","note":"ICA"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	e := decode[core.Expense](t, rec)
	assert.Equal(t, "2024-03", e.Month.String())

	rec = do(t, srv, http.MethodPost, "/api/expenses", `{"amountCents":5000,"categoryId":"`+home.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2024-03-15", decode[core.Expense](t, rec).Date.String())

	rec = do(t, srv, http.MethodGet, "/api/expenses?month=2024-03", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]core.Expense](t, rec), 2)

	rec = do(t, srv, http.MethodGet, "/api/expenses?month=2024-03&categoryId="+food.ID, "")
	assert.Len(t, decode[[]core.Expense](t, rec), 1)

	rec = do(t, srv, http.MethodGet, "/api/expenses", "")
	assert.Len(t, decode[[]core.Expense](t, rec), 2, "defaults to the current month")

	rec = do(t, srv, http.MethodPatch, "/api/expenses/"+e.ID, `{"date":"2024-02-28"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2024-02", decode[core.Expense](t, rec).Month.String())

	rec = do(t, srv, http.MethodGet, "/api/expenses?month=2024-02", "")
	assert.Len(t, decode[[]core.Expense](t, rec), 1)

	rec = do(t, srv, http.MethodDelete, "/api/expenses/"+e.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodPatch, "/api/expenses/"+e.ID, `{"note":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenseErrors(t *testing.T) {
	srv := newTestServer(t)
	food := createCategory(t, srv, "Mat", 0)

	rec := do(t, srv, http.MethodGet, "/api/expenses?month=2024-13", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/expenses", `{"amountCents":0,"categoryId":"`+food.ID+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/expenses", `{"amountCents":100,"categoryId":"nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"categoryId"`)
}

func TestRecurringAndGenerate(t *testing.T) {
	srv := newTestServer(t)
	home := createCategory(t, srv, "Boende", 0)

	rec := do(t, srv, http.MethodPost, "/api/recurring",
		`{"name":"Hyra","amountCents":850000,"categoryId":"`+home.ID+`","dayOfMonth":31,"startMonth":"2024-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rent := decode[core.RecurringExpense](t, rec)
	assert.True(t, rent.Active)

	rec = do(t, srv, http.MethodPost, "/api/recurring/generate?month=2024-02", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"created":1,"eligible":1}`, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/recurring/generate?month=2024-02", "")
	assert.JSONEq(t, `{"created":0,"eligible":1}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/expenses?month=2024-02", "")
	list := decode[[]core.Expense](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-02-29", list[0].Date.String())
	assert.Equal(t, rent.ID, list[0].RecurringID)

	rec = do(t, srv, http.MethodPost, "/api/recurring/generate?month=garbage", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"created":0,"eligible":0}`, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/recurring/generate", "")
	assert.JSONEq(t, `{"created":1,"eligible":1}`, rec.Body.String(), "defaults to the current month")

	rec = do(t, srv, http.MethodPatch, "/api/recurring/"+rent.ID, `{"active":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[core.RecurringExpense](t, rec).Active)

	rec = do(t, srv, http.MethodPost, "/api/recurring/generate?month=2024-04", "")
	assert.JSONEq(t, `{"created":0,"eligible":0}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/recurring", "")
	assert.Len(t, decode[[]core.RecurringExpense](t, rec), 1)

	rec = do(t, srv, http.MethodDelete, "/api/recurring/"+rent.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecurringValidation(t *testing.T) {
	srv := newTestServer(t)
	home := createCategory(t, srv, "Boende", 0)

	rec := do(t, srv, http.MethodPost, "/api/recurring",
		`{"name":"Hyra","amountCents":100,"categoryId":"`+home.ID+`","dayOfMonth":32,"startMonth":"2024-01"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/recurring",
		`{"name":"Hyra","amountCents":100,"categoryId":"`+home.ID+`","dayOfMonth":1,"startMonth":"2024-05","endMonth":"2024-01"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestOverviewTrendAndExport(t *testing.T) {
	srv := newTestServer(t)
	food := createCategory(t, srv, "Mat", 10000)

	for _, body := range []string{
		`{"amountCents":4000,"categoryId":"` + food.ID + `","date":"2024-03-01","note":"ICA"}`,
		`{"amountCents":8000,"categoryId":"` + food.ID + `","date":"2024-03-05"}`,
		`{"amountCents":1000,"categoryId":"` + food.ID + `","date":"2024-01-05"}`,
	} {
		rec := do(t, srv, http.MethodPost, "/api/expenses", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, srv, http.MethodGet, "/api/overview?month=2024-03", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ov := decode[core.MonthOverview](t, rec)
	assert.Equal(t, int64(12000), ov.TotalSpent.Cents)
	assert.Equal(t, int64(-2000), ov.TotalRemaining.Cents)
	require.Len(t, ov.Categories, 1)
	assert.True(t, ov.Categories[0].Over)
	assert.Equal(t, 1.0, ov.Categories[0].Ratio)

	rec = do(t, srv, http.MethodGet, "/api/trend?month=2024-03", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tr := decode[core.Trend](t, rec)
	require.Len(t, tr.Points, 3)
	assert.Equal(t, "2024-01", tr.Points[0].Month.String())
	assert.Equal(t, int64(1000), tr.Points[0].Total.Cents)
	assert.Equal(t, int64(12000), tr.Max.Cents)

	rec = do(t, srv, http.MethodGet, "/api/trend?month=2024-03&months=12", "")
	assert.Len(t, decode[core.Trend](t, rec).Points, 12)

	rec = do(t, srv, http.MethodGet, "/api/trend?months=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/export?month=2024-03", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "expenses-2024-03.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "date,month,category,amount,amount_cents"))
	assert.True(t, strings.HasPrefix(lines[1], "2024-03-01,2024-03,Mat,40.00,4000,ICA"))
}

func TestMethodNotAllowedAndUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/categories", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteRateLimit(t *testing.T) {
	srv := newTestServer(t, func(d *Deps) { d.RateLimit = ratelimit.Config{RequestsPerMinute: 2} })

	for i := 0; i < 2; i++ {
		rec := do(t, srv, http.MethodPost, "/api/categories", `{"name":"Mat"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := do(t, srv, http.MethodPost, "/api/categories", `{"name":"Mat"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// reads are not limited
	for i := 0; i < 5; i++ {
		rec = do(t, srv, http.MethodGet, "/api/categories", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRequestBodyTooLarge(t *testing.T) {
	srv := newTestServer(t)
	big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`

	req := httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewBufferString(big))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &core.ValidationError{Field: "name", Message: "is required"}, http.StatusUnprocessableEntity},
		{"not found", &core.NotFoundError{Kind: "expense", ID: "x"}, http.StatusNotFound},
		{"in use", core.ErrCategoryHasExpenses, http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			errorFor(tt.err).Write(rec)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

type brokenOverview struct{}

func (brokenOverview) Month(context.Context, core.Month) (core.MonthOverview, error) {
	return core.MonthOverview{}, errors.New("database is locked")
}

func (brokenOverview) Trend(context.Context, core.Month, int) (core.Trend, error) {
	return core.Trend{}, errors.New("database is locked")
}

func TestInternalErrorCarriesRequestID(t *testing.T) {
	srv := newTestServer(t, func(d *Deps) { d.Overview = brokenOverview{} })

	req := httptest.NewRequest(http.MethodGet, "/api/overview?month=2024-03", nil)
	req.Header.Set("X-Request-ID", "req-test-1")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error","requestId":"req-test-1"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "database is locked")
}
