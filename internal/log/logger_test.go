package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Bobboe/hspriveko/internal/core"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Component: ComponentHTTP, Output: &buf}), &buf
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLoggerComponent(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "component=http")

	buf.Reset()
	storage := logger.WithComponent(ComponentStorage)
	storage.Info("written")
	out := buf.String()
	assert.Equal(t, ComponentStorage, storage.Component())
	assert.Contains(t, out, "component=storage")
	assert.NotContains(t, out, "component=http")
	assert.Equal(t, 1, strings.Count(out, "component="))
}

func TestLoggerLevelFilters(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)
	logger.Info("quiet")
	assert.Empty(t, buf.String())
	logger.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestLoggerWithKeepsAttributesAcrossComponents(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	logger.With(FieldRequestID, "req-1").WithComponent(ComponentCache).Info("hit")
	assert.Contains(t, buf.String(), "request_id=req-1")
	assert.Contains(t, buf.String(), "component=cache")
}

func TestFromContext(t *testing.T) {
	fallback := FromContext(context.Background())
	assert.Equal(t, "unknown", fallback.Component())

	logger, buf := newBufferLogger(slog.LevelInfo)
	ctx := NewContext(context.Background(), logger.With(FieldRequestID, "abc"))

	FromContext(ctx).Info("inside")
	assert.Contains(t, buf.String(), "request_id=abc")
}

func TestStructuredLogger(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug)
	sl := NewStructuredLogger(logger)
	ctx := context.Background()
	r := httptest.NewRequest(http.MethodPost, "/api/expenses?month=2024-03", nil)

	sl.LogHTTPEnd(ctx, r, http.StatusInternalServerError, 12, "10.0.0.1")
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "status_code=500")

	buf.Reset()
	sl.LogHTTPEnd(ctx, r, http.StatusNotFound, 1, "10.0.0.1")
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	e := core.Expense{ID: "e1", CategoryID: "mat", RecurringID: "r1", Amount: core.Money{Cents: 500}, Month: core.MustParseMonth("2024-03")}
	sl.LogExpenseEvent(ctx, core.NewExpenseEvent(core.ExpenseGenerated, e, time.Now()))
	out := buf.String()
	assert.Contains(t, out, "event_type=generated")
	assert.Contains(t, out, "recurring_id=r1")
	assert.Contains(t, out, "month=2024-03")

	buf.Reset()
	sl.LogGeneration(ctx, "2024-03", 2, 3)
	assert.Contains(t, buf.String(), "created=2")
	assert.Contains(t, buf.String(), "eligible=3")

	buf.Reset()
	sl.LogError(ctx, "boom", errors.New("disk full"), OpCreate, nil)
	assert.Contains(t, buf.String(), `error="disk full"`)
	assert.Contains(t, buf.String(), "operation=create")
}
