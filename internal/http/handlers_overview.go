package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	applog "github.com/Bobboe/hspriveko/internal/log"
)

const maxTrendMonths = 36

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(r, s.deps.Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	ov, err := s.deps.Overview.Month(r.Context(), month)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().JSON(ov).Write(w)
}

// handleTrend serves GET /api/trend?month=YYYY-MM[&months=n].
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(r, s.deps.Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	n, err := parseIntParam(r, "months", s.deps.TrendMonths, maxTrendMonths)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	t, err := s.deps.Overview.Trend(r.Context(), month, n)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().JSON(t).Write(w)
}

// handleExport serves the month's expenses as a CSV attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(r, s.deps.Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	categoryID := strings.TrimSpace(r.URL.Query().Get("categoryId"))

	var buf bytes.Buffer
	if _, err := s.deps.Exporter.WriteMonth(r.Context(), &buf, month, categoryID); err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="expenses-%s.csv"`, month))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
