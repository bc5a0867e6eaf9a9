package http

import (
	"net/http"
	"strings"

	"github.com/Bobboe/hspriveko/internal/core"
	applog "github.com/Bobboe/hspriveko/internal/log"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Recurring.List(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	if list == nil {
		list = []core.RecurringExpense{}
	}
	NewJSONResponse().JSON(list).Write(w)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var in core.RecurringInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	rec, err := s.deps.Recurring.Add(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).JSON(rec).Write(w)
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var patch core.RecurringPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	rec, err := s.deps.Recurring.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().JSON(rec).Write(w)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Recurring.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleGenerate serves POST /api/recurring/generate?month=YYYY-MM. The month
// goes to the generator as given: a malformed month creates nothing.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		month = core.CurrentMonth(s.deps.Now()).String()
	}

	res, err := s.deps.Recurring.GenerateForMonth(r.Context(), month)
	if err != nil {
		writeError(w, r, applog.OpGenerate, err)
		return
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogGeneration(r.Context(), month, res.Created, res.Eligible)
	NewJSONResponse().JSON(res).Write(w)
}
