package http

import (
	"net/http"
	"strings"

	"github.com/Bobboe/hspriveko/internal/core"
	applog "github.com/Bobboe/hspriveko/internal/log"
)

// handleListExpenses serves GET /api/expenses?month=YYYY-MM[&categoryId=].
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(r, s.deps.Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	categoryID := strings.TrimSpace(r.URL.Query().Get("categoryId"))

	list, err := s.deps.Expenses.ListByMonth(r.Context(), month, categoryID)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	if list == nil {
		list = []core.Expense{}
	}
	NewJSONResponse().JSON(list).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in core.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	e, err := s.deps.Expenses.Add(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).JSON(e).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var patch core.ExpensePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	e, err := s.deps.Expenses.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().JSON(e).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Expenses.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
