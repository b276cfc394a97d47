package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"kakeibo/internal/core"
)

type createBudgetRequest struct {
	CategoryID  string           `json:"categoryId"`
	Amount      core.Money       `json:"amount"`
	BudgetType  core.BudgetType  `json:"budgetType"`
	ExpenseType core.ExpenseType `json:"expenseType"`
	Month       string           `json:"month"`
	Year        int              `json:"year"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bt := core.BudgetType(strings.TrimSpace(q.Get("budgetType")))
	if bt == "" {
		writeError(w, http.StatusBadRequest, "missing budgetType")
		return
	}

	var period string
	switch bt {
	case core.MonthlyBudget:
		period = strings.TrimSpace(q.Get("month"))
		if period == "" {
			writeError(w, http.StatusBadRequest, "missing month")
			return
		}
	case core.YearlyBudget:
		period = strings.TrimSpace(q.Get("year"))
		if period == "" {
			writeError(w, http.StatusBadRequest, "missing year")
			return
		}
	}

	budgets, err := s.svc.ListBudgets(r.Context(), bt, period)
	if err != nil {
		writeServiceError(r.Context(), w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := s.svc.CreateBudget(r.Context(), core.Budget{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		BudgetType: req.BudgetType,
		Expense:    req.ExpenseType,
		Month:      req.Month,
		Year:       req.Year,
	})
	if err != nil {
		// The category here is a reference, not the request target.
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "category not found")
			return
		}
		writeServiceError(r.Context(), w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(r.Context(), w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "budget deleted"})
}
