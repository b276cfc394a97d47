package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"kakeibo/internal/core"
)

type createTransactionRequest struct {
	Amount      core.Money     `json:"amount"`
	Type        core.EntryType `json:"type"`
	CategoryID  string         `json:"categoryId"`
	Description string         `json:"description"`
	Date        string         `json:"date"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month")
		return
	}

	txs, err := s.svc.ListTransactions(r.Context(), month)
	if err != nil {
		writeServiceError(r.Context(), w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	tx, err := s.svc.CreateTransaction(r.Context(), core.Transaction{
		Amount:      req.Amount,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
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
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(r.Context(), w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "transaction deleted"})
}

// parseDate accepts a calendar date or a full RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
