package http

import (
	"net/http"
	"strings"
	"time"

	"kakeibo/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		month = core.MonthToken(time.Now().UTC())
	}

	d, err := s.svc.Dashboard(r.Context(), month)
	if err != nil {
		writeServiceError(r.Context(), w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
