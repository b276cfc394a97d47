package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kakeibo/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// validationErrors are rejected before any store mutation and map to 400.
var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrEmptyName,
	core.ErrNameTooLong,
	core.ErrEmptyColor,
	core.ErrEmptyCategory,
	core.ErrZeroDate,
	core.ErrNoteTooLong,
	core.ErrMonthRequired,
	core.ErrTypeMismatch,
	core.ErrInvalidPeriod,
}

// writeServiceError converts domain errors to HTTP responses. notFoundStatus
// distinguishes a missing request target (404) from a missing referenced
// entity (400). Anything unrecognized is logged and returned as a generic 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, notFoundStatus int) {
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, notFoundStatus, "not found")
		return
	}
	if errors.Is(err, core.ErrConflict) {
		writeError(w, http.StatusBadRequest, "already exists")
		return
	}
	for _, verr := range validationErrors {
		if errors.Is(err, verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
	}

	slog.ErrorContext(ctx, "Request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
