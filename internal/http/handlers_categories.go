package http

import (
	"encoding/json"
	"net/http"

	"kakeibo/internal/core"
)

type createCategoryRequest struct {
	Name  string         `json:"name"`
	Type  core.EntryType `json:"type"`
	Color string         `json:"color"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.ListCategories(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := s.svc.CreateCategory(r.Context(), req.Name, req.Type, req.Color)
	if err != nil {
		writeServiceError(r.Context(), w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(r.Context(), w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "category deleted"})
}
