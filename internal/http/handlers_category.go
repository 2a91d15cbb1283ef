package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"presupuesto/internal/log"
	"presupuesto/internal/services"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Categories.List(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCategory(w, r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	in.ID = ""
	c, err := s.deps.Categories.Save(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCategory(w, r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	in.ID = chi.URLParam(r, "id")
	c, err := s.deps.Categories.Save(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleDeleteCategory needs confirm=true; without it the answer is 409
// carrying the question to ask.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Categories.Delete(r.Context(), id, queryBool(r, "confirm")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeCategory(w http.ResponseWriter, r *http.Request) (services.CategoryInput, error) {
	var in services.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		return in, err
	}
	in.Name = sanitizeInput(in.Name)
	in.Icon = sanitizeInput(in.Icon)
	return in, nil
}
