package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bahar-app/bahar/internal/services"
)

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var in services.CreateEntryInput
	if err := decodeBody(r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	entry, err := s.EntryService.CreateEntry(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.EntryService.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.EntryService.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetCard(w http.ResponseWriter, r *http.Request) {
	if err := s.EntryService.ResetCard(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
