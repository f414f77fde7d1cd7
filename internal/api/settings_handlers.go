package api

import (
	"net/http"

	"github.com/bahar-app/bahar/internal/models"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.SettingsService.Get(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in models.Settings
	if err := decodeBody(r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := s.SettingsService.Update(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
