package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/api/health", s.handleHealth)

	r.Get("/api/review/cards", s.handleDueCards)
	r.Get("/api/review/counts", s.handleQueueCounts)
	r.Post("/api/review/cards/{id}/grade", s.handleGrade)
	r.Post("/api/review/backlog/clear", s.handleClearBacklog)

	r.Get("/api/decks", s.handleListDecks)
	r.Post("/api/decks", s.handleCreateDeck)
	r.Delete("/api/decks/{id}", s.handleDeleteDeck)

	r.Post("/api/entries", s.handleCreateEntry)
	r.Get("/api/entries/{id}", s.handleGetEntry)
	r.Delete("/api/entries/{id}", s.handleDeleteEntry)
	r.Post("/api/cards/{id}/reset", s.handleResetCard)

	r.Get("/api/settings", s.handleGetSettings)
	r.Put("/api/settings", s.handleUpdateSettings)

	r.Post("/api/sync", s.handleSync)

	return r
}
