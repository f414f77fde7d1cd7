package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bahar-app/bahar/internal/apperr"
	"github.com/bahar-app/bahar/internal/models"
)

// parseReviewQuery reads the filter parameters shared by the card-list and
// count endpoints. show_reverse falls back to the stored settings when the
// parameter is absent.
func (s *Server) parseReviewQuery(r *http.Request) (models.ReviewQuery, error) {
	var q models.ReviewQuery

	params := r.URL.Query()
	if v := params.Get("queue"); v != "" {
		switch models.Queue(v) {
		case models.QueueRegular, models.QueueBacklog, models.QueueAll:
			q.Queue = models.Queue(v)
		default:
			return q, apperr.Validation("queue", "must be regular, backlog or all")
		}
	}
	for _, t := range splitParam(params.Get("types")) {
		wt := models.WordType(t)
		if !wt.Valid() {
			return q, apperr.Validation("types", "unknown word type: "+t)
		}
		q.Types = append(q.Types, wt)
	}
	q.Tags = splitParam(params.Get("tags"))
	for _, v := range splitParam(params.Get("states")) {
		n, err := strconv.Atoi(v)
		if err != nil || n < int(models.StateNew) || n > int(models.StateRelearning) {
			return q, apperr.Validation("states", "unknown state: "+v)
		}
		q.States = append(q.States, models.CardState(n))
	}
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, apperr.Validation("limit", "must be a non-negative integer")
		}
		q.Limit = n
	}

	if v := params.Get("show_reverse"); v != "" {
		q.ShowReverse = v == "true" || v == "1"
	} else {
		settings, err := s.SettingsService.Get(r.Context())
		if err != nil {
			return q, err
		}
		q.ShowReverse = settings.ShowReverseFlashcards
	}
	return q, nil
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *Server) handleDueCards(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseReviewQuery(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.ReviewService.DueCards(r.Context(), q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": cards, "count": len(cards)})
}

func (s *Server) handleQueueCounts(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseReviewQuery(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	counts, err := s.ReviewService.QueueCounts(r.Context(), q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rating string `json:"rating"`
	}
	if err := decodeBody(r, &body); err != nil {
		handleError(w, r, err)
		return
	}
	rating, ok := models.ParseRating(body.Rating)
	if !ok {
		handleError(w, r, apperr.Validation("rating", "must be again, hard, good or easy"))
		return
	}

	card, err := s.ReviewService.Grade(r.Context(), chi.URLParam(r, "id"), rating)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleClearBacklog(w http.ResponseWriter, r *http.Request) {
	cleared, err := s.ReviewService.ClearBacklog(r.Context(), nil)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": cleared})
}
