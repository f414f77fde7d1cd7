package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bahar-app/bahar/internal/apperr"
	"github.com/bahar-app/bahar/internal/logger"
	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/repository"
)

// DeckService lists decks with fresh counts and manages their lifecycle.
type DeckService interface {
	ListDecks(ctx context.Context) ([]models.DeckWithCounts, error)
	CreateDeck(ctx context.Context, name string, filters *models.DeckFilters) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id string) error
}

type deckService struct {
	decks    repository.DeckRepository
	cards    repository.FlashcardRepository
	settings repository.SettingsRepository
	cfg      ReviewConfig
	changed  func()
	now      func() time.Time
}

// NewDeckService creates a DeckService.
func NewDeckService(decks repository.DeckRepository, cards repository.FlashcardRepository, settings repository.SettingsRepository, cfg ReviewConfig, changed func()) DeckService {
	if cfg.BacklogThresholdDays <= 0 {
		cfg.BacklogThresholdDays = models.DefaultBacklogThresholdDays
	}
	return &deckService{
		decks:    decks,
		cards:    cards,
		settings: settings,
		cfg:      cfg,
		changed:  changed,
		now:      time.Now,
	}
}

// ListDecks annotates each deck with due/total counts computed fresh from
// current flashcard state. Counts are never cached on the deck record.
func (s *deckService) ListDecks(ctx context.Context) ([]models.DeckWithCounts, error) {
	log := logger.FromContext(ctx)

	decks, err := s.decks.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.now()
	out := make([]models.DeckWithCounts, 0, len(decks))
	for _, d := range decks {
		q := models.ReviewQuery{
			ShowReverse:          settings.ShowReverseFlashcards,
			Queue:                models.QueueAll,
			BacklogThresholdDays: s.cfg.BacklogThresholdDays,
			Now:                  now,
		}
		if d.Filters != nil {
			q.Types = d.Filters.Types
			q.Tags = d.Filters.Tags
			q.States = d.Filters.States
		}

		due, err := s.cards.Count(ctx, q, true)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		total, err := s.cards.Count(ctx, q, false)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, models.DeckWithCounts{Deck: d, DueCount: due, TotalCount: total})
	}
	log.Debug("listed %d decks", len(out))
	return out, nil
}

func (s *deckService) CreateDeck(ctx context.Context, name string, filters *models.DeckFilters) (*models.Deck, error) {
	if name == "" {
		return nil, apperr.Validation("name", "must not be empty")
	}
	if filters != nil {
		for _, t := range filters.Types {
			if !t.Valid() {
				return nil, apperr.Validation("filters.types", "unknown word type: "+string(t))
			}
		}
	}

	d := models.Deck{
		ID:          uuid.NewString(),
		Name:        name,
		Filters:     filters,
		UpdatedAtMS: s.now().UnixMilli(),
	}
	if err := s.decks.Insert(ctx, d); err != nil {
		return nil, apperr.Internal(err)
	}
	if s.changed != nil {
		s.changed()
	}
	return &d, nil
}

func (s *deckService) DeleteDeck(ctx context.Context, id string) error {
	if err := s.decks.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("deck", id)
		}
		return apperr.Internal(err)
	}
	if s.changed != nil {
		s.changed()
	}
	return nil
}
