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
	"github.com/bahar-app/bahar/internal/store"
)

// CreateEntryInput is the payload for creating a dictionary entry.
type CreateEntryInput struct {
	Word        string             `json:"word"`
	Translation string             `json:"translation"`
	Definition  string             `json:"definition,omitempty"`
	Type        models.WordType    `json:"type"`
	Root        []string           `json:"root,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	Antonyms    []models.Antonym   `json:"antonyms,omitempty"`
	Examples    []models.Example   `json:"examples,omitempty"`
	Morphology  *models.Morphology `json:"morphology,omitempty"`
}

// EntryService manages dictionary entries and their flashcards. Every entry
// owns exactly one forward and one reverse card; cards never outlive their
// entry.
type EntryService interface {
	CreateEntry(ctx context.Context, in CreateEntryInput) (*models.DictionaryEntry, error)
	GetEntry(ctx context.Context, id string) (*models.DictionaryEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	ResetCard(ctx context.Context, cardID string) error
}

type entryService struct {
	store   *store.Store
	entries repository.EntryRepository
	cards   repository.FlashcardRepository
	changed func()
	now     func() time.Time
}

// NewEntryService creates an EntryService.
func NewEntryService(st *store.Store, entries repository.EntryRepository, cards repository.FlashcardRepository, changed func()) EntryService {
	return &entryService{
		store:   st,
		entries: entries,
		cards:   cards,
		changed: changed,
		now:     time.Now,
	}
}

func (s *entryService) CreateEntry(ctx context.Context, in CreateEntryInput) (*models.DictionaryEntry, error) {
	log := logger.FromContext(ctx)

	if in.Word == "" {
		return nil, apperr.Validation("word", "must not be empty")
	}
	if in.Translation == "" {
		return nil, apperr.Validation("translation", "must not be empty")
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation("type", "must be noun, verb, particle or expression")
	}

	now := s.now()
	nowMS := now.UnixMilli()
	entry := models.DictionaryEntry{
		ID:          uuid.NewString(),
		Word:        in.Word,
		Translation: in.Translation,
		Definition:  in.Definition,
		Type:        in.Type,
		Root:        in.Root,
		Tags:        in.Tags,
		Antonyms:    in.Antonyms,
		Examples:    in.Examples,
		Morphology:  in.Morphology,
		CreatedAt:   now,
		CreatedAtMS: nowMS,
		UpdatedAt:   now,
		UpdatedAtMS: nowMS,
	}

	err := s.store.InTx(ctx, func(tx *sql.Tx) error {
		if err := s.entries.WithTx(tx).Insert(ctx, entry); err != nil {
			return err
		}
		cards := s.cards.WithTx(tx)
		for _, dir := range []models.Direction{models.DirectionForward, models.DirectionReverse} {
			card := models.Flashcard{
				ID:          uuid.NewString(),
				EntryID:     entry.ID,
				Direction:   dir,
				State:       models.StateNew,
				UpdatedAtMS: nowMS,
			}
			if err := cards.Insert(ctx, card); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create entry: %v", err)
		return nil, apperr.Internal(err)
	}

	log.Debug("created entry %s with forward and reverse cards", entry.ID)
	if s.changed != nil {
		s.changed()
	}
	return &entry, nil
}

func (s *entryService) GetEntry(ctx context.Context, id string) (*models.DictionaryEntry, error) {
	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if entry == nil {
		return nil, apperr.NotFound("dictionary entry", id)
	}
	return entry, nil
}

func (s *entryService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("dictionary entry", id)
		}
		return apperr.Internal(err)
	}
	if s.changed != nil {
		s.changed()
	}
	return nil
}

func (s *entryService) ResetCard(ctx context.Context, cardID string) error {
	if err := s.cards.ResetScheduling(ctx, cardID, s.now().UnixMilli()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("flashcard", cardID)
		}
		return apperr.Internal(err)
	}
	if s.changed != nil {
		s.changed()
	}
	return nil
}
