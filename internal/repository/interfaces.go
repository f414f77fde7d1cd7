package repository

import (
	"context"
	"database/sql"

	"github.com/bahar-app/bahar/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so repositories can run
// inside or outside an explicit transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// EntryRepository persists dictionary entries.
type EntryRepository interface {
	Insert(ctx context.Context, e models.DictionaryEntry) error
	Get(ctx context.Context, id string) (*models.DictionaryEntry, error)
	Delete(ctx context.Context, id string) error
	// Upsert writes an entry unconditionally unless the local row is newer
	// (last-write-wins on updated_at_ms). Used by replica sync.
	Upsert(ctx context.Context, e models.DictionaryEntry) error
	ChangedSince(ctx context.Context, sinceMS int64) ([]models.DictionaryEntry, error)
	WithTx(tx *sql.Tx) EntryRepository
}

// FlashcardRepository persists flashcards and answers the due-card queries.
type FlashcardRepository interface {
	Insert(ctx context.Context, c models.Flashcard) error
	Get(ctx context.Context, id string) (*models.Flashcard, error)
	// DueCards returns the cards eligible for review under q, each joined
	// with its parsed dictionary entry, in due order, capped at q.Limit
	// when positive.
	DueCards(ctx context.Context, q models.ReviewQuery) ([]models.CardWithEntry, error)
	// Count runs the same filter as DueCards without the display cap.
	// When dueBound is false the due-date condition is dropped entirely
	// (total count).
	Count(ctx context.Context, q models.ReviewQuery, dueBound bool) (int, error)
	// UpdateScheduling persists exactly the scheduling fields of c, leaving
	// identity fields untouched.
	UpdateScheduling(ctx context.Context, c models.Flashcard) error
	ResetScheduling(ctx context.Context, id string, nowMS int64) error
	Upsert(ctx context.Context, c models.Flashcard) error
	ChangedSince(ctx context.Context, sinceMS int64) ([]models.Flashcard, error)
	WithTx(tx *sql.Tx) FlashcardRepository
}

// DeckRepository persists decks. Counts are never stored; they are computed
// at read time by the deck service.
type DeckRepository interface {
	Insert(ctx context.Context, d models.Deck) error
	Get(ctx context.Context, id string) (*models.Deck, error)
	List(ctx context.Context) ([]models.Deck, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, d models.Deck) error
	ChangedSince(ctx context.Context, sinceMS int64) ([]models.Deck, error)
	WithTx(tx *sql.Tx) DeckRepository
}

// SettingsRepository persists the singleton settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (models.Settings, error)
	Upsert(ctx context.Context, s models.Settings) error
	ChangedSince(ctx context.Context, sinceMS int64) (*models.Settings, error)
	WithTx(tx *sql.Tx) SettingsRepository
}
