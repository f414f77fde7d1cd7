package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bahar-app/bahar/internal/logger"
	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/repository"
)

type deckRepository struct {
	db repository.DBTX
}

// NewDeckRepository creates a DeckRepository backed by SQLite.
func NewDeckRepository(db repository.DBTX) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) WithTx(tx *sql.Tx) repository.DeckRepository {
	return &deckRepository{db: tx}
}

func decodeDeck(id, name string, filters sql.NullString, updatedAtMS int64) (models.Deck, error) {
	d := models.Deck{ID: id, Name: name, UpdatedAtMS: updatedAtMS}
	if err := decodeJSON(filters, "deck filters", &d.Filters); err != nil {
		return d, err
	}
	return d, nil
}

func (r *deckRepository) Insert(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting deck: id=%s name=%s", d.ID, d.Name)

	filters, err := encodeJSON(d.Filters)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO decks (id, name, filters, updated_at_ms) VALUES (?, ?, ?, ?)`,
		d.ID, d.Name, filters, d.UpdatedAtMS)
	if err != nil {
		log.Error("failed to insert deck: %v", err)
	}
	return err
}

func (r *deckRepository) Get(ctx context.Context, id string) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	var name string
	var filters sql.NullString
	var updatedAtMS int64
	err := r.db.QueryRowContext(ctx,
		`SELECT name, filters, updated_at_ms FROM decks WHERE id = ?`, id).
		Scan(&name, &filters, &updatedAtMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, err
	}
	d, parseErr := decodeDeck(id, name, filters, updatedAtMS)
	if parseErr != nil {
		return nil, parseErr
	}
	return &d, nil
}

// List returns every deck with valid filters. A deck whose stored filter
// JSON fails validation is skipped and reported, mirroring the corrupt-entry
// policy of the due-card query.
func (r *deckRepository) List(ctx context.Context) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, filters, updated_at_ms FROM decks ORDER BY name`)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.Deck
	for rows.Next() {
		var id, name string
		var filters sql.NullString
		var updatedAtMS int64
		if err := rows.Scan(&id, &name, &filters, &updatedAtMS); err != nil {
			return nil, err
		}
		d, parseErr := decodeDeck(id, name, filters, updatedAtMS)
		if parseErr != nil {
			log.Warn("skipping deck %s: invalid stored filters: %v", id, parseErr)
			continue
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *deckRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *deckRepository) Upsert(ctx context.Context, d models.Deck) error {
	filters, err := encodeJSON(d.Filters)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO decks (id, name, filters, updated_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    filters = excluded.filters,
    updated_at_ms = excluded.updated_at_ms
WHERE excluded.updated_at_ms > decks.updated_at_ms
`, d.ID, d.Name, filters, d.UpdatedAtMS)
	return err
}

func (r *deckRepository) ChangedSince(ctx context.Context, sinceMS int64) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, filters, updated_at_ms FROM decks WHERE updated_at_ms > ? ORDER BY updated_at_ms`, sinceMS)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Deck
	for rows.Next() {
		var id, name string
		var filters sql.NullString
		var updatedAtMS int64
		if err := rows.Scan(&id, &name, &filters, &updatedAtMS); err != nil {
			return nil, err
		}
		d, parseErr := decodeDeck(id, name, filters, updatedAtMS)
		if parseErr != nil {
			log.Warn("skipping deck %s: invalid stored filters: %v", id, parseErr)
			continue
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
