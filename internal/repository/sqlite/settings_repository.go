package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bahar-app/bahar/internal/logger"
	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/repository"
)

type settingsRepository struct {
	db repository.DBTX
}

// NewSettingsRepository creates a SettingsRepository backed by SQLite. The
// settings table holds at most one row.
func NewSettingsRepository(db repository.DBTX) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) WithTx(tx *sql.Tx) repository.SettingsRepository {
	return &settingsRepository{db: tx}
}

// Get returns the singleton settings row, or defaults when none has been
// written yet.
func (r *settingsRepository) Get(ctx context.Context) (models.Settings, error) {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")

	var s models.Settings
	var mode string
	err := r.db.QueryRowContext(ctx,
		`SELECT show_reverse_flashcards, show_antonyms_mode, updated_at_ms FROM settings WHERE id = 1`).
		Scan(&s.ShowReverseFlashcards, &mode, &s.UpdatedAtMS)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		log.Error("failed to get settings: %v", err)
		return models.DefaultSettings(), err
	}
	s.ShowAntonymsMode = models.AntonymsMode(mode)
	if !s.ShowAntonymsMode.Valid() {
		log.Warn("unknown antonyms mode %q, falling back to hidden", mode)
		s.ShowAntonymsMode = models.AntonymsHidden
	}
	return s, nil
}

// Upsert writes the singleton row, inserting it on first use.
func (r *settingsRepository) Upsert(ctx context.Context, s models.Settings) error {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")
	log.Debug("upserting settings: show_reverse=%v mode=%s", s.ShowReverseFlashcards, s.ShowAntonymsMode)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO settings (id, show_reverse_flashcards, show_antonyms_mode, updated_at_ms)
VALUES (1, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    show_reverse_flashcards = excluded.show_reverse_flashcards,
    show_antonyms_mode = excluded.show_antonyms_mode,
    updated_at_ms = excluded.updated_at_ms
`, s.ShowReverseFlashcards, string(s.ShowAntonymsMode), s.UpdatedAtMS)
	if err != nil {
		log.Error("failed to upsert settings: %v", err)
	}
	return err
}

func (r *settingsRepository) ChangedSince(ctx context.Context, sinceMS int64) (*models.Settings, error) {
	s, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	if s.UpdatedAtMS <= sinceMS {
		return nil, nil
	}
	return &s, nil
}
