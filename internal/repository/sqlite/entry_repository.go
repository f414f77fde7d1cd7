package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bahar-app/bahar/internal/logger"
	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/repository"
)

const entryColumns = `id, word, translation, definition, type, root, tags, antonyms, examples, morphology, created_at, created_at_ms, updated_at, updated_at_ms`

type entryRepository struct {
	db repository.DBTX
}

// NewEntryRepository creates an EntryRepository backed by SQLite.
func NewEntryRepository(db repository.DBTX) repository.EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) WithTx(tx *sql.Tx) repository.EntryRepository {
	return &entryRepository{db: tx}
}

type entryRow struct {
	id, word, translation string
	definition            sql.NullString
	typ                   string
	root, tags            sql.NullString
	antonyms, examples    sql.NullString
	morphology            sql.NullString
	createdAt, updatedAt  string
	createdAtMS           int64
	updatedAtMS           int64
}

func scanEntry(scan func(dest ...any) error) (entryRow, error) {
	var row entryRow
	err := scan(&row.id, &row.word, &row.translation, &row.definition, &row.typ,
		&row.root, &row.tags, &row.antonyms, &row.examples, &row.morphology,
		&row.createdAt, &row.createdAtMS, &row.updatedAt, &row.updatedAtMS)
	return row, err
}

// toModel parses the JSON columns defensively: each sub-field either
// validates or is treated as absent. The returned error joins every field
// that failed, so callers can decide whether to skip or keep the entry.
func (row entryRow) toModel() (models.DictionaryEntry, error) {
	e := models.DictionaryEntry{
		ID:          row.id,
		Word:        row.word,
		Translation: row.translation,
		Definition:  row.definition.String,
		Type:        models.WordType(row.typ),
		CreatedAtMS: row.createdAtMS,
		UpdatedAtMS: row.updatedAtMS,
	}
	if t, err := parseISO(row.createdAt); err == nil {
		e.CreatedAt = t
	}
	if t, err := parseISO(row.updatedAt); err == nil {
		e.UpdatedAt = t
	}

	var parseErrs []error
	if err := decodeJSON(row.root, "entry root", &e.Root); err != nil {
		parseErrs = append(parseErrs, err)
	}
	if err := decodeJSON(row.tags, "entry tags", &e.Tags); err != nil {
		parseErrs = append(parseErrs, err)
	}
	if err := decodeJSON(row.antonyms, "entry antonyms", &e.Antonyms); err != nil {
		parseErrs = append(parseErrs, err)
	}
	if err := decodeJSON(row.examples, "entry examples", &e.Examples); err != nil {
		parseErrs = append(parseErrs, err)
	}
	if err := decodeJSON(row.morphology, "entry morphology", &e.Morphology); err != nil {
		parseErrs = append(parseErrs, err)
	}
	return e, errors.Join(parseErrs...)
}

func (r *entryRepository) encode(e models.DictionaryEntry) ([]any, error) {
	root, err := encodeJSON(e.Root)
	if err != nil {
		return nil, err
	}
	tags, err := encodeJSON(e.Tags)
	if err != nil {
		return nil, err
	}
	antonyms, err := encodeJSON(e.Antonyms)
	if err != nil {
		return nil, err
	}
	examples, err := encodeJSON(e.Examples)
	if err != nil {
		return nil, err
	}
	var morphology sql.NullString
	if e.Morphology != nil {
		morphology, err = encodeJSON(e.Morphology)
		if err != nil {
			return nil, err
		}
	}
	return []any{
		e.ID, e.Word, e.Translation, e.Definition, string(e.Type),
		root, tags, antonyms, examples, morphology,
		formatISO(e.CreatedAt), e.CreatedAtMS, formatISO(e.UpdatedAt), e.UpdatedAtMS,
	}, nil
}

func (r *entryRepository) Insert(ctx context.Context, e models.DictionaryEntry) error {
	log := logger.FromContext(ctx).WithPrefix("entry_repo")
	log.Debug("inserting entry: id=%s word=%s", e.ID, e.Word)

	args, err := r.encode(e)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO dictionary_entries (`+entryColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, args...)
	if err != nil {
		log.Error("failed to insert entry: %v", err)
	}
	return err
}

func (r *entryRepository) Get(ctx context.Context, id string) (*models.DictionaryEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("entry_repo")

	row, err := scanEntry(r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM dictionary_entries WHERE id = ?`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get entry: %v", err)
		return nil, err
	}
	e, parseErr := row.toModel()
	if parseErr != nil {
		// Invalid sub-fields are absent; the entry itself stays usable.
		log.Warn("entry %s has invalid stored JSON: %v", id, parseErr)
	}
	return &e, nil
}

func (r *entryRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("entry_repo")
	log.Debug("deleting entry: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM dictionary_entries WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete entry: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *entryRepository) Upsert(ctx context.Context, e models.DictionaryEntry) error {
	args, err := r.encode(e)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO dictionary_entries (`+entryColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    word = excluded.word,
    translation = excluded.translation,
    definition = excluded.definition,
    type = excluded.type,
    root = excluded.root,
    tags = excluded.tags,
    antonyms = excluded.antonyms,
    examples = excluded.examples,
    morphology = excluded.morphology,
    created_at = excluded.created_at,
    created_at_ms = excluded.created_at_ms,
    updated_at = excluded.updated_at,
    updated_at_ms = excluded.updated_at_ms
WHERE excluded.updated_at_ms > dictionary_entries.updated_at_ms
`, args...)
	return err
}

func (r *entryRepository) ChangedSince(ctx context.Context, sinceMS int64) ([]models.DictionaryEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("entry_repo")

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM dictionary_entries WHERE updated_at_ms > ? ORDER BY updated_at_ms`, sinceMS)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DictionaryEntry
	for rows.Next() {
		row, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		e, parseErr := row.toModel()
		if parseErr != nil {
			log.Warn("entry %s has invalid stored JSON: %v", row.id, parseErr)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
