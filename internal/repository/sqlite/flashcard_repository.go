package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/bahar-app/bahar/internal/logger"
	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/repository"
)

const cardColumns = `f.id, f.dictionary_entry_id, f.direction, f.is_hidden, f.difficulty, f.stability, f.elapsed_days, f.scheduled_days, f.reps, f.lapses, f.state, f.due, f.due_ms, f.last_review, f.last_review_ms, f.updated_at_ms`

type flashcardRepository struct {
	db repository.DBTX
}

// NewFlashcardRepository creates a FlashcardRepository backed by SQLite.
func NewFlashcardRepository(db repository.DBTX) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

func (r *flashcardRepository) WithTx(tx *sql.Tx) repository.FlashcardRepository {
	return &flashcardRepository{db: tx}
}

type cardRow struct {
	id, entryID, direction   string
	hidden                   bool
	difficulty, stability    float64
	elapsedDays, scheduled   uint64
	reps, lapses             uint64
	state                    int
	due, lastReview          sql.NullString
	dueMS, lastReviewMS      sql.NullInt64
	updatedAtMS              int64
}

func scanCard(scan func(dest ...any) error) (cardRow, error) {
	var row cardRow
	err := scan(&row.id, &row.entryID, &row.direction, &row.hidden,
		&row.difficulty, &row.stability, &row.elapsedDays, &row.scheduled,
		&row.reps, &row.lapses, &row.state,
		&row.due, &row.dueMS, &row.lastReview, &row.lastReviewMS, &row.updatedAtMS)
	return row, err
}

func (row cardRow) toModel() models.Flashcard {
	c := models.Flashcard{
		ID:            row.id,
		EntryID:       row.entryID,
		Direction:     models.Direction(row.direction),
		Hidden:        row.hidden,
		Difficulty:    row.difficulty,
		Stability:     row.stability,
		ElapsedDays:   row.elapsedDays,
		ScheduledDays: row.scheduled,
		Reps:          row.reps,
		Lapses:        row.lapses,
		State:         models.CardState(row.state),
		UpdatedAtMS:   row.updatedAtMS,
	}
	if row.due.Valid {
		if t, err := parseISO(row.due.String); err == nil {
			c.Due = &t
		}
	}
	if row.dueMS.Valid {
		ms := row.dueMS.Int64
		c.DueMS = &ms
	}
	if row.lastReview.Valid {
		if t, err := parseISO(row.lastReview.String); err == nil {
			c.LastReview = &t
		}
	}
	if row.lastReviewMS.Valid {
		ms := row.lastReviewMS.Int64
		c.LastReviewMS = &ms
	}
	return c
}

func cardArgs(c models.Flashcard) []any {
	return []any{
		c.ID, c.EntryID, string(c.Direction), c.Hidden,
		c.Difficulty, c.Stability, c.ElapsedDays, c.ScheduledDays,
		c.Reps, c.Lapses, int(c.State),
		nullTimeISO(c.Due), nullInt(c.DueMS), nullTimeISO(c.LastReview), nullInt(c.LastReviewMS),
		c.UpdatedAtMS,
	}
}

func (r *flashcardRepository) Insert(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting flashcard: id=%s entry=%s direction=%s", c.ID, c.EntryID, c.Direction)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO flashcards (id, dictionary_entry_id, direction, is_hidden, difficulty, stability, elapsed_days, scheduled_days, reps, lapses, state, due, due_ms, last_review, last_review_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, cardArgs(c)...)
	if err != nil {
		log.Error("failed to insert flashcard: %v", err)
	}
	return err
}

func (r *flashcardRepository) Get(ctx context.Context, id string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	row, err := scanCard(r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM flashcards f WHERE f.id = ?`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, err
	}
	c := row.toModel()
	return &c, nil
}

// dueClause translates the queue partition into a condition on due_ms.
// Cards that have never been scheduled (NULL due) count as due now, so they
// belong to the regular queue, never the backlog.
func dueClause(q models.ReviewQuery) squirrel.Sqlizer {
	nowMS := q.Now.UnixMilli()
	cutoffMS := q.BacklogCutoffMS()
	switch q.Queue {
	case models.QueueBacklog:
		return squirrel.LtOrEq{"f.due_ms": cutoffMS}
	case models.QueueRegular:
		return squirrel.Or{
			squirrel.Expr("f.due_ms IS NULL"),
			squirrel.And{
				squirrel.Gt{"f.due_ms": cutoffMS},
				squirrel.LtOrEq{"f.due_ms": nowMS},
			},
		}
	default:
		return squirrel.Or{
			squirrel.Expr("f.due_ms IS NULL"),
			squirrel.LtOrEq{"f.due_ms": nowMS},
		}
	}
}

// queryCards is the single implementation behind DueCards and Count: SQL
// handles types, states, direction, hidden and the queue partition; the tag
// OR-filter and JSON validation run after the scan so corrupted entries are
// skipped without aborting the batch.
func (r *flashcardRepository) queryCards(ctx context.Context, q models.ReviewQuery, dueBound bool, limit int) ([]models.CardWithEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	q = q.Normalized()

	types := make([]string, 0, len(q.Types))
	for _, t := range q.Types {
		types = append(types, string(t))
	}
	states := make([]int, 0, len(q.States))
	for _, s := range q.States {
		states = append(states, int(s))
	}

	builder := sqlBuilder.
		Select(`f.id, f.dictionary_entry_id, f.direction, f.is_hidden, f.difficulty, f.stability,
f.elapsed_days, f.scheduled_days, f.reps, f.lapses, f.state, f.due, f.due_ms,
f.last_review, f.last_review_ms, f.updated_at_ms,
e.id, e.word, e.translation, e.definition, e.type, e.root, e.tags, e.antonyms, e.examples, e.morphology,
e.created_at, e.created_at_ms, e.updated_at, e.updated_at_ms`).
		From("flashcards f").
		Join("dictionary_entries e ON e.id = f.dictionary_entry_id").
		Where(squirrel.Eq{"f.is_hidden": false}).
		Where(squirrel.Eq{"e.type": types}).
		Where(squirrel.Eq{"f.state": states})

	if !q.ShowReverse {
		builder = builder.Where(squirrel.Eq{"f.direction": string(models.DirectionForward)})
	}
	if dueBound {
		builder = builder.Where(dueClause(q))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query due cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.CardWithEntry
	skipped := 0
	for rows.Next() {
		var card cardRow
		var entry entryRow
		err := rows.Scan(&card.id, &card.entryID, &card.direction, &card.hidden,
			&card.difficulty, &card.stability, &card.elapsedDays, &card.scheduled,
			&card.reps, &card.lapses, &card.state,
			&card.due, &card.dueMS, &card.lastReview, &card.lastReviewMS, &card.updatedAtMS,
			&entry.id, &entry.word, &entry.translation, &entry.definition, &entry.typ,
			&entry.root, &entry.tags, &entry.antonyms, &entry.examples, &entry.morphology,
			&entry.createdAt, &entry.createdAtMS, &entry.updatedAt, &entry.updatedAtMS)
		if err != nil {
			log.Error("failed to scan due card row: %v", err)
			return nil, err
		}

		e, parseErr := entry.toModel()
		if parseErr != nil {
			// One corrupted entry never aborts the query.
			log.Warn("skipping card %s: entry %s failed validation: %v", card.id, entry.id, parseErr)
			skipped++
			continue
		}
		if !e.HasAnyTag(q.Tags) {
			continue
		}
		out = append(out, models.CardWithEntry{Flashcard: card.toModel(), Entry: e})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Warn("skipped %d cards with corrupted entries", skipped)
	}

	models.SortCardsByDue(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *flashcardRepository) DueCards(ctx context.Context, q models.ReviewQuery) ([]models.CardWithEntry, error) {
	return r.queryCards(ctx, q, true, q.Limit)
}

func (r *flashcardRepository) Count(ctx context.Context, q models.ReviewQuery, dueBound bool) (int, error) {
	cards, err := r.queryCards(ctx, q, dueBound, 0)
	if err != nil {
		return 0, err
	}
	return len(cards), nil
}

// UpdateScheduling persists exactly the scheduling fields, leaving identity
// columns (id, dictionary_entry_id, direction) untouched.
func (r *flashcardRepository) UpdateScheduling(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating scheduling: id=%s state=%d reps=%d", c.ID, c.State, c.Reps)

	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET difficulty = ?, stability = ?, elapsed_days = ?, scheduled_days = ?, reps = ?, lapses = ?, state = ?,
    due = ?, due_ms = ?, last_review = ?, last_review_ms = ?, updated_at_ms = ?
WHERE id = ?
`, c.Difficulty, c.Stability, c.ElapsedDays, c.ScheduledDays, c.Reps, c.Lapses, int(c.State),
		nullTimeISO(c.Due), nullInt(c.DueMS), nullTimeISO(c.LastReview), nullInt(c.LastReviewMS), c.UpdatedAtMS,
		c.ID)
	if err != nil {
		log.Error("failed to update scheduling: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ResetScheduling puts a card back into the New state with no history.
func (r *flashcardRepository) ResetScheduling(ctx context.Context, id string, nowMS int64) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("resetting scheduling: id=%s", id)

	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET difficulty = 0, stability = 0, elapsed_days = 0, scheduled_days = 0, reps = 0, lapses = 0, state = ?,
    due = NULL, due_ms = NULL, last_review = NULL, last_review_ms = NULL, updated_at_ms = ?
WHERE id = ?
`, int(models.StateNew), nowMS, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *flashcardRepository) Upsert(ctx context.Context, c models.Flashcard) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO flashcards (id, dictionary_entry_id, direction, is_hidden, difficulty, stability, elapsed_days, scheduled_days, reps, lapses, state, due, due_ms, last_review, last_review_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    is_hidden = excluded.is_hidden,
    difficulty = excluded.difficulty,
    stability = excluded.stability,
    elapsed_days = excluded.elapsed_days,
    scheduled_days = excluded.scheduled_days,
    reps = excluded.reps,
    lapses = excluded.lapses,
    state = excluded.state,
    due = excluded.due,
    due_ms = excluded.due_ms,
    last_review = excluded.last_review,
    last_review_ms = excluded.last_review_ms,
    updated_at_ms = excluded.updated_at_ms
WHERE excluded.updated_at_ms > flashcards.updated_at_ms
`, cardArgs(c)...)
	return err
}

func (r *flashcardRepository) ChangedSince(ctx context.Context, sinceMS int64) ([]models.Flashcard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM flashcards f WHERE f.updated_at_ms > ? ORDER BY f.updated_at_ms`, sinceMS)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Flashcard
	for rows.Next() {
		row, err := scanCard(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row.toModel())
	}
	return out, rows.Err()
}
