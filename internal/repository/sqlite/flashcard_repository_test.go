package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/repository"
	"github.com/bahar-app/bahar/internal/repository/sqlite"
	"github.com/bahar-app/bahar/internal/testutil"
)

type FlashcardRepositorySuite struct {
	suite.Suite
	db      *sql.DB
	repo    repository.FlashcardRepository
	entries repository.EntryRepository
	now     time.Time
}

func (s *FlashcardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewFlashcardRepository(s.db)
	s.entries = sqlite.NewEntryRepository(s.db)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *FlashcardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *FlashcardRepositorySuite) insertEntry(id string, typ models.WordType, tags []string) {
	err := s.entries.Insert(context.Background(), models.DictionaryEntry{
		ID:          id,
		Word:        "word-" + id,
		Translation: "translation-" + id,
		Type:        typ,
		Tags:        tags,
		CreatedAt:   s.now,
		CreatedAtMS: s.now.UnixMilli(),
		UpdatedAt:   s.now,
		UpdatedAtMS: s.now.UnixMilli(),
	})
	s.Require().NoError(err)
}

func (s *FlashcardRepositorySuite) insertCard(id, entryID string, dir models.Direction, due *time.Time) {
	card := models.Flashcard{
		ID:          id,
		EntryID:     entryID,
		Direction:   dir,
		State:       models.StateNew,
		UpdatedAtMS: s.now.UnixMilli(),
	}
	if due != nil {
		card.SetDue(*due)
		card.State = models.StateReview
	}
	s.Require().NoError(s.repo.Insert(context.Background(), card))
}

func (s *FlashcardRepositorySuite) query(queue models.Queue) models.ReviewQuery {
	return models.ReviewQuery{Queue: queue, Now: s.now}
}

func cardIDs(cards []models.CardWithEntry) []string {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids
}

func (s *FlashcardRepositorySuite) TestQueuePartition() {
	ctx := context.Background()
	s.insertEntry("e1", models.WordTypeNoun, nil)

	hourAgo := s.now.Add(-time.Hour)
	eightDaysAgo := s.now.Add(-8 * 24 * time.Hour)
	cutoff := s.now.Add(-7 * 24 * time.Hour) // exactly the threshold
	tomorrow := s.now.Add(24 * time.Hour)

	// Each entry holds one card per direction, so spread the cards out.
	s.insertEntry("e2", models.WordTypeNoun, nil)
	s.insertEntry("e3", models.WordTypeNoun, nil)
	s.insertCard("never-scheduled", "e1", models.DirectionForward, nil)
	s.insertCard("recent", "e1", models.DirectionReverse, &hourAgo)
	s.insertCard("old", "e2", models.DirectionForward, &eightDaysAgo)
	s.insertCard("future", "e2", models.DirectionReverse, &tomorrow)
	s.insertCard("at-cutoff", "e3", models.DirectionForward, &cutoff)

	q := s.query(models.QueueRegular)
	q.ShowReverse = true

	regular, err := s.repo.DueCards(ctx, q)
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"never-scheduled", "recent"}, cardIDs(regular))

	q.Queue = models.QueueBacklog
	backlog, err := s.repo.DueCards(ctx, q)
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"old", "at-cutoff"}, cardIDs(backlog))

	q.Queue = models.QueueAll
	all, err := s.repo.DueCards(ctx, q)
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"never-scheduled", "recent", "old", "at-cutoff"}, cardIDs(all))

	// Regular and backlog partition the due set: disjoint, union = all.
	s.Assert().Equal(len(all), len(regular)+len(backlog))
}

func (s *FlashcardRepositorySuite) TestDueOrderingAndLimit() {
	ctx := context.Background()
	s.insertEntry("e1", models.WordTypeNoun, nil)
	s.insertEntry("e2", models.WordTypeNoun, nil)

	older := s.now.Add(-48 * time.Hour)
	newer := s.now.Add(-time.Hour)
	s.insertCard("newer", "e1", models.DirectionForward, &newer)
	s.insertCard("no-due", "e2", models.DirectionForward, nil)
	s.insertCard("older", "e1", models.DirectionReverse, &older)

	q := s.query(models.QueueAll)
	q.ShowReverse = true

	cards, err := s.repo.DueCards(ctx, q)
	s.Require().NoError(err)
	// Oldest due first; never-scheduled cards sort to the end.
	s.Assert().Equal([]string{"older", "newer", "no-due"}, cardIDs(cards))

	q.Limit = 2
	capped, err := s.repo.DueCards(ctx, q)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"older", "newer"}, cardIDs(capped))

	// The count ignores the display cap.
	count, err := s.repo.Count(ctx, q, true)
	s.Require().NoError(err)
	s.Assert().Equal(3, count)
}

func (s *FlashcardRepositorySuite) TestReverseHiddenAndTypeFilters() {
	ctx := context.Background()
	s.insertEntry("noun", models.WordTypeNoun, nil)
	s.insertEntry("verb", models.WordTypeVerb, nil)

	s.insertCard("noun-fwd", "noun", models.DirectionForward, nil)
	s.insertCard("noun-rev", "noun", models.DirectionReverse, nil)
	s.insertCard("verb-fwd", "verb", models.DirectionForward, nil)

	hidden := models.Flashcard{
		ID:          "verb-rev-hidden",
		EntryID:     "verb",
		Direction:   models.DirectionReverse,
		Hidden:      true,
		State:       models.StateNew,
		UpdatedAtMS: s.now.UnixMilli(),
	}
	s.Require().NoError(s.repo.Insert(ctx, hidden))

	// Default: forward only.
	cards, err := s.repo.DueCards(ctx, s.query(models.QueueAll))
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"noun-fwd", "verb-fwd"}, cardIDs(cards))

	// Reverse included on request, hidden cards never.
	q := s.query(models.QueueAll)
	q.ShowReverse = true
	cards, err = s.repo.DueCards(ctx, q)
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"noun-fwd", "noun-rev", "verb-fwd"}, cardIDs(cards))

	q.Types = []models.WordType{models.WordTypeVerb}
	cards, err = s.repo.DueCards(ctx, q)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"verb-fwd"}, cardIDs(cards))
}

func (s *FlashcardRepositorySuite) TestTagFilterMatchesAny() {
	ctx := context.Background()
	s.insertEntry("grammar", models.WordTypeNoun, []string{"grammar", "basics"})
	s.insertEntry("food", models.WordTypeNoun, []string{"food"})
	s.insertEntry("untagged", models.WordTypeNoun, nil)

	s.insertCard("c-grammar", "grammar", models.DirectionForward, nil)
	s.insertCard("c-food", "food", models.DirectionForward, nil)
	s.insertCard("c-untagged", "untagged", models.DirectionForward, nil)

	q := s.query(models.QueueAll)
	q.Tags = []string{"grammar", "food"}

	cards, err := s.repo.DueCards(ctx, q)
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"c-grammar", "c-food"}, cardIDs(cards))

	// An empty tag filter matches everything, tagged or not.
	q.Tags = nil
	cards, err = s.repo.DueCards(ctx, q)
	s.Require().NoError(err)
	s.Assert().Len(cards, 3)
}

func (s *FlashcardRepositorySuite) TestCorruptedEntrySkipped() {
	ctx := context.Background()
	s.insertEntry("good", models.WordTypeNoun, nil)
	s.insertCard("c-good", "good", models.DirectionForward, nil)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO dictionary_entries (id, word, translation, type, tags, created_at, created_at_ms, updated_at, updated_at_ms)
VALUES ('bad', 'w', 't', 'noun', 'not-json', '2026-03-01T00:00:00.000Z', 0, '2026-03-01T00:00:00.000Z', 0)
`)
	s.Require().NoError(err)
	s.insertCard("c-bad", "bad", models.DirectionForward, nil)

	cards, err := s.repo.DueCards(ctx, s.query(models.QueueAll))
	s.Require().NoError(err)
	s.Assert().Equal([]string{"c-good"}, cardIDs(cards))

	// The count applies the same skip policy as the list.
	count, err := s.repo.Count(ctx, s.query(models.QueueAll), true)
	s.Require().NoError(err)
	s.Assert().Equal(1, count)
}

func (s *FlashcardRepositorySuite) TestUpdateScheduling() {
	ctx := context.Background()
	s.insertEntry("e1", models.WordTypeNoun, nil)
	s.insertCard("c1", "e1", models.DirectionForward, nil)

	card, err := s.repo.Get(ctx, "c1")
	s.Require().NoError(err)
	s.Require().NotNil(card)

	card.State = models.StateReview
	card.Reps = 1
	card.Stability = 3.5
	card.SetDue(s.now.Add(72 * time.Hour))
	card.SetLastReview(s.now)
	card.UpdatedAtMS = s.now.UnixMilli()

	s.Require().NoError(s.repo.UpdateScheduling(ctx, *card))

	got, err := s.repo.Get(ctx, "c1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal(models.StateReview, got.State)
	s.Assert().Equal(uint64(1), got.Reps)
	s.Assert().Equal(3.5, got.Stability)
	s.Require().NotNil(got.DueMS)
	s.Assert().Equal(s.now.Add(72*time.Hour).UnixMilli(), *got.DueMS)
	// Identity fields survive scheduling updates.
	s.Assert().Equal("e1", got.EntryID)
	s.Assert().Equal(models.DirectionForward, got.Direction)

	err = s.repo.UpdateScheduling(ctx, models.Flashcard{ID: "missing"})
	s.Assert().ErrorIs(err, sql.ErrNoRows)
}

func (s *FlashcardRepositorySuite) TestResetScheduling() {
	ctx := context.Background()
	s.insertEntry("e1", models.WordTypeNoun, nil)
	due := s.now.Add(-time.Hour)
	s.insertCard("c1", "e1", models.DirectionForward, &due)

	s.Require().NoError(s.repo.ResetScheduling(ctx, "c1", s.now.UnixMilli()))

	got, err := s.repo.Get(ctx, "c1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal(models.StateNew, got.State)
	s.Assert().Nil(got.Due)
	s.Assert().Nil(got.DueMS)
	s.Assert().Nil(got.LastReview)
	s.Assert().Equal(uint64(0), got.Reps)

	err = s.repo.ResetScheduling(ctx, "missing", s.now.UnixMilli())
	s.Assert().ErrorIs(err, sql.ErrNoRows)
}

func (s *FlashcardRepositorySuite) TestUpsertLastWriteWins() {
	ctx := context.Background()
	s.insertEntry("e1", models.WordTypeNoun, nil)

	card := models.Flashcard{
		ID:          "c1",
		EntryID:     "e1",
		Direction:   models.DirectionForward,
		State:       models.StateReview,
		Reps:        5,
		UpdatedAtMS: 2000,
	}
	s.Require().NoError(s.repo.Upsert(ctx, card))

	// A stale remote copy never overwrites a newer local row.
	stale := card
	stale.Reps = 1
	stale.UpdatedAtMS = 1000
	s.Require().NoError(s.repo.Upsert(ctx, stale))

	got, err := s.repo.Get(ctx, "c1")
	s.Require().NoError(err)
	s.Assert().Equal(uint64(5), got.Reps)

	fresh := card
	fresh.Reps = 6
	fresh.UpdatedAtMS = 3000
	s.Require().NoError(s.repo.Upsert(ctx, fresh))

	got, err = s.repo.Get(ctx, "c1")
	s.Require().NoError(err)
	s.Assert().Equal(uint64(6), got.Reps)
}

func (s *FlashcardRepositorySuite) TestChangedSince() {
	ctx := context.Background()
	s.insertEntry("e1", models.WordTypeNoun, nil)

	for _, c := range []models.Flashcard{
		{ID: "c1", EntryID: "e1", Direction: models.DirectionForward, UpdatedAtMS: 100},
		{ID: "c2", EntryID: "e1", Direction: models.DirectionReverse, UpdatedAtMS: 300},
	} {
		s.Require().NoError(s.repo.Insert(ctx, c))
	}

	changed, err := s.repo.ChangedSince(ctx, 100)
	s.Require().NoError(err)
	s.Require().Len(changed, 1)
	s.Assert().Equal("c2", changed[0].ID)
}

func (s *FlashcardRepositorySuite) TestGetMissingReturnsNil() {
	card, err := s.repo.Get(context.Background(), "missing")
	s.Require().NoError(err)
	s.Assert().Nil(card)
}

func TestFlashcardRepositorySuite(t *testing.T) {
	suite.Run(t, new(FlashcardRepositorySuite))
}
