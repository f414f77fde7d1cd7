package services_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/bahar-app/bahar/internal/apperr"
	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/repository"
	"github.com/bahar-app/bahar/internal/repository/sqlite"
	"github.com/bahar-app/bahar/internal/services"
	"github.com/bahar-app/bahar/internal/testutil"
)

type DeckServiceSuite struct {
	suite.Suite
	db      *sql.DB
	cards   repository.FlashcardRepository
	entries repository.EntryRepository
	svc     services.DeckService
	now     time.Time
}

func (s *DeckServiceSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.cards = sqlite.NewFlashcardRepository(s.db)
	s.entries = sqlite.NewEntryRepository(s.db)
	decks := sqlite.NewDeckRepository(s.db)
	settings := sqlite.NewSettingsRepository(s.db)
	s.svc = services.NewDeckService(decks, s.cards, settings, services.ReviewConfig{}, nil)
	s.now = time.Now()
}

func (s *DeckServiceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *DeckServiceSuite) seed(entryID string, typ models.WordType, tags []string, due *time.Time) {
	ctx := context.Background()
	s.Require().NoError(s.entries.Insert(ctx, models.DictionaryEntry{
		ID: entryID, Word: "w", Translation: "t", Type: typ, Tags: tags,
		CreatedAt: s.now, CreatedAtMS: s.now.UnixMilli(),
		UpdatedAt: s.now, UpdatedAtMS: s.now.UnixMilli(),
	}))
	card := models.Flashcard{
		ID: "card-" + entryID, EntryID: entryID, Direction: models.DirectionForward,
		State: models.StateNew, UpdatedAtMS: s.now.UnixMilli(),
	}
	if due != nil {
		card.SetDue(*due)
		card.State = models.StateReview
	}
	s.Require().NoError(s.cards.Insert(ctx, card))
}

func (s *DeckServiceSuite) TestListDecksComputesFreshCounts() {
	ctx := context.Background()

	overdue := s.now.Add(-time.Hour)
	future := s.now.Add(48 * time.Hour)
	s.seed("verb-due", models.WordTypeVerb, nil, &overdue)
	s.seed("verb-later", models.WordTypeVerb, nil, &future)
	s.seed("noun-due", models.WordTypeNoun, nil, &overdue)

	_, err := s.svc.CreateDeck(ctx, "Verbs", &models.DeckFilters{
		Types: []models.WordType{models.WordTypeVerb},
	})
	s.Require().NoError(err)
	_, err = s.svc.CreateDeck(ctx, "Everything", nil)
	s.Require().NoError(err)

	decks, err := s.svc.ListDecks(ctx)
	s.Require().NoError(err)
	s.Require().Len(decks, 2)

	byName := map[string]models.DeckWithCounts{}
	for _, d := range decks {
		byName[d.Name] = d
	}

	verbs := byName["Verbs"]
	s.Assert().Equal(1, verbs.DueCount)
	s.Assert().Equal(2, verbs.TotalCount)

	everything := byName["Everything"]
	s.Assert().Equal(2, everything.DueCount)
	s.Assert().Equal(3, everything.TotalCount)
}

func (s *DeckServiceSuite) TestCreateDeckValidation() {
	ctx := context.Background()

	_, err := s.svc.CreateDeck(ctx, "", nil)
	s.Assert().True(apperr.IsKind(err, apperr.KindValidation))

	_, err = s.svc.CreateDeck(ctx, "Bad", &models.DeckFilters{
		Types: []models.WordType{"adjective"},
	})
	s.Assert().True(apperr.IsKind(err, apperr.KindValidation))
}

func (s *DeckServiceSuite) TestDeleteDeck() {
	ctx := context.Background()

	deck, err := s.svc.CreateDeck(ctx, "Doomed", nil)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteDeck(ctx, deck.ID))

	err = s.svc.DeleteDeck(ctx, deck.ID)
	s.Assert().True(apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeckServiceSuite(t *testing.T) {
	suite.Run(t, new(DeckServiceSuite))
}
