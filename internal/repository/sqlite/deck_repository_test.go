package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/repository"
	"github.com/bahar-app/bahar/internal/repository/sqlite"
	"github.com/bahar-app/bahar/internal/testutil"
)

type DeckRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.DeckRepository
}

func (s *DeckRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewDeckRepository(s.db)
}

func (s *DeckRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *DeckRepositorySuite) TestInsertGetList() {
	ctx := context.Background()

	deck := models.Deck{
		ID:   "d1",
		Name: "Verbs",
		Filters: &models.DeckFilters{
			Types: []models.WordType{models.WordTypeVerb},
			Tags:  []string{"grammar"},
		},
		UpdatedAtMS: 100,
	}
	s.Require().NoError(s.repo.Insert(ctx, deck))
	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "d2", Name: "All", UpdatedAtMS: 100}))

	got, err := s.repo.Get(ctx, "d1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Require().NotNil(got.Filters)
	s.Assert().Equal([]models.WordType{models.WordTypeVerb}, got.Filters.Types)
	s.Assert().Equal([]string{"grammar"}, got.Filters.Tags)

	decks, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(decks, 2)
	// Ordered by name; a deck without filters has none.
	s.Assert().Equal("All", decks[0].Name)
	s.Assert().Nil(decks[0].Filters)
}

func (s *DeckRepositorySuite) TestListSkipsInvalidFilters() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "good", Name: "Good", UpdatedAtMS: 100}))
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decks (id, name, filters, updated_at_ms) VALUES ('bad', 'Bad', 'not-json', 100)`)
	s.Require().NoError(err)

	decks, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(decks, 1)
	s.Assert().Equal("good", decks[0].ID)
}

func (s *DeckRepositorySuite) TestDeleteMissing() {
	err := s.repo.Delete(context.Background(), "missing")
	s.Assert().ErrorIs(err, sql.ErrNoRows)
}

func (s *DeckRepositorySuite) TestUpsertLastWriteWins() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Upsert(ctx, models.Deck{ID: "d1", Name: "Current", UpdatedAtMS: 2000}))
	s.Require().NoError(s.repo.Upsert(ctx, models.Deck{ID: "d1", Name: "Stale", UpdatedAtMS: 1000}))

	got, err := s.repo.Get(ctx, "d1")
	s.Require().NoError(err)
	s.Assert().Equal("Current", got.Name)

	s.Require().NoError(s.repo.Upsert(ctx, models.Deck{ID: "d1", Name: "Newer", UpdatedAtMS: 3000}))
	got, err = s.repo.Get(ctx, "d1")
	s.Require().NoError(err)
	s.Assert().Equal("Newer", got.Name)
}

func TestDeckRepositorySuite(t *testing.T) {
	suite.Run(t, new(DeckRepositorySuite))
}
