package scheduler

import (
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs/v3"

	"github.com/bahar-app/bahar/internal/apperr"
	"github.com/bahar-app/bahar/internal/models"
)

// Grader computes a card's next scheduling state for a rating. The state
// transition table is owned by the scheduling algorithm; implementations
// never re-derive it.
type Grader interface {
	Next(card models.Flashcard, rating models.Rating, now time.Time) (models.Flashcard, error)
}

// FSRS grades cards with the Free Spaced Repetition Scheduler.
type FSRS struct {
	f *fsrs.FSRS
}

// New creates an FSRS grader with default parameters.
func New() *FSRS {
	return &FSRS{f: fsrs.NewFSRS(fsrs.DefaultParam())}
}

// NewWithParams creates an FSRS grader with custom parameters.
func NewWithParams(params fsrs.Parameters) *FSRS {
	return &FSRS{f: fsrs.NewFSRS(params)}
}

// Next translates the stored card into the algorithm's representation, asks
// FSRS for the candidate states of every rating, and applies the candidate
// matching the chosen rating. Only scheduling fields change; identity fields
// pass through untouched.
func (s *FSRS) Next(card models.Flashcard, rating models.Rating, now time.Time) (models.Flashcard, error) {
	if rating < models.RatingAgain || rating > models.RatingEasy {
		return card, apperr.Validation("rating", "must be again, hard, good or easy")
	}

	record := s.f.Repeat(toAlgorithm(card, now), now)
	info, ok := record[fsrs.Rating(rating)]
	if !ok {
		return card, apperr.Internal(nil)
	}
	return apply(card, info.Card, now), nil
}

// toAlgorithm maps the stored representation (nullable ISO + epoch-ms
// mirrors) onto the algorithm's card. A card never scheduled is due now.
func toAlgorithm(c models.Flashcard, now time.Time) fsrs.Card {
	card := fsrs.NewCard()
	card.Stability = c.Stability
	card.Difficulty = c.Difficulty
	card.ElapsedDays = c.ElapsedDays
	card.ScheduledDays = c.ScheduledDays
	card.Reps = c.Reps
	card.Lapses = c.Lapses
	card.State = fsrs.State(c.State)
	if c.Due != nil {
		card.Due = *c.Due
	} else {
		card.Due = now
	}
	if c.LastReview != nil {
		card.LastReview = *c.LastReview
	}
	return card
}

// apply copies exactly the scheduling fields of the algorithm's result back
// onto the stored card.
func apply(c models.Flashcard, next fsrs.Card, now time.Time) models.Flashcard {
	c.Stability = next.Stability
	c.Difficulty = next.Difficulty
	c.ElapsedDays = next.ElapsedDays
	c.ScheduledDays = next.ScheduledDays
	c.Reps = next.Reps
	c.Lapses = next.Lapses
	c.State = models.CardState(next.State)
	c.SetDue(next.Due)
	c.SetLastReview(next.LastReview)
	c.UpdatedAtMS = now.UnixMilli()
	return c
}
