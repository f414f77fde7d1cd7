package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bahar-app/bahar/internal/apperr"
	"github.com/bahar-app/bahar/internal/logger"
	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/repository"
	"github.com/bahar-app/bahar/internal/scheduler"
	"github.com/bahar-app/bahar/internal/store"
)

// QueueCounts are the fresh per-queue due counts.
type QueueCounts struct {
	Regular int `json:"regular"`
	Backlog int `json:"backlog"`
}

// ReviewService handles due-card queries and grading.
type ReviewService interface {
	DueCards(ctx context.Context, q models.ReviewQuery) ([]models.CardWithEntry, error)
	QueueCounts(ctx context.Context, q models.ReviewQuery) (QueueCounts, error)
	Grade(ctx context.Context, cardID string, rating models.Rating) (*models.Flashcard, error)
	ClearBacklog(ctx context.Context, progress func(done, total int)) (int, error)
}

// ReviewConfig carries the review tunables.
type ReviewConfig struct {
	BacklogThresholdDays int
	DisplayLimit         int
}

type reviewService struct {
	store    *store.Store
	cards    repository.FlashcardRepository
	settings repository.SettingsRepository
	grader   scheduler.Grader
	cfg      ReviewConfig
	changed  func()
	now      func() time.Time
}

// NewReviewService creates a ReviewService. changed is invoked after every
// successful mutation so the caller can schedule a sync; it may be nil.
func NewReviewService(st *store.Store, cards repository.FlashcardRepository, settings repository.SettingsRepository, grader scheduler.Grader, cfg ReviewConfig, changed func()) ReviewService {
	if cfg.BacklogThresholdDays <= 0 {
		cfg.BacklogThresholdDays = models.DefaultBacklogThresholdDays
	}
	if cfg.DisplayLimit <= 0 {
		cfg.DisplayLimit = models.DefaultDisplayLimit
	}
	return &reviewService{
		store:    st,
		cards:    cards,
		settings: settings,
		grader:   grader,
		cfg:      cfg,
		changed:  changed,
		now:      time.Now,
	}
}

func (s *reviewService) notifyChanged() {
	if s.changed != nil {
		s.changed()
	}
}

func (s *reviewService) fill(q models.ReviewQuery) models.ReviewQuery {
	if q.BacklogThresholdDays <= 0 {
		q.BacklogThresholdDays = s.cfg.BacklogThresholdDays
	}
	if q.Now.IsZero() {
		q.Now = s.now()
	}
	return q
}

func (s *reviewService) DueCards(ctx context.Context, q models.ReviewQuery) ([]models.CardWithEntry, error) {
	q = s.fill(q)
	if q.Limit == 0 {
		// The cap bounds rendering cost only; counts use uncapped queries.
		q.Limit = s.cfg.DisplayLimit
	}
	cards, err := s.cards.DueCards(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return cards, nil
}

func (s *reviewService) QueueCounts(ctx context.Context, q models.ReviewQuery) (QueueCounts, error) {
	q = s.fill(q)
	var counts QueueCounts

	q.Queue = models.QueueRegular
	regular, err := s.cards.Count(ctx, q, true)
	if err != nil {
		return counts, apperr.Internal(err)
	}
	q.Queue = models.QueueBacklog
	backlog, err := s.cards.Count(ctx, q, true)
	if err != nil {
		return counts, apperr.Internal(err)
	}
	counts.Regular = regular
	counts.Backlog = backlog
	return counts, nil
}

func (s *reviewService) Grade(ctx context.Context, cardID string, rating models.Rating) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("grading flashcard: id=%s rating=%d", cardID, rating)

	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if card == nil {
		return nil, apperr.NotFound("flashcard", cardID)
	}

	next, err := s.grader.Next(*card, rating, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.cards.UpdateScheduling(ctx, next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("flashcard", cardID)
		}
		// A failed write must never silently drop the user's review.
		log.Error("failed to persist grade for %s: %v", cardID, err)
		return nil, apperr.Internal(err)
	}

	log.Debug("graded flashcard %s: state=%d due=%v", cardID, next.State, next.Due)
	s.notifyChanged()
	return &next, nil
}

// ClearBacklog grades every backlog card with Hard inside one transaction.
// Any failure rolls the whole batch back; partial clearing is never
// observable.
func (s *reviewService) ClearBacklog(ctx context.Context, progress func(done, total int)) (int, error) {
	log := logger.FromContext(ctx)

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	q := s.fill(models.ReviewQuery{
		Queue:       models.QueueBacklog,
		ShowReverse: settings.ShowReverseFlashcards,
	})
	backlog, err := s.cards.DueCards(ctx, q)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	total := len(backlog)
	if total == 0 {
		return 0, nil
	}

	log.Info("clearing backlog: %d cards", total)
	now := s.now()
	err = s.store.InTx(ctx, func(tx *sql.Tx) error {
		cards := s.cards.WithTx(tx)
		for i, c := range backlog {
			next, err := s.grader.Next(c.Flashcard, models.RatingHard, now)
			if err != nil {
				return err
			}
			if err := cards.UpdateScheduling(ctx, next); err != nil {
				return err
			}
			if progress != nil {
				progress(i+1, total)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("backlog clear rolled back: %v", err)
		return 0, apperr.Internal(err)
	}

	s.notifyChanged()
	return total, nil
}
