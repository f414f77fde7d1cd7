package services

import (
	"context"
	"time"

	"github.com/bahar-app/bahar/internal/apperr"
	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/repository"
)

// SettingsService reads and updates the singleton review settings.
type SettingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, s models.Settings) (models.Settings, error)
}

type settingsService struct {
	settings repository.SettingsRepository
	changed  func()
	now      func() time.Time
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(settings repository.SettingsRepository, changed func()) SettingsService {
	return &settingsService{settings: settings, changed: changed, now: time.Now}
}

func (s *settingsService) Get(ctx context.Context) (models.Settings, error) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return current, apperr.Internal(err)
	}
	return current, nil
}

func (s *settingsService) Update(ctx context.Context, in models.Settings) (models.Settings, error) {
	if !in.ShowAntonymsMode.Valid() {
		return in, apperr.Validation("show_antonyms_mode", "must be hidden, hint or answer")
	}
	in.UpdatedAtMS = s.now().UnixMilli()
	if err := s.settings.Upsert(ctx, in); err != nil {
		return in, apperr.Internal(err)
	}
	if s.changed != nil {
		s.changed()
	}
	return in, nil
}
