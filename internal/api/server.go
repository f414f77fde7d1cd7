package api

import (
	"github.com/bahar-app/bahar/internal/services"
	"github.com/bahar-app/bahar/internal/syncqueue"
)

// Server holds the service dependencies of the HTTP surface.
type Server struct {
	ReviewService   services.ReviewService
	DeckService     services.DeckService
	EntryService    services.EntryService
	SettingsService services.SettingsService
	SyncRunner      *syncqueue.Runner
}
