package remote

import (
	"context"

	"github.com/bahar-app/bahar/internal/models"
)

// ConnectionInfo carries the credentials for opening the local replica.
type ConnectionInfo struct {
	Hostname    string `json:"hostname"`
	AccessToken string `json:"access_token"`
	DBName      string `json:"db_name"`
}

// SchemaCheck is the incremental migration verdict for a local version.
type SchemaCheck struct {
	Status             string             `json:"status"` // "latest" or "update_required"
	RequiredMigrations []models.Migration `json:"required_migrations,omitempty"`
}

// Changeset is the unit of replica synchronization: every record changed
// since a watermark, in model form.
type Changeset struct {
	Entries    []models.DictionaryEntry `json:"entries,omitempty"`
	Flashcards []models.Flashcard       `json:"flashcards,omitempty"`
	Decks      []models.Deck            `json:"decks,omitempty"`
	Settings   *models.Settings         `json:"settings,omitempty"`
	ServerMS   int64                    `json:"server_ms"`
}

// Empty reports whether the changeset carries no records.
func (c Changeset) Empty() bool {
	return len(c.Entries) == 0 && len(c.Flashcards) == 0 && len(c.Decks) == 0 && c.Settings == nil
}

// API is the remote authority surface the core consumes.
type API interface {
	ConnectionInfo(ctx context.Context, userID string) (ConnectionInfo, error)
	RefreshToken(ctx context.Context, userID string) (string, error)
	Migrations(ctx context.Context) ([]models.Migration, error)
	VerifySchema(ctx context.Context, localVersion int) (SchemaCheck, error)
	PullChanges(ctx context.Context, userID string, sinceMS int64) (Changeset, error)
	PushChanges(ctx context.Context, userID string, cs Changeset) (int64, error)
}
