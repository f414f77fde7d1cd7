package models

import "time"

// MigrationStatus records the durable outcome of a migration run.
type MigrationStatus string

const (
	MigrationApplied MigrationStatus = "applied"
	MigrationPending MigrationStatus = "pending"
	MigrationFailed  MigrationStatus = "failed"
)

// Migration is a versioned, ordered schema change. Version is the primary
// ordering key; Script is opaque SQL executed against the local store.
type Migration struct {
	Version     int             `json:"version"`
	Description string          `json:"description"`
	Script      string          `json:"sql_script"`
	AppliedAt   time.Time       `json:"applied_at,omitempty"`
	Status      MigrationStatus `json:"status,omitempty"`
}
