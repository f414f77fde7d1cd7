package testutil

import (
	"database/sql"
	"embed"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// SchemaScripts returns the catalog schema scripts in order, for tests that
// drive the migration applier with the real schema.
func SchemaScripts(t *testing.T) []string {
	entries, err := schemaFS.ReadDir("schema")
	require.NoError(t, err)

	scripts := make([]string, 0, len(entries))
	for _, e := range entries {
		b, err := schemaFS.ReadFile("schema/" + e.Name())
		require.NoError(t, err)
		scripts = append(scripts, string(b))
	}
	return scripts
}

// NewTestDB creates an in-memory SQLite database with the full schema
// applied. Foreign keys are on so cascade deletes behave as in production.
func NewTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	for _, script := range SchemaScripts(t) {
		_, err = db.Exec(script)
		require.NoError(t, err)
	}
	return db
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
