package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/avast/retry-go"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bahar-app/bahar/internal/apperr"
	"github.com/bahar-app/bahar/internal/logger"
	"github.com/bahar-app/bahar/internal/remote"
)

// Store wraps the local replica database and its remote authority. All
// repositories run their queries through the embedded *sql.DB; Push/Pull and
// ApplyRequiredMigrations keep it consistent with the remote.
type Store struct {
	*sql.DB
	remote remote.API
	userID string
	log    *logger.Logger
}

// Options configures opening the local replica.
type Options struct {
	DataDir string
	UserID  string
}

// Open fetches connection info from the remote authority and opens the local
// replica file it names. If the held access token is rejected, it refreshes
// the token exactly once and retries once; a second failure is surfaced and
// never retried further.
func Open(ctx context.Context, api remote.API, opts Options) (*Store, error) {
	log := logger.FromContext(ctx).WithPrefix("store")

	var info remote.ConnectionInfo
	var refreshErr error
	err := retry.Do(
		func() error {
			if refreshErr != nil {
				// A failed refresh means the held token is still stale;
				// another attempt cannot succeed.
				return retry.Unrecoverable(refreshErr)
			}
			var err error
			info, err = api.ConnectionInfo(ctx, opts.UserID)
			return err
		},
		retry.Attempts(2),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return refreshErr == nil && apperr.IsKind(err, apperr.KindTokenRejected)
		}),
		retry.OnRetry(func(_ uint, err error) {
			log.Warn("access token rejected, refreshing once: %v", err)
			if _, rerr := api.RefreshToken(ctx, opts.UserID); rerr != nil {
				refreshErr = rerr
			}
		}),
	)
	if refreshErr != nil {
		log.Error("token refresh failed: %v", refreshErr)
		return nil, refreshErr
	}
	if err != nil {
		log.Error("failed to connect to remote authority: %v", err)
		return nil, err
	}

	path := filepath.Join(opts.DataDir, info.DBName+".db")
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL", path)
	log.Info("opening local replica: %s", path)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Error("failed to open local replica: %v", err)
		return nil, apperr.ConnectionFailed("open local replica", err)
	}
	sqlDB.SetMaxOpenConns(1) // SQLite single-writer

	s := New(sqlDB, api, opts.UserID)
	if err := s.ensureInternalTables(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("local replica ready")
	return s, nil
}

// New wraps an already-open database. Used by Open and by tests.
func New(db *sql.DB, api remote.API, userID string) *Store {
	return &Store{
		DB:     db,
		remote: api,
		userID: userID,
		log:    logger.Default().WithPrefix("store"),
	}
}

// ensureInternalTables creates the bookkeeping tables the adapter itself
// owns. Domain tables arrive through remote migrations.
func (s *Store) ensureInternalTables(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS migrations (
    version INTEGER PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    applied_at TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('applied', 'failed'))
);
CREATE TABLE IF NOT EXISTS sync_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    last_pulled_ms INTEGER NOT NULL DEFAULT 0,
    last_pushed_ms INTEGER NOT NULL DEFAULT 0
);
`
	if _, err := s.ExecContext(ctx, ddl); err != nil {
		return apperr.ConnectionFailed("initialize bookkeeping tables", err)
	}
	return nil
}

// Exec runs a (possibly multi-statement) SQL script against the local store.
func (s *Store) Exec(ctx context.Context, script string) error {
	_, err := s.ExecContext(ctx, script)
	return err
}

// InTx runs fn inside a transaction, rolling back on error.
func (s *Store) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		s.log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		s.log.Debug("transaction rolled back: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		s.log.Error("failed to commit transaction: %v", err)
		return err
	}
	return nil
}
