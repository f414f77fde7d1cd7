package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bahar-app/bahar/internal/apperr"
	"github.com/bahar-app/bahar/internal/logger"
	"github.com/bahar-app/bahar/internal/models"
)

// LocalSchemaVersion reports the highest migration version recorded as
// applied. A missing or empty migrations table means a fresh database and
// reports 0.
func (s *Store) LocalSchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM migrations WHERE status = 'applied'`,
	).Scan(&version)
	if err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

func (s *Store) appliedVersions(ctx context.Context) (map[int]bool, error) {
	applied := map[int]bool{}
	rows, err := s.QueryContext(ctx, `SELECT version FROM migrations WHERE status = 'applied'`)
	if err != nil {
		if isMissingTable(err) {
			return applied, nil
		}
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// ApplyRequiredMigrations fetches the full migration catalog from the remote
// authority and applies every version not yet applied locally, in ascending
// order. A failure is recorded durably and halts the run; re-running resumes
// from the last applied version.
func (s *Store) ApplyRequiredMigrations(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("migrate")

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return apperr.Internal(err)
	}

	catalog, err := s.remote.Migrations(ctx)
	if err != nil {
		log.Error("failed to fetch migration catalog: %v", err)
		return err
	}

	log.Debug("catalog has %d migrations, %d applied locally", len(catalog), len(applied))
	return s.applyPending(ctx, catalog, applied)
}

// VerifyAndApply is the incremental variant: it asks the remote whether the
// local version is current and applies only the returned delta.
func (s *Store) VerifyAndApply(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("migrate")

	version, err := s.LocalSchemaVersion(ctx)
	if err != nil {
		return apperr.Internal(err)
	}
	check, err := s.remote.VerifySchema(ctx, version)
	if err != nil {
		return err
	}
	if check.Status != "update_required" {
		log.Debug("schema up to date at version %d", version)
		return nil
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return apperr.Internal(err)
	}
	return s.applyPending(ctx, check.RequiredMigrations, applied)
}

// applyPending applies pending catalog entries in ascending version order,
// deduplicating by version number. Fail-fast: later migrations are never
// attempted in the same run after a failure.
func (s *Store) applyPending(ctx context.Context, catalog []models.Migration, applied map[int]bool) error {
	log := logger.FromContext(ctx).WithPrefix("migrate")

	pending := make([]models.Migration, 0, len(catalog))
	seen := map[int]bool{}
	for _, m := range catalog {
		if applied[m.Version] || seen[m.Version] {
			continue
		}
		seen[m.Version] = true
		pending = append(pending, m)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, m := range pending {
		log.Info("applying migration %d: %s", m.Version, m.Description)
		if err := s.Exec(ctx, m.Script); err != nil {
			log.Error("migration %d failed: %v", m.Version, err)
			if recErr := s.recordMigration(ctx, m, models.MigrationFailed); recErr != nil {
				log.Error("failed to record migration failure: %v", recErr)
			}
			return apperr.MigrationFailed(m.Version, err)
		}
		if err := s.recordMigration(ctx, m, models.MigrationApplied); err != nil {
			return apperr.MigrationFailed(m.Version, err)
		}
		log.Info("migration %d applied", m.Version)
	}
	return nil
}

// recordMigration durably records the outcome of one migration. Upserts on
// version so a retried migration overwrites its earlier failed row.
func (s *Store) recordMigration(ctx context.Context, m models.Migration, status models.MigrationStatus) error {
	_, err := s.ExecContext(ctx, `
INSERT INTO migrations (version, description, applied_at, status)
VALUES (?, ?, ?, ?)
ON CONFLICT (version) DO UPDATE SET description = excluded.description, applied_at = excluded.applied_at, status = excluded.status
`, m.Version, m.Description, time.Now().UTC().Format(time.RFC3339), string(status))
	return err
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
