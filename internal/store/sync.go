package store

import (
	"context"
	"database/sql"

	"github.com/bahar-app/bahar/internal/logger"
	"github.com/bahar-app/bahar/internal/remote"
	"github.com/bahar-app/bahar/internal/repository/sqlite"
)

// Sync watermarks. Pull advances on the server clock, push on the highest
// local updated_at_ms uploaded; replaying either side is a no-op because
// every upsert is last-write-wins.
type syncState struct {
	lastPulledMS int64
	lastPushedMS int64
}

func (s *Store) readSyncState(ctx context.Context) (syncState, error) {
	var st syncState
	err := s.QueryRowContext(ctx,
		`SELECT last_pulled_ms, last_pushed_ms FROM sync_state WHERE id = 1`).
		Scan(&st.lastPulledMS, &st.lastPushedMS)
	if err == sql.ErrNoRows {
		return syncState{}, nil
	}
	return st, err
}

func writeSyncState(ctx context.Context, tx *sql.Tx, st syncState) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO sync_state (id, last_pulled_ms, last_pushed_ms)
VALUES (1, ?, ?)
ON CONFLICT (id) DO UPDATE SET last_pulled_ms = excluded.last_pulled_ms, last_pushed_ms = excluded.last_pushed_ms
`, st.lastPulledMS, st.lastPushedMS)
	return err
}

// Pull fetches records changed on the remote since the pull watermark and
// applies them locally. Safe to call redundantly: an already-applied
// changeset upserts to nothing and the watermark only advances on success.
func (s *Store) Pull(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("sync")

	st, err := s.readSyncState(ctx)
	if err != nil {
		return err
	}

	cs, err := s.remote.PullChanges(ctx, s.userID, st.lastPulledMS)
	if err != nil {
		log.Warn("pull failed: %v", err)
		return err
	}
	if cs.Empty() && cs.ServerMS <= st.lastPulledMS {
		log.Debug("pull: nothing to apply")
		return nil
	}

	log.Debug("pull: applying %d entries, %d cards, %d decks",
		len(cs.Entries), len(cs.Flashcards), len(cs.Decks))

	err = s.InTx(ctx, func(tx *sql.Tx) error {
		entries := sqlite.NewEntryRepository(tx)
		for _, e := range cs.Entries {
			if err := entries.Upsert(ctx, e); err != nil {
				return err
			}
		}
		cards := sqlite.NewFlashcardRepository(tx)
		for _, c := range cs.Flashcards {
			if err := cards.Upsert(ctx, c); err != nil {
				return err
			}
		}
		decks := sqlite.NewDeckRepository(tx)
		for _, d := range cs.Decks {
			if err := decks.Upsert(ctx, d); err != nil {
				return err
			}
		}
		if cs.Settings != nil {
			settings := sqlite.NewSettingsRepository(tx)
			current, err := settings.Get(ctx)
			if err != nil {
				return err
			}
			if cs.Settings.UpdatedAtMS > current.UpdatedAtMS {
				if err := settings.Upsert(ctx, *cs.Settings); err != nil {
					return err
				}
			}
		}
		st.lastPulledMS = cs.ServerMS
		return writeSyncState(ctx, tx, st)
	})
	if err != nil {
		log.Warn("pull apply failed: %v", err)
		return err
	}
	log.Info("pull complete, watermark=%d", st.lastPulledMS)
	return nil
}

// Push uploads every local record changed since the push watermark. Safe to
// call redundantly: re-sending an already-acknowledged batch is absorbed by
// the remote's last-write-wins upserts.
func (s *Store) Push(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("sync")

	st, err := s.readSyncState(ctx)
	if err != nil {
		return err
	}

	var cs remote.Changeset
	maxMS := st.lastPushedMS

	entries, err := sqlite.NewEntryRepository(s.DB).ChangedSince(ctx, st.lastPushedMS)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.UpdatedAtMS > maxMS {
			maxMS = e.UpdatedAtMS
		}
	}
	cs.Entries = entries

	cards, err := sqlite.NewFlashcardRepository(s.DB).ChangedSince(ctx, st.lastPushedMS)
	if err != nil {
		return err
	}
	for _, c := range cards {
		if c.UpdatedAtMS > maxMS {
			maxMS = c.UpdatedAtMS
		}
	}
	cs.Flashcards = cards

	decks, err := sqlite.NewDeckRepository(s.DB).ChangedSince(ctx, st.lastPushedMS)
	if err != nil {
		return err
	}
	for _, d := range decks {
		if d.UpdatedAtMS > maxMS {
			maxMS = d.UpdatedAtMS
		}
	}
	cs.Decks = decks

	settings, err := sqlite.NewSettingsRepository(s.DB).ChangedSince(ctx, st.lastPushedMS)
	if err != nil {
		return err
	}
	if settings != nil {
		cs.Settings = settings
		if settings.UpdatedAtMS > maxMS {
			maxMS = settings.UpdatedAtMS
		}
	}

	if cs.Empty() {
		log.Debug("push: nothing changed")
		return nil
	}

	ack, err := s.remote.PushChanges(ctx, s.userID, cs)
	if err != nil {
		log.Warn("push failed: %v", err)
		return err
	}

	err = s.InTx(ctx, func(tx *sql.Tx) error {
		st.lastPushedMS = maxMS
		return writeSyncState(ctx, tx, st)
	})
	if err != nil {
		return err
	}
	log.Info("push complete: %d entries, %d cards, %d decks, server_ms=%d",
		len(cs.Entries), len(cs.Flashcards), len(cs.Decks), ack)
	return nil
}
