package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eventdesk/eventdesk/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SnapshotFile is the database file name inside the config directory.
const SnapshotFile = "snapshot.db"

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no saved snapshot")

const (
	metaSavedAt              = "saved_at"
	metaEventsLoadedAt       = "events_loaded_at"
	metaParticipantsLoadedAt = "participants_loaded_at"
)

// SnapshotStore persists the last loaded collections in SQLite so the
// dashboard can be rendered without network access.
type SnapshotStore struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// OpenSnapshotStore opens (creating if needed) the snapshot database in dir.
func OpenSnapshotStore(dir string, logger zerolog.Logger) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}

	dbPath := filepath.Join(dir, SnapshotFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SnapshotStore{
		db:     db,
		path:   dbPath,
		logger: logger.With().Str("component", "snapshot_store").Logger(),
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	store.logger.Debug().Str("path", dbPath).Msg("snapshot database opened")
	return store, nil
}

func (s *SnapshotStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS events (
			position INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			cancelled INTEGER NOT NULL DEFAULT 0,
			starts_at TEXT,
			payload TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS participants (
			position INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			organizer INTEGER NOT NULL DEFAULT 0,
			payload TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS snapshot_metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Save replaces the stored snapshot in a single transaction.
func (s *SnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	for i, e := range snap.Events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", e.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO events (position, id, cancelled, starts_at, payload) VALUES (?, ?, ?, ?, ?)`,
			i, e.ID, e.Cancelled, nullTime(e.Date.Time), string(payload),
		)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM participants`); err != nil {
		return fmt.Errorf("clear participants: %w", err)
	}
	for i, p := range snap.Participants {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal participant %s: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO participants (position, id, organizer, payload) VALUES (?, ?, ?, ?)`,
			i, p.ID, p.Organizer, string(payload),
		)
		if err != nil {
			return fmt.Errorf("insert participant %s: %w", p.ID, err)
		}
	}

	meta := map[string]time.Time{
		metaSavedAt:              time.Now(),
		metaEventsLoadedAt:       snap.EventsLoadedAt,
		metaParticipantsLoadedAt: snap.ParticipantsLoadedAt,
	}
	for key, at := range meta {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_metadata (key, value, updated_at) VALUES (?, ?, datetime('now'))
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, formatTime(at))
		if err != nil {
			return fmt.Errorf("set metadata %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	s.logger.Debug().
		Int("events", len(snap.Events)).
		Int("participants", len(snap.Participants)).
		Msg("snapshot saved")
	return nil
}

// Load returns the stored snapshot and the time it was saved.
func (s *SnapshotStore) Load(ctx context.Context) (Snapshot, time.Time, error) {
	meta, err := s.metadata(ctx)
	if err != nil {
		return Snapshot{}, time.Time{}, err
	}
	savedAt, ok := meta[metaSavedAt]
	if !ok {
		return Snapshot{}, time.Time{}, ErrNoSnapshot
	}

	snap := Snapshot{
		EventsLoadedAt:       meta[metaEventsLoadedAt],
		ParticipantsLoadedAt: meta[metaParticipantsLoadedAt],
	}

	snap.Events, err = loadRows[models.Event](ctx, s.db, `SELECT payload FROM events ORDER BY position`)
	if err != nil {
		return Snapshot{}, time.Time{}, fmt.Errorf("load events: %w", err)
	}
	snap.Participants, err = loadRows[models.Participant](ctx, s.db, `SELECT payload FROM participants ORDER BY position`)
	if err != nil {
		return Snapshot{}, time.Time{}, fmt.Errorf("load participants: %w", err)
	}

	return snap, savedAt, nil
}

// Close closes the database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

func (s *SnapshotStore) metadata(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM snapshot_metadata`)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]time.Time)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		meta[key] = parseTime(value)
	}
	return meta, rows.Err()
}

func loadRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(models.LocalTimeLayout), Valid: true}
}
