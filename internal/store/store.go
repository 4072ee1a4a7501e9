// Package store is the client-side local database: every entity the
// teacher records lives here first, and every mutation leaves a pending
// change in the sync queue until a push succeeds.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/profpocket/pocket-api/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS professor (
    id         TEXT PRIMARY KEY,
    updated_at INTEGER NOT NULL,
    data       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schools (
    id         TEXT PRIMARY KEY,
    updated_at INTEGER NOT NULL,
    data       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS classes (
    id         TEXT PRIMARY KEY,
    school_id  TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    data       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS students (
    id         TEXT PRIMARY KEY,
    school_id  TEXT NOT NULL,
    class_id   TEXT NOT NULL DEFAULT '',
    updated_at INTEGER NOT NULL,
    data       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS lesson_logs (
    id         TEXT PRIMARY KEY,
    school_id  TEXT NOT NULL,
    class_id   TEXT NOT NULL,
    student_id TEXT NOT NULL DEFAULT '',
    updated_at INTEGER NOT NULL,
    data       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_queue (
    queue_key  TEXT PRIMARY KEY,
    entity     TEXT NOT NULL,
    entity_id  TEXT NOT NULL,
    op         TEXT NOT NULL,
    payload    TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_classes_school ON classes (school_id);
CREATE INDEX IF NOT EXISTS idx_students_school ON students (school_id);
CREATE INDEX IF NOT EXISTS idx_students_class ON students (class_id);
CREATE INDEX IF NOT EXISTS idx_logs_class ON lesson_logs (class_id);
CREATE INDEX IF NOT EXISTS idx_logs_student ON lesson_logs (student_id);
`

// Well-known kv keys.
const (
	KeyLastSyncAt = "lastSyncAt"
	KeyServerURL  = "serverUrl"
	KeyToken      = "token"
)

// Store wraps the local sqlite database.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens (creating if needed) the pocket database under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", filepath.Join(dataDir, "pocket.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// sqlite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// WithClock overrides the store clock, for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetKV returns the stored value for key, or "" when unset.
func (s *Store) GetKV(key string) (string, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetKV stores value under key, replacing any previous value.
func (s *Store) SetKV(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`, key, value)
	return err
}

// LastSyncAt returns the pull watermark in epoch milliseconds, zero when
// the device has never synced.
func (s *Store) LastSyncAt() (int64, error) {
	raw, err := s.GetKV(KeyLastSyncAt)
	if err != nil || raw == "" {
		return 0, err
	}
	var ms int64
	if _, err := fmt.Sscanf(raw, "%d", &ms); err != nil {
		return 0, fmt.Errorf("corrupt %s value %q: %w", KeyLastSyncAt, raw, err)
	}
	return ms, nil
}

// SetLastSyncAt advances the pull watermark.
func (s *Store) SetLastSyncAt(ms int64) error {
	return s.SetKV(KeyLastSyncAt, fmt.Sprintf("%d", ms))
}

// Queue returns every pending change, oldest first.
func (s *Store) Queue() ([]models.SyncChange, error) {
	rows, err := s.db.Queryx(`SELECT queue_key, entity, entity_id, op, payload, updated_at
		FROM sync_queue ORDER BY updated_at ASC, queue_key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SyncChange
	for rows.Next() {
		var (
			change  models.SyncChange
			payload string
		)
		if err := rows.Scan(&change.ID, &change.Entity, &change.EntityID, &change.Op, &payload, &change.UpdatedAt); err != nil {
			return nil, err
		}
		change.Payload = json.RawMessage(payload)
		out = append(out, change)
	}
	return out, rows.Err()
}

// RemoveFromQueue drops the queue entries whose keys the server accepted.
// Unknown keys are ignored.
func (s *Store) RemoveFromQueue(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if _, err := tx.Exec(`DELETE FROM sync_queue WHERE queue_key = ?`, key); err != nil {
			tx.Rollback() //nolint:errcheck
			return err
		}
	}
	return tx.Commit()
}

// enqueue records a pending change inside tx. The composite key makes a
// re-queue of the same entity within the same millisecond overwrite the
// previous entry.
func enqueue(tx *sqlx.Tx, entity models.EntityKind, entityID string, op models.ChangeOp, payload []byte, updatedAt int64) error {
	key := models.QueueKey(entity, entityID, updatedAt)
	_, err := tx.Exec(`INSERT OR REPLACE INTO sync_queue (queue_key, entity, entity_id, op, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, key, string(entity), entityID, string(op), string(payload), updatedAt)
	return err
}
