package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Change describes one key written to the store since a given revision.
type Change struct {
	Key    string `db:"key"`
	Rev    int64  `db:"rev"`
	Writer string `db:"writer"`
}

// SQLiteStore implements the KV facade on a local SQLite database. Each
// logical collection is one JSON blob in the kv table; every write bumps
// a global revision and records the writing handle's token so a Watcher
// can deliver change events to other handles only.
type SQLiteStore struct {
	db     *sqlx.DB
	writer string
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, enables
// WAL mode, and runs any pending schema migrations. Each store handle
// gets a unique writer token.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		writer: uuid.New().String(),
		logger: logger,
	}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WriterToken identifies this handle in change records.
func (s *SQLiteStore) WriterToken() string {
	return s.writer
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Read unmarshals the value stored under key into out. A missing row, a
// removed value, or malformed JSON all read as absent; malformed JSON is
// additionally logged.
func (s *SQLiteStore) Read(key string, out any) bool {
	var value sql.NullString
	err := s.db.Get(&value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		s.logger.Warn("reading key failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !value.Valid {
		return false
	}

	if err := json.Unmarshal([]byte(value.String), out); err != nil {
		s.logger.Warn("stored value is not valid JSON, treating as absent",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}

	return true
}

// Write marshals value and stores it under key. Failures are logged and
// swallowed: callers keep their in-memory state either way.
func (s *SQLiteStore) Write(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("marshaling value failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := s.put(key, string(raw)); err != nil {
		s.logger.Warn("writing key failed", zap.String("key", key), zap.Error(err))
	}
}

// Remove deletes the value under key. The row is kept with a NULL value
// so that the removal is observable as a change by other handles.
func (s *SQLiteStore) Remove(key string) {
	tx, err := s.db.Beginx()
	if err != nil {
		s.logger.Warn("removing key failed", zap.String("key", key), zap.Error(err))
		return
	}
	defer tx.Rollback()

	rev, err := nextRev(tx)
	if err != nil {
		s.logger.Warn("removing key failed", zap.String("key", key), zap.Error(err))
		return
	}

	_, err = tx.Exec(`
		INSERT INTO kv (key, value, rev, writer, updated_at)
		VALUES (?, NULL, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = NULL, rev = excluded.rev, writer = excluded.writer,
			updated_at = CURRENT_TIMESTAMP`,
		key, rev, s.writer,
	)
	if err != nil {
		s.logger.Warn("removing key failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := tx.Commit(); err != nil {
		s.logger.Warn("removing key failed", zap.String("key", key), zap.Error(err))
	}
}

// put stores raw JSON under key inside a single transaction that also
// bumps the global revision counter.
func (s *SQLiteStore) put(key, raw string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rev, err := nextRev(tx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO kv (key, value, rev, writer, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value, rev = excluded.rev, writer = excluded.writer,
			updated_at = CURRENT_TIMESTAMP`,
		key, raw, rev, s.writer,
	)
	if err != nil {
		return fmt.Errorf("upserting key %s: %w", key, err)
	}

	return tx.Commit()
}

// nextRev increments and returns the global revision counter.
func nextRev(tx *sqlx.Tx) (int64, error) {
	if _, err := tx.Exec("UPDATE kv_rev SET rev = rev + 1 WHERE id = 1"); err != nil {
		return 0, fmt.Errorf("bumping revision: %w", err)
	}

	var rev int64
	if err := tx.Get(&rev, "SELECT rev FROM kv_rev WHERE id = 1"); err != nil {
		return 0, fmt.Errorf("reading revision: %w", err)
	}

	return rev, nil
}

// CurrentRev returns the latest global revision.
func (s *SQLiteStore) CurrentRev() (int64, error) {
	var rev int64
	if err := s.db.Get(&rev, "SELECT rev FROM kv_rev WHERE id = 1"); err != nil {
		return 0, fmt.Errorf("reading revision: %w", err)
	}
	return rev, nil
}

// ChangesSince returns the keys whose latest write happened after rev,
// oldest first. Multiple writes to the same key coalesce into its most
// recent revision.
func (s *SQLiteStore) ChangesSince(rev int64) ([]Change, error) {
	var changes []Change
	err := s.db.Select(&changes,
		"SELECT key, rev, writer FROM kv WHERE rev > ? ORDER BY rev ASC", rev,
	)
	if err != nil {
		return nil, fmt.Errorf("querying changes since rev %d: %w", rev, err)
	}
	return changes, nil
}
