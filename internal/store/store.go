package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

// Path returns the file the store was opened from.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction. Every statement of fn must go through tx:
// the pool holds a single connection, so s.db would block until commit.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS Rate (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT    NOT NULL DEFAULT '',
		value       REAL    NOT NULL DEFAULT 0,
		by_default  INTEGER NOT NULL DEFAULT 0,
		type        TEXT    NOT NULL DEFAULT 'shift',
		hours       INTEGER NOT NULL DEFAULT 8,
		state       INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS Bonus (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT    NOT NULL DEFAULT '',
		value       REAL    NOT NULL DEFAULT 0,
		by_default  INTEGER NOT NULL DEFAULT 0,
		state       INTEGER NOT NULL DEFAULT 1,
		type        TEXT    NOT NULL DEFAULT 'fix'
	);

	CREATE TABLE IF NOT EXISTS Rework (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		value       REAL    NOT NULL DEFAULT 0,
		type        TEXT    NOT NULL DEFAULT 'percent'
	);

	CREATE TABLE IF NOT EXISTS Work (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		name            TEXT    NOT NULL DEFAULT '',
		start_datetime  TEXT    NOT NULL,
		end_datetime    TEXT    NOT NULL,
		hours           INTEGER NOT NULL DEFAULT 0,
		rate_id         INTEGER NOT NULL REFERENCES Rate(id),
		rework_id       INTEGER REFERENCES Rework(id) ON DELETE SET NULL,
		value           REAL    NOT NULL DEFAULT 0,
		json            TEXT    NOT NULL DEFAULT '',
		state           INTEGER NOT NULL DEFAULT 1,
		description     TEXT    NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_work_start ON Work(start_datetime);
	CREATE INDEX IF NOT EXISTS idx_work_end   ON Work(end_datetime);

	CREATE TABLE IF NOT EXISTS Work_Bonus (
		work_id      INTEGER NOT NULL REFERENCES Work(id) ON DELETE CASCADE,
		bonus_id     INTEGER NOT NULL REFERENCES Bonus(id) ON DELETE CASCADE,
		on_full_sum  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (work_id, bonus_id)
	);

	CREATE TABLE IF NOT EXISTS Setting (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO Setting (key, value) VALUES
		('locale',   'en'),
		('currency', 'RUB');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/workway/workway.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "workway", "workway.db"), nil
}
