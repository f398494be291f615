package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iglide21/BabyBuddy-sub001/internal"

	_ "modernc.org/sqlite"
)

// sqliteMigrations are idempotent and re-run on every open.
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS babies (
		id                    TEXT PRIMARY KEY,
		user_id               TEXT NOT NULL,
		name                  TEXT NOT NULL,
		birth_date            TEXT NOT NULL DEFAULT '',
		gender                TEXT NOT NULL DEFAULT '',
		weight_kg             REAL,
		height_cm             REAL,
		head_circumference_cm REAL,
		created_at            DATETIME NOT NULL,
		updated_at            DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_babies_user ON babies(user_id)`,
	`CREATE TABLE IF NOT EXISTS baby_profile_history (
		id                    TEXT PRIMARY KEY,
		baby_id               TEXT NOT NULL REFERENCES babies(id) ON DELETE CASCADE,
		changed_fields        TEXT NOT NULL,
		name                  TEXT,
		birth_date            TEXT,
		gender                TEXT,
		weight_kg             REAL,
		height_cm             REAL,
		head_circumference_cm REAL,
		created_at            DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_profile_history_baby ON baby_profile_history(baby_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS feedings (
		id               TEXT PRIMARY KEY,
		baby_id          TEXT NOT NULL REFERENCES babies(id) ON DELETE CASCADE,
		kind             TEXT NOT NULL,
		side             TEXT NOT NULL DEFAULT '',
		amount_ml        REAL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		sessions         TEXT NOT NULL DEFAULT '[]',
		start_at         DATETIME NOT NULL,
		notes            TEXT NOT NULL DEFAULT '',
		created_at       DATETIME NOT NULL,
		updated_at       DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedings_baby ON feedings(baby_id, start_at)`,
	`CREATE TABLE IF NOT EXISTS sleeps (
		id               TEXT PRIMARY KEY,
		baby_id          TEXT NOT NULL REFERENCES babies(id) ON DELETE CASCADE,
		start_at         DATETIME NOT NULL,
		end_at           DATETIME,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		notes            TEXT NOT NULL DEFAULT '',
		created_at       DATETIME NOT NULL,
		updated_at       DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sleeps_baby ON sleeps(baby_id, start_at)`,
	`CREATE TABLE IF NOT EXISTS diapers (
		id          TEXT PRIMARY KEY,
		baby_id     TEXT NOT NULL REFERENCES babies(id) ON DELETE CASCADE,
		kind        TEXT NOT NULL,
		occurred_at DATETIME NOT NULL,
		notes       TEXT NOT NULL DEFAULT '',
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_diapers_baby ON diapers(baby_id, occurred_at)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id         TEXT PRIMARY KEY,
		baby_id    TEXT NOT NULL REFERENCES babies(id) ON DELETE CASCADE,
		title      TEXT NOT NULL,
		notes      TEXT NOT NULL DEFAULT '',
		remind_at  DATETIME NOT NULL,
		done       BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_baby ON reminders(baby_id, remind_at)`,
	`CREATE TABLE IF NOT EXISTS baby_measurements (
		id                    TEXT PRIMARY KEY,
		baby_id               TEXT NOT NULL REFERENCES babies(id) ON DELETE CASCADE,
		weight_kg             REAL,
		height_cm             REAL,
		head_circumference_cm REAL,
		measured_at           DATETIME NOT NULL,
		created_at            DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_measurements_baby ON baby_measurements(baby_id, measured_at)`,
}

// OpenSQLite opens a SQLite database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	// Pragmas in the DSN are applied to every new connection.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting: %w", err)
	}
	if err := MigrateSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func MigrateSQLite(db *sql.DB) error {
	for i, stmt := range sqliteMigrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

func NewSQLiteStorage(path string, logger internal.Logger) (*SQLStore, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		logger.Errorf("storage: failed to open sqlite %s: %v", path, err)
		return nil, err
	}
	logger.Infof("storage: sqlite ready at %s", path)
	return newSQLStore(db, sqliteDialect, NewTxUnitOfWork(db), logger), nil
}

// NewSQLiteStorageWithUoW is NewSQLiteStorage with a caller supplied unit
// of work, used to inject transaction failures.
func NewSQLiteStorageWithUoW(db *sql.DB, uow UnitOfWork, logger internal.Logger) *SQLStore {
	return newSQLStore(db, sqliteDialect, uow, logger)
}
