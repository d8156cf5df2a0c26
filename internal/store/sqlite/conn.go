package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a SQLite database at the given path and enables WAL
// journal mode. The URI parameter gives better concurrency for the read-heavy
// evaluation workload.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Profiles (
            UserId TEXT PRIMARY KEY,
            DisplayName TEXT,
            TimeZone TEXT NOT NULL,
            Plan TEXT NOT NULL,
            SleepTime TEXT,
            CreationTime TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS Schedules (
            UserId TEXT NOT NULL,
            ScheduleId TEXT NOT NULL,
            Text TEXT NOT NULL,
            StartTime TEXT,
            EndTime TEXT,
            SpecificDate TEXT,
            DaysOfWeek TEXT,
            Completed BOOLEAN NOT NULL DEFAULT 0,
            Color TEXT,
            CreationTime TIMESTAMP NOT NULL,
            PRIMARY KEY(UserId, ScheduleId)
        );`,
		`CREATE INDEX IF NOT EXISTS Schedules_UserDate_Idx ON Schedules(UserId, SpecificDate);`,
		`CREATE TABLE IF NOT EXISTS Goals (
            UserId TEXT NOT NULL,
            GoalId TEXT NOT NULL,
            Text TEXT NOT NULL,
            Completed BOOLEAN NOT NULL DEFAULT 0,
            TargetDate TEXT,
            DoneAt TIMESTAMP,
            CreationTime TIMESTAMP NOT NULL,
            PRIMARY KEY(UserId, GoalId)
        );`,
		`CREATE TABLE IF NOT EXISTS Lifecycle (
            UserId TEXT NOT NULL,
            Key TEXT NOT NULL,
            Value TEXT NOT NULL,
            UpdateTime TIMESTAMP NOT NULL,
            PRIMARY KEY(UserId, Key)
        );`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
