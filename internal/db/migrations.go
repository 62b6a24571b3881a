package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT NOT NULL UNIQUE,
			difficulty    REAL NOT NULL CHECK(difficulty >= 0),
			duration      REAL NOT NULL CHECK(duration > 0),
			priority      REAL,
			fixed_day     INTEGER CHECK(fixed_day BETWEEN 0 AND 6),
			fixed_hour    INTEGER,
			fixed_minute  INTEGER,
			dependencies  TEXT NOT NULL DEFAULT '[]',
			created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			status        TEXT NOT NULL CHECK(status IN ('complete', 'timed_out', 'cancelled')),
			total_fatigue REAL NOT NULL,
			task_count    INTEGER NOT NULL,
			unplaced      INTEGER NOT NULL,
			nodes         INTEGER NOT NULL,
			export        TEXT NOT NULL,
			created_at    DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
