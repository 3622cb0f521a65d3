package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS courses (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			location         TEXT NOT NULL DEFAULT '',
			instructor       TEXT NOT NULL DEFAULT '',
			day_of_week      INTEGER NOT NULL,
			slot_code        TEXT NOT NULL,
			weeks            TEXT NOT NULL DEFAULT 'all',
			reminder_enabled INTEGER NOT NULL DEFAULT 0,
			contact          TEXT NOT NULL DEFAULT '',
			property         TEXT NOT NULL DEFAULT '',
			remarks          TEXT NOT NULL DEFAULT '',
			created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_courses_day ON courses(day_of_week);
		CREATE INDEX IF NOT EXISTS idx_courses_reminder ON courses(reminder_enabled);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating courses table: %w", err)
	}

	return nil
}
