package server

import "fmt"

// migrate runs database migrations.
func (s *Store) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS subjects (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			name  TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			kind  TEXT NOT NULL DEFAULT 'person' CHECK(kind IN ('person', 'project'))
		);

		CREATE TABLE IF NOT EXISTS projects (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			name   TEXT NOT NULL,
			color  TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'pipeline', 'archived'))
		);

		CREATE TABLE IF NOT EXISTS allocations (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			subject_id    INTEGER NOT NULL REFERENCES subjects(id),
			project_id    INTEGER REFERENCES projects(id),
			kind          TEXT NOT NULL CHECK(kind IN ('project', 'sla', 'misc')),
			title         TEXT NOT NULL DEFAULT '',
			start_date    DATE NOT NULL,
			end_date      DATE NOT NULL,
			days_per_week REAL NOT NULL DEFAULT 5,
			notes         TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS leave_entries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			subject_id INTEGER NOT NULL REFERENCES subjects(id),
			start_date DATE NOT NULL,
			end_date   DATE NOT NULL,
			days_count INTEGER NOT NULL,
			status     TEXT NOT NULL DEFAULT 'requested' CHECK(status IN ('requested', 'approved'))
		);

		CREATE TABLE IF NOT EXISTS markers (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			subject_id  INTEGER REFERENCES subjects(id),
			date        DATE NOT NULL,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color       TEXT NOT NULL DEFAULT '',
			kind        TEXT NOT NULL DEFAULT 'note' CHECK(kind IN ('holiday', 'deadline', 'milestone', 'note'))
		);

		CREATE INDEX IF NOT EXISTS idx_allocations_range ON allocations(start_date, end_date);
		CREATE INDEX IF NOT EXISTS idx_allocations_subject ON allocations(subject_id);
		CREATE INDEX IF NOT EXISTS idx_leave_range ON leave_entries(start_date, end_date);
		CREATE INDEX IF NOT EXISTS idx_markers_date ON markers(date);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
