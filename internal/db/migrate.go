package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		name            TEXT PRIMARY KEY,
		created_at      TEXT NOT NULL,
		last_updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_updated ON projects(last_updated_at)`,

	`CREATE TABLE IF NOT EXISTS nodes (
		project_name      TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
		id                TEXT NOT NULL,
		kind              TEXT NOT NULL CHECK(kind IN ('project','task')),
		title             TEXT NOT NULL DEFAULT '',
		description       TEXT NOT NULL DEFAULT '',
		effort_hours      REAL NOT NULL DEFAULT 0 CHECK(effort_hours >= 0),
		last_manual_hours REAL,
		order_index       INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (project_name, id)
	)`,

	`CREATE TABLE IF NOT EXISTS edges (
		project_name TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
		source_id    TEXT NOT NULL,
		target_id    TEXT NOT NULL,
		order_index  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (project_name, source_id, target_id),
		FOREIGN KEY (project_name, source_id) REFERENCES nodes(project_name, id) ON DELETE CASCADE,
		FOREIGN KEY (project_name, target_id) REFERENCES nodes(project_name, id) ON DELETE CASCADE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(project_name, target_id)`,

	// Cached estimates so collaborators can read a snapshot without recomputing.
	`ALTER TABLE nodes ADD COLUMN estimate_p70 REAL`,
	`ALTER TABLE nodes ADD COLUMN estimate_p95 REAL`,
	`ALTER TABLE nodes ADD COLUMN estimate_p99 REAL`,
}
