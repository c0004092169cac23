package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate_UpgradePath_AddsEstimateColumns simulates a database created
// before estimates were cached alongside nodes.
func TestMigrate_UpgradePath_AddsEstimateColumns(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	legacy := []string{
		`CREATE TABLE projects (
			name            TEXT PRIMARY KEY,
			created_at      TEXT NOT NULL,
			last_updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE nodes (
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
		`INSERT INTO projects (name, created_at, last_updated_at)
			VALUES ('Legacy', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`,
		`INSERT INTO nodes (project_name, id, kind, title, effort_hours)
			VALUES ('Legacy', 'n1', 'task', 'Old task', 3.5)`,
	}
	for i, stmt := range legacy {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "legacy statement %d failed", i)
	}

	require.NoError(t, Migrate(db), "migration on legacy schema should succeed")

	var title string
	var hours float64
	var p95 sql.NullFloat64
	err = db.QueryRow(`SELECT title, effort_hours, estimate_p95 FROM nodes WHERE id = 'n1'`).Scan(&title, &hours, &p95)
	require.NoError(t, err)
	assert.Equal(t, "Old task", title, "node should survive migration")
	assert.Equal(t, 3.5, hours)
	assert.False(t, p95.Valid, "new estimate columns default to NULL")

	var edgesTable string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='edges'`).Scan(&edgesTable)
	require.NoError(t, err)
}
