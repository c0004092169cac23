package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/mediantree/internal/db"
	"github.com/alexanderramin/mediantree/internal/domain"
)

// SQLiteSnapshotRepo implements SnapshotRepo using a SQLite database.
type SQLiteSnapshotRepo struct {
	db  *sql.DB
	uow db.UnitOfWork
	now func() time.Time
}

// NewSQLiteSnapshotRepo creates a new SQLiteSnapshotRepo.
func NewSQLiteSnapshotRepo(conn *sql.DB) *SQLiteSnapshotRepo {
	return NewSQLiteSnapshotRepoWithUoW(conn, db.NewSQLiteUnitOfWork(conn))
}

// NewSQLiteSnapshotRepoWithUoW creates a SQLiteSnapshotRepo whose writes run
// inside the given unit of work.
func NewSQLiteSnapshotRepoWithUoW(conn *sql.DB, uow db.UnitOfWork) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: conn, uow: uow, now: time.Now}
}

func (r *SQLiteSnapshotRepo) Save(ctx context.Context, name string, g *domain.Graph) error {
	if name == "" {
		return fmt.Errorf("snapshot name is required")
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid graph: %w", err)
	}
	now := formatTime(r.now())

	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO projects (name, created_at, last_updated_at) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET last_updated_at = excluded.last_updated_at`,
			name, now, now)
		if err != nil {
			return fmt.Errorf("upserting project: %w", err)
		}

		// Edges go with their nodes through the cascade.
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE project_name = ?`, name); err != nil {
			return fmt.Errorf("clearing nodes: %w", err)
		}

		for i, n := range g.Nodes {
			var p70, p95, p99 interface{}
			if n.Estimate != nil {
				p70, p95, p99 = n.Estimate.P70, n.Estimate.P95, n.Estimate.P99
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO nodes (project_name, id, kind, title, description, effort_hours, last_manual_hours,
					order_index, estimate_p70, estimate_p95, estimate_p99)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				name, n.ID, string(n.Kind), n.Title, n.Description, n.EffortHours,
				nullableFloatToValue(n.LastManualHours), i, p70, p95, p99,
			)
			if err != nil {
				return fmt.Errorf("inserting node %s: %w", n.ID, err)
			}
		}

		for i, e := range dedupeEdges(g.Edges) {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO edges (project_name, source_id, target_id, order_index) VALUES (?, ?, ?, ?)`,
				name, e.Source, e.Target, i)
			if err != nil {
				return fmt.Errorf("inserting edge %s -> %s: %w", e.Source, e.Target, err)
			}
		}
		return nil
	})
}

// Get reads the project row, its nodes, and its edges in one transaction
// so a concurrent Save is never observed half-applied.
func (r *SQLiteSnapshotRepo) Get(ctx context.Context, name string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var createdStr, updatedStr string
		err := tx.QueryRowContext(ctx,
			`SELECT created_at, last_updated_at FROM projects WHERE name = ?`, name,
		).Scan(&createdStr, &updatedStr)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("project %q: %w", name, ErrNotFound)
			}
			return fmt.Errorf("scanning project: %w", err)
		}

		s := &domain.Snapshot{Name: name, Graph: &domain.Graph{}}
		if s.CreatedAt, err = parseTime(createdStr); err != nil {
			return fmt.Errorf("parsing created_at: %w", err)
		}
		if s.LastUpdatedAt, err = parseTime(updatedStr); err != nil {
			return fmt.Errorf("parsing last_updated_at: %w", err)
		}
		if s.Graph.Nodes, err = listNodes(ctx, tx, name); err != nil {
			return err
		}
		if s.Graph.Edges, err = listEdges(ctx, tx, name); err != nil {
			return err
		}
		snap = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *SQLiteSnapshotRepo) Latest(ctx context.Context) (*domain.Snapshot, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM projects ORDER BY last_updated_at DESC, name LIMIT 1`,
	).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no saved projects: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("finding latest project: %w", err)
	}
	return r.Get(ctx, name)
}

func (r *SQLiteSnapshotRepo) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.name, p.created_at, p.last_updated_at, COUNT(n.id),
			COALESCE(MAX(CASE WHEN n.kind = 'project' THEN n.effort_hours END), 0)
		FROM projects p
		LEFT JOIN nodes n ON n.project_name = p.name
		GROUP BY p.name
		ORDER BY p.last_updated_at DESC, p.name`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []domain.ProjectSummary
	for rows.Next() {
		var s domain.ProjectSummary
		var createdStr, updatedStr string
		if err := rows.Scan(&s.Name, &createdStr, &updatedStr, &s.NodeCount, &s.EffortHours); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		if s.CreatedAt, err = parseTime(createdStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if s.LastUpdatedAt, err = parseTime(updatedStr); err != nil {
			return nil, fmt.Errorf("parsing last_updated_at: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return out, nil
}

func (r *SQLiteSnapshotRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	return nil
}

func listNodes(ctx context.Context, q db.DBTX, name string) ([]*domain.Node, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, kind, title, description, effort_hours, last_manual_hours,
			estimate_p70, estimate_p95, estimate_p99
		FROM nodes WHERE project_name = ? ORDER BY order_index`, name)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*domain.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}
	return nodes, nil
}

func listEdges(ctx context.Context, q db.DBTX, name string) ([]domain.Edge, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT source_id, target_id FROM edges WHERE project_name = ? ORDER BY order_index`, name)
	if err != nil {
		return nil, fmt.Errorf("listing edges: %w", err)
	}
	defer rows.Close()

	var edges []domain.Edge
	for rows.Next() {
		var e domain.Edge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, fmt.Errorf("scanning edge row: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edges: %w", err)
	}
	return edges, nil
}

// scanNode scans a single node row from *sql.Rows.
func scanNode(rows *sql.Rows) (*domain.Node, error) {
	var n domain.Node
	var kind string
	var manual, p70, p95, p99 sql.NullFloat64

	err := rows.Scan(&n.ID, &kind, &n.Title, &n.Description, &n.EffortHours, &manual, &p70, &p95, &p99)
	if err != nil {
		return nil, fmt.Errorf("scanning node row: %w", err)
	}
	n.Kind = domain.NodeKind(kind)
	n.LastManualHours = parseNullableFloat(manual)
	if p70.Valid && p95.Valid && p99.Valid {
		n.Estimate = &domain.Estimate{P70: p70.Float64, P95: p95.Float64, P99: p99.Float64}
	}
	return &n, nil
}
