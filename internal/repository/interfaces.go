package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/mediantree/internal/domain"
)

// ErrNotFound is returned when no snapshot matches the requested name.
var ErrNotFound = errors.New("not found")

// SnapshotRepo persists named project graphs. Save replaces the stored graph
// wholesale; the caller always holds the complete snapshot in memory.
type SnapshotRepo interface {
	Save(ctx context.Context, name string, g *domain.Graph) error
	Get(ctx context.Context, name string) (*domain.Snapshot, error)
	Latest(ctx context.Context) (*domain.Snapshot, error)
	List(ctx context.Context) ([]domain.ProjectSummary, error)
	Delete(ctx context.Context, name string) error
}

var (
	_ SnapshotRepo = (*SQLiteSnapshotRepo)(nil)
	_ SnapshotRepo = (*Neo4jSnapshotRepo)(nil)
)
