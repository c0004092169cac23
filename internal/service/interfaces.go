package service

import (
	"context"
	"errors"

	"github.com/alexanderramin/mediantree/internal/domain"
)

var (
	// ErrProjectExists is returned when creating a project whose name is taken.
	ErrProjectExists = errors.New("project already exists")
	// ErrAmbiguousRef is returned when a node reference matches more than one node.
	ErrAmbiguousRef = errors.New("ambiguous node reference")
)

type ProjectService interface {
	Create(ctx context.Context, name, description string) (*domain.Snapshot, error)
	Get(ctx context.Context, name string) (*domain.Snapshot, error)
	Latest(ctx context.Context) (*domain.Snapshot, error)
	List(ctx context.Context) ([]domain.ProjectSummary, error)
	Delete(ctx context.Context, name string) error
}

// TaskService edits one project's hierarchy. Node references may be a full
// ID, a unique ID prefix, or a unique case-insensitive title.
type TaskService interface {
	Add(ctx context.Context, project string, in AddTaskInput) (*domain.Node, *MutationResult, error)
	SetHours(ctx context.Context, project, nodeRef string, hours float64) (*MutationResult, error)
	Link(ctx context.Context, project, parentRef, childRef string) (*MutationResult, error)
	Unlink(ctx context.Context, project, parentRef, childRef string) (*MutationResult, error)
	Remove(ctx context.Context, project, nodeRef string) (*MutationResult, error)
}

type EstimateService interface {
	// Estimate returns the completion time for each confidence level.
	Estimate(ctx context.Context, hours float64, levels ...float64) (*EstimateReport, error)
	// CertaintyAt returns the probability of finishing within at hours.
	CertaintyAt(ctx context.Context, hours, at float64) (float64, error)
	// Recompute re-aggregates a caller-supplied graph without persisting it.
	Recompute(ctx context.Context, g *domain.Graph) (*MutationResult, error)
}

type ImportService interface {
	ImportFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error)
}

// AddTaskInput describes a new task. An empty Parent attaches it to the
// project root; nil Hours lets the task take its default or seeded effort.
type AddTaskInput struct {
	Parent      string   `json:"parent,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Hours       *float64 `json:"hours,omitempty"`
}

// MutationResult reports the outcome of a hierarchy edit.
type MutationResult struct {
	Snapshot *domain.Snapshot `json:"-"`
	Graph    *domain.Graph    `json:"graph"`
	Changed  []string         `json:"changed"`
	Skipped  []string         `json:"skipped,omitempty"`
	// Anomaly is set when part of the hierarchy could not be recomputed.
	// The edit itself was applied and saved.
	Anomaly error `json:"-"`
}

// EstimateLevel is one row of an EstimateReport.
type EstimateLevel struct {
	Confidence float64 `json:"confidence"`
	Hours      float64 `json:"hours"`
}

// EstimateReport is the lognormal estimate for a single median.
type EstimateReport struct {
	Median float64         `json:"median"`
	Levels []EstimateLevel `json:"levels"`
}

type ImportOptions struct {
	// Name overrides the project name from the file.
	Name string
	// Format is csv, json, or yaml; empty infers it from the extension.
	Format string
	// Replace overwrites an existing project of the same name.
	Replace bool
}

type ImportResult struct {
	Snapshot   *domain.Snapshot
	TaskCount  int
	Reattached []string
}
