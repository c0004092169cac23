package testutil

import (
	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/alexanderramin/mediantree/internal/rollup"
)

// GraphOption customizes a graph built by NewTestGraph.
type GraphOption func(*domain.Graph)

// WithTask adds a task with the given id and hours under parentID.
// An empty parentID attaches the task to the project root.
func WithTask(id, parentID string, hours float64) GraphOption {
	return func(g *domain.Graph) {
		if parentID == "" {
			parentID = g.Root().ID
		}
		h := hours
		g.Nodes = append(g.Nodes, &domain.Node{
			ID:              id,
			Kind:            domain.NodeTask,
			Title:           id,
			EffortHours:     hours,
			LastManualHours: &h,
		})
		g.Edges = append(g.Edges, domain.Edge{Source: parentID, Target: id})
	}
}

// WithOrphan adds a task with no parent.
func WithOrphan(id string, hours float64) GraphOption {
	return func(g *domain.Graph) {
		g.Nodes = append(g.Nodes, &domain.Node{ID: id, Kind: domain.NodeTask, Title: id, EffortHours: hours})
	}
}

// WithEdge adds a raw parent -> child edge without any checks.
func WithEdge(parentID, childID string) GraphOption {
	return func(g *domain.Graph) {
		g.Edges = append(g.Edges, domain.Edge{Source: parentID, Target: childID})
	}
}

// NewTestGraph returns a project rooted at "root" with the given options
// applied, then recomputed. Options that introduce cycles leave the graph
// partially evaluated.
func NewTestGraph(title string, opts ...GraphOption) *domain.Graph {
	g := &domain.Graph{
		Nodes: []*domain.Node{{ID: "root", Kind: domain.NodeProject, Title: title}},
	}
	for _, opt := range opts {
		opt(g)
	}
	_, _ = rollup.RecomputeHierarchy(g)
	return g
}

// NewSampleGraph is the three-leaf project used across packages:
// root -> {design 3h, build -> {backend 4h, frontend 1h}, release 2h}.
func NewSampleGraph() *domain.Graph {
	return NewTestGraph("Launch",
		WithTask("design", "", 3),
		WithTask("build", "", 0),
		WithTask("backend", "build", 4),
		WithTask("frontend", "build", 1),
		WithTask("release", "", 2),
	)
}
