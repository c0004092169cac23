package rollup

import (
	"fmt"
	"math"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/google/uuid"
)

// NewProjectGraph returns a graph holding only a project root.
func NewProjectGraph(title, description string) *domain.Graph {
	return &domain.Graph{
		Nodes: []*domain.Node{{
			ID:          uuid.New().String(),
			Kind:        domain.NodeProject,
			Title:       title,
			Description: description,
		}},
	}
}

// AddTask creates a task under parentID (the project root when empty).
//
// With hours == nil the task starts at DefaultTaskHours, except when the
// parent is a manual task with no children yet: then the new child takes
// the parent's current effort as a one-time seed, and the parent switches
// to aggregate mode keeping that value in LastManualHours.
func AddTask(g *domain.Graph, parentID, title string, hours *float64) (*domain.Node, *Result, error) {
	if parentID == "" {
		root := g.Root()
		if root == nil {
			return nil, nil, anomalyf("hierarchy has no project root")
		}
		parentID = root.ID
	}
	parent := g.Node(parentID)
	if parent == nil {
		return nil, nil, notFound(parentID)
	}

	child := &domain.Node{
		ID:          uuid.New().String(),
		Kind:        domain.NodeTask,
		Title:       title,
		EffortHours: domain.DefaultTaskHours,
	}
	switch {
	case hours != nil:
		if err := validateHours(*hours); err != nil {
			return nil, nil, err
		}
		child.EffortHours = *hours
		child.RememberManual()
	case parent.Kind == domain.NodeTask && !g.HasChildren(parent.ID):
		child.EffortHours = parent.EffortHours
	}

	g.Nodes = append(g.Nodes, child)
	res, err := Connect(g, parent.ID, child.ID)
	if res == nil {
		g.Nodes = g.Nodes[:len(g.Nodes)-1]
		return nil, nil, err
	}
	return child, res, err
}

// Connect adds the parentID -> childID edge and recomputes the parent's
// ancestry. Existing nodes keep their own effort; nothing is seeded.
// Edges that would form a cycle are refused before the graph is touched.
// A nil Result means the graph was not modified.
func Connect(g *domain.Graph, parentID, childID string) (*Result, error) {
	parent := g.Node(parentID)
	if parent == nil {
		return nil, notFound(parentID)
	}
	child := g.Node(childID)
	if child == nil {
		return nil, notFound(childID)
	}
	if g.HasEdge(parentID, childID) {
		return &Result{}, nil
	}

	switch {
	case parentID == childID:
		return nil, anomalyf("self-loop on %q", parentID)
	case child.IsProject():
		return nil, anomalyf("project %q cannot be a child", childID)
	case len(g.Parents(childID)) > 0:
		return nil, &GraphError{Kind: ErrAlreadyParented, Msg: fmt.Sprintf("%q", childID)}
	case newIndex(g).reaches(childID, parentID):
		return nil, anomalyf("edge %s -> %s would close a cycle", parentID, childID)
	}

	if parent.Kind == domain.NodeTask && !g.HasChildren(parentID) {
		parent.RememberManual()
	}
	g.Edges = append(g.Edges, domain.Edge{Source: parentID, Target: childID})
	return RecomputeHierarchy(g, childID)
}

// Disconnect removes the parentID -> childID edge. A task that loses its
// last child returns to manual mode with its last manual value, or holds its
// final aggregate when none was recorded. The child stays in the graph.
func Disconnect(g *domain.Graph, parentID, childID string) (*Result, error) {
	parent := g.Node(parentID)
	if parent == nil {
		return nil, notFound(parentID)
	}
	pos := -1
	for i, e := range g.Edges {
		if e.Source == parentID && e.Target == childID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, &GraphError{Kind: ErrEdgeNotFound, Msg: fmt.Sprintf("%s -> %s", parentID, childID)}
	}
	g.Edges = append(g.Edges[:pos], g.Edges[pos+1:]...)

	reverted := revertIfLeaf(g, parent)
	res, err := RecomputeHierarchy(g, parentID)
	if res != nil && reverted {
		res.markChanged(parentID)
	}
	return res, err
}

// SetHours records a manual effort value on a leaf task.
func SetHours(g *domain.Graph, id string, hours float64) (*Result, error) {
	n := g.Node(id)
	if n == nil {
		return nil, notFound(id)
	}
	switch n.Kind {
	case domain.NodeProject:
		return nil, &GraphError{Kind: ErrNotEditable, Msg: "project effort is derived from its tasks"}
	case domain.NodeTask:
		if g.HasChildren(id) {
			return nil, &GraphError{Kind: ErrNotEditable, Msg: fmt.Sprintf("%q has children; its effort is derived", id)}
		}
	}
	if err := validateHours(hours); err != nil {
		return nil, err
	}

	prev := n.EffortHours
	n.EffortHours = hours
	n.RememberManual()

	res, err := RecomputeHierarchy(g, id)
	if res != nil && prev != hours {
		res.Changed = append([]string{id}, res.Changed...)
	}
	return res, err
}

// RemoveNode deletes a task and every edge touching it. Its children stay
// in the graph, detached; its parent re-aggregates or reverts to manual.
func RemoveNode(g *domain.Graph, id string) (*Result, error) {
	n := g.Node(id)
	if n == nil {
		return nil, notFound(id)
	}
	if n.IsProject() {
		return nil, &GraphError{Kind: ErrNotEditable, Msg: "the project root cannot be removed"}
	}

	parents := g.Parents(id)

	nodes := g.Nodes[:0]
	for _, x := range g.Nodes {
		if x.ID != id {
			nodes = append(nodes, x)
		}
	}
	g.Nodes = nodes

	edges := g.Edges[:0]
	for _, e := range g.Edges {
		if e.Source != id && e.Target != id {
			edges = append(edges, e)
		}
	}
	g.Edges = edges

	var reverted []string
	for _, pid := range parents {
		if revertIfLeaf(g, g.Node(pid)) {
			reverted = append(reverted, pid)
		}
	}
	if len(parents) == 0 {
		return &Result{}, nil
	}

	res, err := RecomputeHierarchy(g, parents...)
	if res != nil {
		for _, pid := range reverted {
			res.markChanged(pid)
		}
	}
	return res, err
}

func revertIfLeaf(g *domain.Graph, n *domain.Node) bool {
	if n == nil || n.Kind != domain.NodeTask || g.HasChildren(n.ID) || n.LastManualHours == nil {
		return false
	}
	if n.EffortHours == *n.LastManualHours {
		return false
	}
	n.EffortHours = *n.LastManualHours
	return true
}

func validateHours(h float64) error {
	if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
		return &GraphError{Kind: ErrInvalidHours, Msg: fmt.Sprintf("%v is not a non-negative number", h)}
	}
	return nil
}
