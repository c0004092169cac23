package rollup

import (
	"math"
	"testing"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrFloat(f float64) *float64 { return &f }

func task(id string, hours float64) *domain.Node {
	return &domain.Node{ID: id, Kind: domain.NodeTask, Title: id, EffortHours: hours}
}

func project(id string) *domain.Node {
	return &domain.Node{ID: id, Kind: domain.NodeProject, Title: id}
}

func edge(parent, child string) domain.Edge {
	return domain.Edge{Source: parent, Target: child}
}

// threeLeafGraph: root -> grand -> parent -> {l1:3, l2:5, l3:2}.
func threeLeafGraph() *domain.Graph {
	return &domain.Graph{
		Nodes: []*domain.Node{
			project("root"), task("grand", 1), task("parent", 1),
			task("l1", 3), task("l2", 5), task("l3", 2),
		},
		Edges: []domain.Edge{
			edge("root", "grand"), edge("grand", "parent"),
			edge("parent", "l1"), edge("parent", "l2"), edge("parent", "l3"),
		},
	}
}

func hours(g *domain.Graph) map[string]float64 {
	out := make(map[string]float64, len(g.Nodes))
	for _, n := range g.Nodes {
		out[n.ID] = n.EffortHours
	}
	return out
}

func TestRecompute_SumsChildrenBottomUp(t *testing.T) {
	g := threeLeafGraph()

	res, err := Recompute(g)
	require.NoError(t, err)

	assert.Equal(t, 10.0, g.Node("parent").EffortHours)
	assert.Equal(t, 10.0, g.Node("grand").EffortHours)
	assert.Equal(t, 10.0, g.Node("root").EffortHours)
	assert.Equal(t, []string{"parent", "grand", "root"}, res.Changed)
	assert.Empty(t, res.Skipped)
}

func TestRecompute_Idempotent(t *testing.T) {
	g := threeLeafGraph()
	_, err := Recompute(g)
	require.NoError(t, err)
	first := hours(g)

	res, err := Recompute(g)
	require.NoError(t, err)
	assert.Empty(t, res.Changed)
	assert.Equal(t, first, hours(g))
}

func TestRecompute_OnlyTouchesAncestorsOfChanged(t *testing.T) {
	g := threeLeafGraph()
	_, err := Recompute(g)
	require.NoError(t, err)

	// Sibling subtree with a deliberately stale total.
	g.Nodes = append(g.Nodes, task("side", 99), task("side-leaf", 1))
	g.Edges = append(g.Edges, edge("root", "side"), edge("side", "side-leaf"))

	g.Node("l1").EffortHours = 13
	res, err := Recompute(g, "l1")
	require.NoError(t, err)

	assert.Equal(t, 20.0, g.Node("parent").EffortHours)
	assert.Equal(t, 20.0, g.Node("grand").EffortHours)
	assert.Equal(t, 119.0, g.Node("root").EffortHours, "root sums the stale sibling as-is")
	assert.Equal(t, 99.0, g.Node("side").EffortHours, "unrelated subtree is not recomputed")
	assert.NotContains(t, res.Evaluated, "side")
}

func TestRecompute_EmptyProjectIsZero(t *testing.T) {
	root := project("root")
	root.EffortHours = 7
	g := &domain.Graph{Nodes: []*domain.Node{root}}

	_, err := Recompute(g)
	require.NoError(t, err)
	assert.Equal(t, 0.0, root.EffortHours)
}

func TestRecompute_IgnoresDuplicateEdges(t *testing.T) {
	g := &domain.Graph{
		Nodes: []*domain.Node{project("root"), task("a", 4)},
		Edges: []domain.Edge{edge("root", "a"), edge("root", "a")},
	}
	_, err := Recompute(g)
	require.NoError(t, err)
	assert.Equal(t, 4.0, g.Node("root").EffortHours)
}

func TestRecompute_CycleAbortsOnlyDependentSubgraph(t *testing.T) {
	g := &domain.Graph{
		Nodes: []*domain.Node{
			project("root"), task("a", 1), task("b", 2),
			task("orphan", 0), task("orphan-leaf", 6),
		},
		Edges: []domain.Edge{
			edge("root", "a"), edge("a", "b"), edge("b", "a"),
			edge("orphan", "orphan-leaf"),
		},
	}

	res, err := Recompute(g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructuralAnomaly)
	assert.Contains(t, err.Error(), "cycle")

	assert.ElementsMatch(t, []string{"a", "b", "root"}, res.Skipped)
	assert.Equal(t, 1.0, g.Node("a").EffortHours, "prior value kept")
	assert.Equal(t, 2.0, g.Node("b").EffortHours, "prior value kept")
	assert.Equal(t, 6.0, g.Node("orphan").EffortHours, "independent subtree still recomputed")
}

func TestRecompute_SelfLoop(t *testing.T) {
	g := &domain.Graph{
		Nodes: []*domain.Node{project("root"), task("a", 3)},
		Edges: []domain.Edge{edge("root", "a"), edge("a", "a")},
	}
	res, err := Recompute(g, "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructuralAnomaly)
	assert.Contains(t, res.Skipped, "a")
	assert.Equal(t, 3.0, g.Node("a").EffortHours)
}

func TestRecompute_NoProjectRoot(t *testing.T) {
	g := &domain.Graph{Nodes: []*domain.Node{task("a", 1)}}
	_, err := Recompute(g)
	assert.ErrorIs(t, err, ErrStructuralAnomaly)
}

func TestRecompute_ChangedNodeWithoutPathToRoot(t *testing.T) {
	g := NewProjectGraph("Launch", "")
	a, _, err := AddTask(g, "", "A", ptrFloat(2))
	require.NoError(t, err)
	_, err = Disconnect(g, g.Root().ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.Root().EffortHours)

	res, err := SetHours(g, a.ID, 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructuralAnomaly)
	assert.Contains(t, err.Error(), "cannot reach the project root")
	require.NotNil(t, res, "the edit still applies")
	assert.Equal(t, []string{a.ID}, res.Detached)
	assert.Equal(t, 9.0, a.EffortHours)
	require.NotNil(t, a.Estimate)
	assert.Equal(t, 0.0, g.Root().EffortHours, "root is not affected")

	// Reattached, the same edit is clean again.
	_, err = Connect(g, g.Root().ID, a.ID)
	require.NoError(t, err)
	res, err = SetHours(g, a.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, res.Detached)
	assert.Equal(t, 3.0, g.Root().EffortHours)
}

func TestRecompute_FullPassAllowsDetachedSubtrees(t *testing.T) {
	g := &domain.Graph{
		Nodes: []*domain.Node{project("root"), task("a", 2), task("loose", 0), task("leaf", 4)},
		Edges: []domain.Edge{edge("root", "a"), edge("loose", "leaf")},
	}
	res, err := Recompute(g)
	require.NoError(t, err)
	assert.Empty(t, res.Detached)
	assert.Equal(t, 4.0, g.Node("loose").EffortHours)
	assert.Equal(t, 2.0, g.Node("root").EffortHours)
}

func TestRecompute_UnknownChangedNode(t *testing.T) {
	g := threeLeafGraph()
	res, err := Recompute(g, "nope")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestRecomputeHierarchy_RefreshesEstimates(t *testing.T) {
	g := threeLeafGraph()
	g.Nodes = append(g.Nodes, task("zero", 0))
	g.Edges = append(g.Edges, edge("root", "zero"))

	_, err := RecomputeHierarchy(g)
	require.NoError(t, err)

	for _, n := range g.Nodes {
		if n.ID == "zero" {
			assert.Nil(t, n.Estimate, "zero effort has no estimate")
			continue
		}
		require.NotNil(t, n.Estimate, n.ID)
		assert.LessOrEqual(t, n.Estimate.P70, n.Estimate.P95)
		assert.LessOrEqual(t, n.Estimate.P95, n.Estimate.P99)
	}
	assert.InEpsilon(t, 10*math.Exp(1.6448536269514722), g.Node("root").Estimate.P95, 1e-9)
}

func TestAddTask_UnderProjectUsesDefault(t *testing.T) {
	g := NewProjectGraph("Launch", "")
	root := g.Root()

	child, res, err := AddTask(g, "", "Design", nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, domain.DefaultTaskHours, child.EffortHours)
	assert.Nil(t, child.LastManualHours)
	assert.Equal(t, domain.DefaultTaskHours, root.EffortHours)
	assert.True(t, g.HasEdge(root.ID, child.ID))
	assert.NotNil(t, child.Estimate)
}

func TestAddTask_SeedsFromManualParentOnce(t *testing.T) {
	g := NewProjectGraph("Launch", "")
	parent, _, err := AddTask(g, "", "Build", nil)
	require.NoError(t, err)
	_, err = SetHours(g, parent.ID, 4)
	require.NoError(t, err)

	first, _, err := AddTask(g, parent.ID, "Backend", nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, first.EffortHours, "first child inherits parent's manual value")
	assert.Equal(t, 4.0, parent.EffortHours)
	require.NotNil(t, parent.LastManualHours)
	assert.Equal(t, 4.0, *parent.LastManualHours)

	second, _, err := AddTask(g, parent.ID, "Frontend", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTaskHours, second.EffortHours, "seeding happens only for the first child")
	assert.Equal(t, 5.0, parent.EffortHours)
	assert.Equal(t, 5.0, g.Root().EffortHours)
}

func TestAddTask_ExplicitHours(t *testing.T) {
	g := NewProjectGraph("Launch", "")
	child, _, err := AddTask(g, "", "QA", ptrFloat(2.5))
	require.NoError(t, err)
	assert.Equal(t, 2.5, child.EffortHours)
	require.NotNil(t, child.LastManualHours)
	assert.Equal(t, 2.5, *child.LastManualHours)

	_, _, err = AddTask(g, "", "Bad", ptrFloat(-1))
	assert.ErrorIs(t, err, ErrInvalidHours)

	_, _, err = AddTask(g, "missing", "Lost", nil)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Len(t, g.Nodes, 2)
}

func TestReparentAndRevert(t *testing.T) {
	g := NewProjectGraph("Launch", "")
	leaf, _, err := AddTask(g, "", "Leaf", nil)
	require.NoError(t, err)
	_, err = SetHours(g, leaf.ID, 4)
	require.NoError(t, err)

	// An existing task with manual hours 7, not yet attached.
	other := task("other", 7)
	other.RememberManual()
	g.Nodes = append(g.Nodes, other)

	res, err := Connect(g, leaf.ID, other.ID)
	require.NoError(t, err)
	assert.Contains(t, res.Changed, leaf.ID)
	assert.Equal(t, 7.0, leaf.EffortHours)
	require.NotNil(t, leaf.LastManualHours)
	assert.Equal(t, 4.0, *leaf.LastManualHours)
	assert.Equal(t, 7.0, g.Root().EffortHours)

	res, err = Disconnect(g, leaf.ID, other.ID)
	require.NoError(t, err)
	assert.Contains(t, res.Changed, leaf.ID)
	assert.Equal(t, 4.0, leaf.EffortHours)
	assert.Equal(t, 4.0, g.Root().EffortHours)
	assert.NotNil(t, g.Node(other.ID), "detached child remains in the graph")
}

func TestDisconnect_HoldsAggregateWithoutManualValue(t *testing.T) {
	g := &domain.Graph{
		Nodes: []*domain.Node{project("root"), task("p", 9), task("c", 9)},
		Edges: []domain.Edge{edge("root", "p"), edge("p", "c")},
	}
	_, err := Disconnect(g, "p", "c")
	require.NoError(t, err)
	assert.Equal(t, 9.0, g.Node("p").EffortHours)

	_, err = Disconnect(g, "p", "c")
	assert.ErrorIs(t, err, ErrEdgeNotFound)
}

func TestDisconnect_MissingParentLeavesEdges(t *testing.T) {
	g := &domain.Graph{
		Nodes: []*domain.Node{project("root"), task("a", 1)},
		Edges: []domain.Edge{edge("root", "a"), edge("ghost", "a")},
	}
	res, err := Disconnect(g, "ghost", "a")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Equal(t, []domain.Edge{edge("root", "a"), edge("ghost", "a")}, g.Edges)
}

func TestSetHours_Errors(t *testing.T) {
	g := threeLeafGraph()

	_, err := SetHours(g, "root", 3)
	assert.ErrorIs(t, err, ErrNotEditable)
	_, err = SetHours(g, "parent", 3)
	assert.ErrorIs(t, err, ErrNotEditable)
	_, err = SetHours(g, "l1", -1)
	assert.ErrorIs(t, err, ErrInvalidHours)
	_, err = SetHours(g, "l1", math.NaN())
	assert.ErrorIs(t, err, ErrInvalidHours)
	_, err = SetHours(g, "missing", 1)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestSetHours_PropagatesAndReportsChanges(t *testing.T) {
	g := threeLeafGraph()
	_, err := RecomputeHierarchy(g)
	require.NoError(t, err)

	res, err := SetHours(g, "l3", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"l3", "parent", "grand", "root"}, res.Changed)
	assert.Equal(t, 8.0, g.Node("root").EffortHours)
	assert.Nil(t, g.Node("l3").Estimate)
	require.NotNil(t, g.Node("l3").LastManualHours)
	assert.Equal(t, 0.0, *g.Node("l3").LastManualHours)
}

func TestConnect_Rejections(t *testing.T) {
	g := threeLeafGraph()
	g.Nodes = append(g.Nodes, task("loose", 1))

	_, err := Connect(g, "loose", "loose")
	assert.ErrorIs(t, err, ErrStructuralAnomaly)

	_, err = Connect(g, "l1", "root")
	assert.ErrorIs(t, err, ErrStructuralAnomaly)

	_, err = Connect(g, "l1", "grand")
	assert.ErrorIs(t, err, ErrAlreadyParented)

	_, err = Connect(g, "loose", "missing")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	edgesBefore := len(g.Edges)
	res, err := Connect(g, "parent", "l1")
	require.NoError(t, err)
	assert.Empty(t, res.Changed, "existing edge is a no-op")
	assert.Len(t, g.Edges, edgesBefore)
}

func TestConnect_RefusesCycleThroughDetachedSubtree(t *testing.T) {
	g := &domain.Graph{
		Nodes: []*domain.Node{project("root"), task("a", 1), task("b", 1)},
		Edges: []domain.Edge{edge("a", "b")},
	}
	_, err := Connect(g, "b", "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructuralAnomaly)
	assert.Len(t, g.Edges, 1, "graph untouched")
}

func TestRemoveNode(t *testing.T) {
	g := NewProjectGraph("Launch", "")
	parent, _, err := AddTask(g, "", "Parent", ptrFloat(4))
	require.NoError(t, err)
	child, _, err := AddTask(g, parent.ID, "Child", ptrFloat(7))
	require.NoError(t, err)
	grandchild, _, err := AddTask(g, child.ID, "Grandchild", nil)
	require.NoError(t, err)
	assert.Equal(t, 7.0, parent.EffortHours)

	res, err := RemoveNode(g, child.ID)
	require.NoError(t, err)
	assert.Contains(t, res.Changed, parent.ID)
	assert.Nil(t, g.Node(child.ID))
	assert.Equal(t, 4.0, parent.EffortHours, "parent reverts to its manual value")
	assert.Equal(t, 4.0, g.Root().EffortHours)
	assert.NotNil(t, g.Node(grandchild.ID), "children are detached, not deleted")
	assert.Empty(t, g.Parents(grandchild.ID))
	for _, e := range g.Edges {
		assert.NotEqual(t, child.ID, e.Source)
		assert.NotEqual(t, child.ID, e.Target)
	}

	_, err = RemoveNode(g, g.Root().ID)
	assert.ErrorIs(t, err, ErrNotEditable)
	_, err = RemoveNode(g, "missing")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
