// Package rollup keeps a task hierarchy's effort totals consistent: every
// node with children carries the sum of its children's effort, evaluated
// leaf-to-root, and every node carries the lognormal estimate of its effort.
package rollup

import (
	"strings"

	"github.com/alexanderramin/mediantree/internal/domain"
)

// Result reports what a recomputation pass touched.
type Result struct {
	// Changed lists nodes whose EffortHours changed, children before parents.
	Changed []string
	// Evaluated lists every node the pass recomputed successfully.
	Evaluated []string
	// Skipped lists nodes left at their prior values because their subtree
	// contains a cycle.
	Skipped []string
	// Detached lists changed nodes with no parent path to the project root.
	Detached []string
}

func (r *Result) markChanged(id string) {
	if !contains(r.Changed, id) {
		r.Changed = append(r.Changed, id)
	}
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

const (
	white = iota
	gray
	done
	poisoned
)

// Recompute re-aggregates every ancestor of the changed nodes, or every node
// when changed is empty. Evaluation is post-order so a parent always sums
// already-updated children. Running it twice on an unchanged graph is a no-op.
//
// A cycle aborts only the subgraph that depends on it: those nodes keep
// their prior values, are listed in Result.Skipped, and the returned error
// wraps ErrStructuralAnomaly. The rest of the graph is still recomputed.
//
// A changed node that cannot reach the project root is still recomputed
// along with its own ancestors, but is listed in Result.Detached and the
// pass returns ErrStructuralAnomaly. Full passes do not check reachability.
func Recompute(g *domain.Graph, changed ...string) (*Result, error) {
	res := &Result{}
	if len(g.Nodes) == 0 {
		return res, nil
	}
	if g.Root() == nil {
		return res, anomalyf("hierarchy has no project root")
	}

	idx := newIndex(g)
	for _, id := range changed {
		if idx.byID[id] == nil {
			return nil, notFound(id)
		}
	}

	var affected map[string]bool
	if len(changed) == 0 {
		affected = make(map[string]bool, len(g.Nodes))
		for _, n := range g.Nodes {
			affected[n.ID] = true
		}
	} else {
		affected = idx.ancestors(changed)
		rootID := g.Root().ID
		for _, id := range changed {
			if !idx.ancestors([]string{id})[rootID] && !contains(res.Detached, id) {
				res.Detached = append(res.Detached, id)
			}
		}
	}

	state := make(map[string]int, len(affected))
	var stack []string
	var firstCycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case done:
			return true
		case poisoned:
			return false
		case gray:
			if firstCycle == nil {
				firstCycle = cycleWitness(stack, id)
			}
			return false
		}

		state[id] = gray
		stack = append(stack, id)
		ok := true
		for _, c := range idx.children[id] {
			if !affected[c] {
				continue
			}
			if !visit(c) {
				ok = false
			}
		}
		stack = stack[:len(stack)-1]

		if !ok {
			state[id] = poisoned
			res.Skipped = append(res.Skipped, id)
			return false
		}
		if aggregate(idx, idx.byID[id]) {
			res.Changed = append(res.Changed, id)
		}
		state[id] = done
		res.Evaluated = append(res.Evaluated, id)
		return true
	}

	for _, n := range g.Nodes {
		if affected[n.ID] {
			visit(n.ID)
		}
	}

	if firstCycle != nil {
		return res, cycleError(firstCycle)
	}
	if len(res.Detached) > 0 {
		return res, anomalyf("cannot reach the project root: %s", strings.Join(res.Detached, ", "))
	}
	return res, nil
}

// aggregate applies the sum rule to one node. Leaf tasks are manual and are
// left alone; a project always sums, so an empty project has zero effort.
func aggregate(idx *index, n *domain.Node) bool {
	kids := idx.children[n.ID]
	switch n.Kind {
	case domain.NodeTask:
		if len(kids) == 0 {
			return false
		}
	case domain.NodeProject:
	default:
		return false
	}

	var sum float64
	for _, c := range kids {
		sum += idx.byID[c].EffortHours
	}
	if sum == n.EffortHours {
		return false
	}
	n.EffortHours = sum
	return true
}

func cycleWitness(stack []string, back string) []string {
	for i, id := range stack {
		if id == back {
			path := append([]string(nil), stack[i:]...)
			return append(path, back)
		}
	}
	return []string{back, back}
}
