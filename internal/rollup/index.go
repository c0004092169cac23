package rollup

import "github.com/alexanderramin/mediantree/internal/domain"

// index is a read-only adjacency view of a graph, built once per pass.
// Edges that reference missing nodes and repeated edges are dropped.
type index struct {
	byID     map[string]*domain.Node
	children map[string][]string
	parents  map[string][]string
}

func newIndex(g *domain.Graph) *index {
	idx := &index{
		byID:     make(map[string]*domain.Node, len(g.Nodes)),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
	for _, n := range g.Nodes {
		idx.byID[n.ID] = n
	}
	seen := make(map[domain.Edge]bool, len(g.Edges))
	for _, e := range g.Edges {
		if seen[e] || idx.byID[e.Source] == nil || idx.byID[e.Target] == nil {
			continue
		}
		seen[e] = true
		idx.children[e.Source] = append(idx.children[e.Source], e.Target)
		idx.parents[e.Target] = append(idx.parents[e.Target], e.Source)
	}
	return idx
}

// ancestors returns ids plus every node reachable by walking parent edges.
// The visited set doubles as the cycle guard.
func (idx *index) ancestors(ids []string) map[string]bool {
	out := make(map[string]bool)
	stack := append([]string(nil), ids...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out[id] {
			continue
		}
		out[id] = true
		stack = append(stack, idx.parents[id]...)
	}
	return out
}

// reaches reports whether to is reachable from from along child edges.
func (idx *index) reaches(from, to string) bool {
	seen := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, idx.children[id]...)
	}
	return false
}
