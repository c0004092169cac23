package domain

import "fmt"

// Graph is a snapshot of one project's task hierarchy. It is owned by the
// caller; engine functions mutate it in place and keep no reference to it.
type Graph struct {
	Nodes []*Node `json:"nodes" yaml:"nodes"`
	Edges []Edge  `json:"edges" yaml:"edges"`
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Root returns the first Project node, or nil when the graph has none.
func (g *Graph) Root() *Node {
	for _, n := range g.Nodes {
		if n.IsProject() {
			return n
		}
	}
	return nil
}

// Children returns the IDs of id's direct children in edge order.
func (g *Graph) Children(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// Parents returns the IDs of id's direct parents in edge order.
func (g *Graph) Parents(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.Target == id {
			out = append(out, e.Source)
		}
	}
	return out
}

// HasChildren reports whether id is the source of at least one edge.
func (g *Graph) HasChildren(id string) bool {
	for _, e := range g.Edges {
		if e.Source == id {
			return true
		}
	}
	return false
}

// HasEdge reports whether the parent -> child edge exists.
func (g *Graph) HasEdge(parentID, childID string) bool {
	for _, e := range g.Edges {
		if e.Source == parentID && e.Target == childID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]*Node, 0, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		c := *n
		if n.LastManualHours != nil {
			v := *n.LastManualHours
			c.LastManualHours = &v
		}
		if n.Estimate != nil {
			est := *n.Estimate
			c.Estimate = &est
		}
		out.Nodes = append(out.Nodes, &c)
	}
	copy(out.Edges, g.Edges)
	return out
}

// Validate checks node fields, ID uniqueness, and that every edge references
// existing nodes. It does not look for cycles.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	projects := 0
	for _, n := range g.Nodes {
		if err := n.Validate(); err != nil {
			return err
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		if n.IsProject() {
			projects++
		}
	}
	if projects > 1 {
		return fmt.Errorf("graph has %d project nodes, expected at most one", projects)
	}
	for i, e := range g.Edges {
		if !seen[e.Source] {
			return fmt.Errorf("edges[%d]: unknown source %q", i, e.Source)
		}
		if !seen[e.Target] {
			return fmt.Errorf("edges[%d]: unknown target %q", i, e.Target)
		}
		if n := g.Node(e.Target); n != nil && n.IsProject() {
			return fmt.Errorf("edges[%d]: project node %q cannot be a child", i, e.Target)
		}
	}
	return nil
}
