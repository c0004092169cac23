package domain

import "fmt"

// Estimate holds the completion times (in hours) at the reported confidence levels.
type Estimate struct {
	P70 float64 `json:"p70" yaml:"p70"`
	P95 float64 `json:"p95" yaml:"p95"`
	P99 float64 `json:"p99" yaml:"p99"`
}

// Node is one vertex of a project's task tree. Project and Task share this
// shape; kind-specific behavior is selected by switching on Kind.
type Node struct {
	ID          string   `json:"id" yaml:"id"`
	Kind        NodeKind `json:"kind" yaml:"kind"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`

	// EffortHours is user-authored on leaf tasks and derived on any node
	// with children.
	EffortHours float64 `json:"effort_hours" yaml:"effort_hours"`
	// LastManualHours is the most recent manual value, restored when the
	// node loses its last child.
	LastManualHours *float64 `json:"last_manual_hours,omitempty" yaml:"last_manual_hours,omitempty"`

	Estimate *Estimate `json:"estimate,omitempty" yaml:"estimate,omitempty"`
}

// IsProject reports whether n is the hierarchy root variant.
func (n *Node) IsProject() bool {
	return n.Kind == NodeProject
}

// RememberManual records the node's current effort as its manual value.
func (n *Node) RememberManual() {
	h := n.EffortHours
	n.LastManualHours = &h
}

// Validate checks the fields every node must carry.
func (n *Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("node id is required")
	}
	if !ValidNodeKinds[string(n.Kind)] {
		return fmt.Errorf("node %s: invalid kind %q", n.ID, n.Kind)
	}
	if n.EffortHours < 0 {
		return fmt.Errorf("node %s: effort hours must be non-negative, got %v", n.ID, n.EffortHours)
	}
	return nil
}

// Edge is a parent -> child relation. Source is the parent.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}
