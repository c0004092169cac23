package domain

type NodeKind string

const (
	NodeProject NodeKind = "project"
	NodeTask    NodeKind = "task"
)

// ValidNodeKinds is the canonical set of accepted node kind strings.
var ValidNodeKinds = map[string]bool{
	"project": true, "task": true,
}

// DefaultTaskHours is the effort a task starts with when nothing else is known.
const DefaultTaskHours = 1.0

// Confidence levels reported for every node with positive effort.
const (
	ConfidenceP70 = 0.70
	ConfidenceP95 = 0.95
	ConfidenceP99 = 0.99
)
