package rollup

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStructuralAnomaly covers cycles and hierarchies without a project root.
	ErrStructuralAnomaly = errors.New("structural anomaly")
	ErrNodeNotFound      = errors.New("node not found")
	ErrEdgeNotFound      = errors.New("edge not found")
	ErrNotEditable       = errors.New("node is not editable")
	ErrInvalidHours      = errors.New("invalid hours")
	ErrAlreadyParented   = errors.New("node already has a parent")
)

// GraphError wraps a hierarchy failure with a human-readable detail.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func anomalyf(format string, args ...any) error {
	return &GraphError{Kind: ErrStructuralAnomaly, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	msg := "cycle"
	if len(path) > 0 {
		msg = "cycle: " + strings.Join(path, " -> ")
	}
	return &GraphError{Kind: ErrStructuralAnomaly, Msg: msg}
}

func notFound(id string) error {
	return &GraphError{Kind: ErrNodeNotFound, Msg: fmt.Sprintf("%q", id)}
}
