package importer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/alexanderramin/mediantree/internal/rollup"
	"github.com/google/uuid"
)

// Converted is the result of turning a Document into a project graph.
type Converted struct {
	Graph *domain.Graph
	// Reattached lists task IDs whose parent was not in the document and
	// which were attached to the project root instead.
	Reattached []string
}

// NodeID is the graph ID given to an imported task.
func NodeID(taskID string) string {
	return "task-" + taskID
}

// Convert transforms a validated Document into a recomputed project graph
// titled name. Call Validate first; Convert assumes the document is valid.
//
// Tasks precede subtasks in node order. Effort aggregation runs once over
// the finished graph, so a parent's stated hours are replaced by the sum
// of its children.
func Convert(doc *Document, name string) (*Converted, error) {
	root := &domain.Node{
		ID:          uuid.New().String(),
		Kind:        domain.NodeProject,
		Title:       domain.CoalesceStr(name, doc.Project.Name, "Imported project"),
		Description: doc.Project.Description,
	}
	g := &domain.Graph{Nodes: []*domain.Node{root}}
	out := &Converted{Graph: g}

	tasks := make([]TaskImport, len(doc.Tasks))
	copy(tasks, doc.Tasks)
	sort.SliceStable(tasks, func(i, j int) bool {
		return typeRank(tasks[i].Type) < typeRank(tasks[j].Type)
	})

	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}

	for _, t := range tasks {
		hours := domain.Float64FromPtrWithDefault(domain.DefaultTaskHours, t.Hours)
		n := &domain.Node{
			ID:          NodeID(t.ID),
			Kind:        domain.NodeTask,
			Title:       t.Title,
			Description: t.Description,
			EffortHours: hours,
		}
		n.RememberManual()
		g.Nodes = append(g.Nodes, n)

		parent := root.ID
		switch {
		case t.Parent == "":
		case known[t.Parent]:
			parent = NodeID(t.Parent)
		default:
			out.Reattached = append(out.Reattached, t.ID)
		}
		g.Edges = append(g.Edges, domain.Edge{Source: parent, Target: n.ID})
	}

	if _, err := rollup.RecomputeHierarchy(g); err != nil {
		return nil, fmt.Errorf("building hierarchy: %w", err)
	}
	return out, nil
}

func typeRank(issueType string) int {
	switch strings.ToLower(strings.ReplaceAll(issueType, "-", "")) {
	case "subtask":
		return 1
	default:
		return 0
	}
}
