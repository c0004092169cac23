package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/alexanderramin/mediantree/internal/service"
	"github.com/charmbracelet/lipgloss"
)

// FormatProjectList renders a styled project list inside a bordered box.
func FormatProjectList(projects []domain.ProjectSummary) string {
	if len(projects) == 0 {
		return Dim("No projects yet. Create one with: mediantree project new --name NAME") + "\n"
	}

	headers := []string{"NAME", "NODES", "EFFORT", "UPDATED"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			Bold(p.Name),
			fmt.Sprintf("%d", p.NodeCount),
			FormatHours(p.EffortHours),
			Dim(HumanTimestamp(p.LastUpdatedAt)),
		})
	}

	return RenderBox("Projects", RenderTable(headers, rows, 1, 2))
}

// FormatProjectTree renders a project's hierarchy with hours and the
// estimate badges of each node. Tasks with no path from the root are
// listed after the tree.
func FormatProjectTree(snap *domain.Snapshot) string {
	g := snap.Graph
	var b strings.Builder

	b.WriteString(buildMetadataPanel(snap))
	b.WriteString("\n")

	visited := make(map[string]bool, len(g.Nodes))
	root := g.Root()
	if root == nil {
		b.WriteString(StyleRed.Render("Project has no root node") + "\n")
	} else {
		b.WriteString(RenderTree(buildTreeItems(g, root.ID, 0, true, nil, visited)))
	}

	var detached []TreeItem
	for _, n := range g.Nodes {
		if visited[n.ID] || n.IsProject() || len(g.Parents(n.ID)) > 0 {
			continue
		}
		detached = append(detached, buildTreeItems(g, n.ID, 0, true, nil, visited)...)
	}
	if len(detached) > 0 {
		b.WriteString("\n" + Header("Detached") + "\n")
		b.WriteString(RenderTree(detached))
	}

	// Whatever is left only hangs off a cycle.
	var unreachable []string
	for _, n := range g.Nodes {
		if !visited[n.ID] {
			unreachable = append(unreachable, fmt.Sprintf("%s %s  %s",
				TruncID(n.ID), n.Title, FormatHours(n.EffortHours)))
		}
	}
	if len(unreachable) > 0 {
		b.WriteString("\n" + Header("Unreachable") + "\n")
		b.WriteString(StyleYellow.Render("These nodes sit on or below a cycle and are not aggregated.") + "\n")
		for _, line := range unreachable {
			b.WriteString("  " + line + "\n")
		}
	}

	return RenderBox("", strings.TrimRight(b.String(), "\n"))
}

func buildMetadataPanel(snap *domain.Snapshot) string {
	var b strings.Builder
	b.WriteString(StyleBold.Render(snap.Name) + "\n")
	if root := snap.Graph.Root(); root != nil && root.Description != "" {
		b.WriteString(Dim(root.Description) + "\n")
	}
	b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render("CREATED"), StyleFg.Render(HumanDate(snap.CreatedAt))))
	b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render("UPDATED"), StyleFg.Render(HumanTimestamp(snap.LastUpdatedAt))))
	return lipgloss.NewStyle().Width(45).Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

// buildTreeItems walks the subtree at id depth-first. open carries, per
// ancestor level, whether that ancestor has further siblings.
func buildTreeItems(g *domain.Graph, id string, level int, isLast bool, open []bool, visited map[string]bool) []TreeItem {
	if visited[id] {
		return nil
	}
	visited[id] = true

	n := g.Node(id)
	if n == nil {
		return nil
	}

	hasChildren := g.HasChildren(id)
	items := []TreeItem{{
		Title:  n.Title,
		ID:     ShortID(n.ID),
		Level:  level,
		IsLast: isLast,
		Open:   open,
		Hours:  FormatHours(n.EffortHours),
		Manual: !hasChildren && !n.IsProject(),
		Badges: estimateBadges(n),
	}}

	var childOpen []bool
	if level > 0 {
		childOpen = append(append([]bool(nil), open...), !isLast)
	}

	var children []string
	for _, c := range g.Children(id) {
		if !visited[c] {
			children = append(children, c)
		}
	}
	for i, c := range children {
		items = append(items, buildTreeItems(g, c, level+1, i == len(children)-1, childOpen, visited)...)
	}
	return items
}

func estimateBadges(n *domain.Node) []string {
	if n.Estimate == nil || n.EffortHours <= 0 {
		return nil
	}
	return []string{
		ConfidenceStyle(domain.ConfidenceP70).Render("p70 " + FormatHours(n.Estimate.P70)),
		ConfidenceStyle(domain.ConfidenceP95).Render("p95 " + FormatHours(n.Estimate.P95)),
		ConfidenceStyle(domain.ConfidenceP99).Render("p99 " + FormatHours(n.Estimate.P99)),
	}
}

// FormatMutation summarizes an edit: which nodes changed effort and any
// part of the hierarchy that could not be recomputed.
func FormatMutation(res *service.MutationResult) string {
	var b strings.Builder

	if len(res.Changed) == 0 {
		b.WriteString(Dim("No effort values changed.") + "\n")
	} else {
		b.WriteString(StyleGreen.Render(fmt.Sprintf("Updated %d node(s):", len(res.Changed))) + "\n")
		for _, id := range res.Changed {
			line := "  " + TruncID(id)
			if res.Graph != nil {
				if n := res.Graph.Node(id); n != nil {
					line += " " + n.Title + "  " + StyleFg.Render(FormatHours(n.EffortHours))
				}
			}
			b.WriteString(line + "\n")
		}
	}

	if res.Anomaly != nil {
		b.WriteString(StyleRed.Render("Warning: "+res.Anomaly.Error()) + "\n")
	}
	if len(res.Skipped) > 0 {
		short := make([]string, len(res.Skipped))
		for i, id := range res.Skipped {
			short[i] = ShortID(id)
		}
		b.WriteString(StyleYellow.Render("Not recomputed: "+strings.Join(short, ", ")) + "\n")
	}

	if res.Graph != nil {
		if root := res.Graph.Root(); root != nil {
			b.WriteString(fmt.Sprintf("%s %s\n", Dim("Project total:"), Bold(FormatHours(root.EffortHours))))
		}
	}
	return b.String()
}
