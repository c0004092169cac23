package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title string
	ID    string // short node ID; empty means don't display
	Level int
	// IsLast marks the last sibling; Open tracks, per ancestor level, whether
	// that ancestor still has siblings below it so the pipe continues.
	IsLast bool
	Open   []bool
	Hours  string
	Manual bool
	Badges []string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree renders TreeItems as an indented tree using box-drawing
// connectors. Hours follow each title; derived hours render dim-italic
// free, manual hours bold. Badges are right-aligned in one column.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// Pass 1: build each line's content and track max visible width.
	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				if i-1 < len(item.Open) && !item.Open[i-1] {
					prefix += treeBlank
				} else {
					prefix += treePipe
				}
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		if item.Level == 0 {
			title = StyleBold.Render(title)
		}
		if item.ID != "" {
			title = StyleDim.Render(item.ID+" ") + title
		}
		content := StyleDim.Render(prefix) + title
		if item.Hours != "" {
			hours := StyleFg.Render(item.Hours)
			if !item.Manual {
				hours = StylePurple.Render("Σ " + item.Hours)
			}
			content += "  " + hours
		}
		lines[idx].content = content

		if len(item.Badges) > 0 {
			lines[idx].badge = StyleDim.Render("[ ") + strings.Join(item.Badges, StyleDim.Render(" · ")) + StyleDim.Render(" ]")
		}

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	// Pass 2: render with right-aligned badges.
	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := maxContentWidth - lipgloss.Width(li.content)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}

	return b.String()
}
