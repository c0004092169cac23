package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/mediantree/internal/cli/formatter"
	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse projects and their task trees interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("browse needs an interactive terminal; use `project list` and `project show`")
			}
			p := tea.NewProgram(newBrowseModel(cmd.Context(), app),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			return err
		},
	}
}

type browseKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Back    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultBrowseKeys() browseKeyMap {
	return browseKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:    key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter", "open")),
		Back:    key.NewBinding(key.WithKeys("esc", "left", "h"), key.WithHelp("esc", "back")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// projectsLoadedMsg signals that the project list has been loaded.
type projectsLoadedMsg struct {
	projects []domain.ProjectSummary
	err      error
}

// snapshotLoadedMsg carries one project opened from the list.
type snapshotLoadedMsg struct {
	snap *domain.Snapshot
	err  error
}

// browseModel lists projects; opening one shows its tree in a scrollable
// viewport.
type browseModel struct {
	ctx  context.Context
	app  *App
	keys browseKeyMap

	projects []domain.ProjectSummary
	cursor   int
	loading  bool
	err      error

	detail   *domain.Snapshot
	viewport viewport.Model
}

func newBrowseModel(ctx context.Context, app *App) *browseModel {
	return &browseModel{
		ctx:      ctx,
		app:      app,
		keys:     defaultBrowseKeys(),
		loading:  true,
		viewport: viewport.New(80, 20),
	}
}

func (m *browseModel) Init() tea.Cmd {
	return m.loadProjects()
}

func (m *browseModel) loadProjects() tea.Cmd {
	ctx, app := m.ctx, m.app
	return func() tea.Msg {
		projects, err := app.Projects.List(ctx)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func (m *browseModel) loadSnapshot(name string) tea.Cmd {
	ctx, app := m.ctx, m.app
	return func() tea.Msg {
		snap, err := app.Projects.Get(ctx, name)
		return snapshotLoadedMsg{snap: snap, err: err}
	}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		// Title and help lines.
		m.viewport.Height = max(msg.Height-4, 1)
		return m, nil

	case projectsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.projects = msg.projects
		if m.cursor >= len(m.projects) {
			m.cursor = max(len(m.projects)-1, 0)
		}
		return m, nil

	case snapshotLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.detail = msg.snap
		m.viewport.SetContent(formatter.FormatProjectTree(msg.snap))
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.detail != nil {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *browseModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.projects)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if m.cursor < len(m.projects) {
			m.loading = true
			m.err = nil
			return m, m.loadSnapshot(m.projects[m.cursor].Name)
		}
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadProjects()
	}
	return m, nil
}

func (m *browseModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.detail = nil
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *browseModel) View() string {
	var b strings.Builder

	if m.detail != nil {
		b.WriteString(formatter.StyleHeader.Render(strings.ToUpper(m.detail.Name)) + "\n\n")
		b.WriteString(m.viewport.View() + "\n")
		b.WriteString(m.help(m.keys.Up, m.keys.Down, m.keys.Back, m.keys.Quit))
		return b.String()
	}

	b.WriteString(formatter.Header("Projects") + "\n")
	switch {
	case m.err != nil:
		b.WriteString(formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
	case m.loading:
		b.WriteString(formatter.Dim("Loading...") + "\n")
	case len(m.projects) == 0:
		b.WriteString(formatter.Dim("No projects yet.") + "\n")
	}
	for i, p := range m.projects {
		line := fmt.Sprintf("%s  %s", p.Name, formatter.Dim(formatter.FormatHours(p.EffortHours)))
		if i == m.cursor {
			b.WriteString(formatter.StyleHeader.Render("> ") + formatter.Bold(line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n" + m.help(m.keys.Up, m.keys.Down, m.keys.Open, m.keys.Refresh, m.keys.Quit))
	return b.String()
}

func (m *browseModel) help(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return formatter.Dim(strings.Join(parts, " · "))
}
