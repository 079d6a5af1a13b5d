package workspaces

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/zervos/desk/internal/keys"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/theme"
	"github.com/zervos/desk/internal/workspace"
)

// ChangedMsg is sent after the selection or the collection changed.
type ChangedMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name  string
	email string
	color string
}

// Model is the workspace switcher and editor view.
type Model struct {
	manager *workspace.Manager
	keys    *keys.KeyMap
	items   []model.Workspace
	cursor  int
	form    *huh.Form
	fb      *formBindings
	width   int
	height  int
}

// New creates the workspace view.
func New(mgr *workspace.Manager, k *keys.KeyMap, width, height int) Model {
	m := Model{
		manager: mgr,
		keys:    k,
		fb:      &formBindings{},
		width:   width,
		height:  height,
	}
	m.reload()
	return m
}

// Init is a no-op.
func (m Model) Init() tea.Cmd {
	return nil
}

// Reload refreshes the list from the manager.
func (m *Model) Reload() {
	m.reload()
}

// FormActive reports whether the create form is capturing input.
func (m Model) FormActive() bool {
	return m.form != nil
}

func (m *Model) reload() {
	m.items = m.manager.All()
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles messages for the workspace view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Select):
		if m.cursor < len(m.items) {
			ws := m.items[m.cursor]
			m.manager.SetSelected(&ws)
			return m, changed
		}

	case key.Matches(keyMsg, m.keys.New):
		*m.fb = formBindings{color: "blue"}
		m.form = m.buildForm()
		return m, m.form.Init()

	case key.Matches(keyMsg, m.keys.Delete):
		if m.cursor < len(m.items) {
			remaining := make([]model.Workspace, 0, len(m.items)-1)
			remaining = append(remaining, m.items[:m.cursor]...)
			remaining = append(remaining, m.items[m.cursor+1:]...)
			m.manager.SetAll(remaining)
			m.reload()
			return m, changed
		}
	}

	return m, nil
}

// updateForm delegates to the active create form.
func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.form = nil
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		ws := model.Workspace{
			ID:          workspace.NewWorkspaceID(),
			Name:        m.fb.name,
			Initials:    model.Initials(m.fb.name),
			Color:       m.fb.color,
			Email:       m.fb.email,
			Status:      model.WorkspaceActive,
			Prefix:      "INV",
			MaxDigits:   4,
			BookingLink: fmt.Sprintf("https://book.zervos.app/%s", m.fb.name),
		}
		m.manager.SetAll(append(m.manager.All(), ws))
		m.form = nil
		m.reload()
		return m, tea.Batch(cmd, changed)
	}

	return m, cmd
}

// buildForm constructs the create-workspace form.
func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email),
			huh.NewSelect[string]().
				Title("Color").
				Options(
					huh.NewOption("Blue", "blue"),
					huh.NewOption("Green", "green"),
					huh.NewOption("Yellow", "yellow"),
					huh.NewOption("Magenta", "magenta"),
				).
				Value(&m.fb.color),
		),
	).WithWidth(m.width - 4)
}

// changed emits a ChangedMsg.
func changed() tea.Msg {
	return ChangedMsg{}
}

// View renders the workspace list or the active form.
func (m Model) View() string {
	if m.form != nil {
		return m.form.View()
	}

	if len(m.items) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No workspaces. Press n to create one.")
	}

	selected := m.manager.Selected()

	var rows []string
	for i, ws := range m.items {
		marker := " "
		if selected != nil && ws.ID == selected.ID {
			marker = "✓"
		}

		initials := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.WorkspaceColor(ws.Color)).
			Render(ws.Initials)

		line := fmt.Sprintf("%s %s %s  %s",
			marker, initials, ws.Name,
			theme.HelpStyle.Render(ws.Status),
		)

		style := theme.ListItemStyle
		if i == m.cursor {
			style = theme.SelectedItemStyle
		}
		rows = append(rows, style.Render(line))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
