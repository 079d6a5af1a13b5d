package team

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/zervos/desk/internal/keys"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/team"
	"github.com/zervos/desk/internal/theme"
	"github.com/zervos/desk/internal/workspace"
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name  string
	email string
	role  string
}

// Model is the team member view for the selected workspace.
type Model struct {
	service *team.Service
	manager *workspace.Manager
	keys    *keys.KeyMap
	items   []model.TeamMember
	cursor  int
	form    *huh.Form
	fb      *formBindings
	width   int
	height  int
}

// New creates the team view.
func New(svc *team.Service, mgr *workspace.Manager, k *keys.KeyMap, width, height int) Model {
	m := Model{
		service: svc,
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

// Reload refreshes the list from the service. The app calls this when
// team-members-updated fires or the selected workspace changes.
func (m *Model) Reload() {
	m.reload()
}

// FormActive reports whether the add form is capturing input.
func (m Model) FormActive() bool {
	return m.form != nil
}

func (m *Model) reload() {
	m.items = m.service.Members(m.workspaceID())
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// workspaceID returns the selected workspace id, or empty for the
// global list.
func (m Model) workspaceID() string {
	if ws := m.manager.Selected(); ws != nil {
		return ws.ID
	}
	return ""
}

// Update handles messages for the team view.
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

	case key.Matches(keyMsg, m.keys.New):
		*m.fb = formBindings{}
		m.form = m.buildForm()
		return m, m.form.Init()

	case key.Matches(keyMsg, m.keys.Delete):
		if m.cursor < len(m.items) {
			m.service.Remove(m.workspaceID(), m.items[m.cursor].ID)
			m.reload()
		}
	}

	return m, nil
}

// updateForm delegates to the active add-member form.
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
		m.service.Add(m.workspaceID(), model.TeamMember{
			Name:  m.fb.name,
			Email: m.fb.email,
			Role:  m.fb.role,
		})
		m.form = nil
		m.reload()
	}

	return m, cmd
}

// buildForm constructs the add-member form.
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
			huh.NewInput().
				Title("Role").
				Value(&m.fb.role),
		),
	).WithWidth(m.width - 4)
}

// View renders the member list or the active form.
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
			Render("No team members. Press n to add one.")
	}

	var rows []string
	for i, member := range m.items {
		line := member.Name
		if member.Role != "" {
			line += "  " + theme.HelpStyle.Render(member.Role)
		}
		if member.Email != "" {
			line += "  " + theme.HelpStyle.Render(member.Email)
		}

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
