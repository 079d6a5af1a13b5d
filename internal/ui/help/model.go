package help

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zervos/desk/internal/keys"
	"github.com/zervos/desk/internal/theme"
)

// Model is the expanded keybinding help view.
type Model struct {
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates the help view.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// Init is a no-op.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the app handles closing the help view.
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the grouped keybindings.
func (m Model) View() string {
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Width(10)
	descStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	var rows []string
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
				keyStyle.Render(h.Key),
				descStyle.Render(h.Desc),
			))
		}
		rows = append(rows, "")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return theme.PanelStyle.Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
