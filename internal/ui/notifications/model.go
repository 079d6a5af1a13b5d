package notifications

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zervos/desk/internal/keys"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/notify"
	"github.com/zervos/desk/internal/theme"
)

// NavigateMsg is sent when the user activates a notification that
// carries an in-app route.
type NavigateMsg struct {
	Path string
}

// ClosedMsg is sent when the dropdown closes after an activation.
type ClosedMsg struct{}

// filters is the tab cycle order: all first, then each category.
var filters = append([]model.Category{notify.FilterAll}, model.Categories()...)

// Model is the notification feed view: the dropdown equivalent of the
// header badge. Opening it triggers no store fetch beyond the in-memory
// projection; items re-sort by date before display.
type Model struct {
	notes  *notify.Store
	keys   *keys.KeyMap
	items  []model.Notification
	cursor int
	filter int
	width  int
	height int
}

// New creates the notification feed view.
func New(notes *notify.Store, k *keys.KeyMap, width, height int) Model {
	m := Model{
		notes:  notes,
		keys:   k,
		width:  width,
		height: height,
	}
	m.reload()
	return m
}

// Init is a no-op; the projection is loaded on construction and kept
// fresh by Reload.
func (m Model) Init() tea.Cmd {
	return nil
}

// Reload recomputes the projection from the store. The app calls this
// whenever notifications-updated fires.
func (m *Model) Reload() {
	m.reload()
}

func (m *Model) reload() {
	m.items = m.notes.Filter(filters[m.filter])
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
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

	case key.Matches(keyMsg, m.keys.CycleFilter):
		m.filter = (m.filter + 1) % len(filters)
		m.cursor = 0
		m.reload()

	case key.Matches(keyMsg, m.keys.MarkAllRead):
		m.notes.MarkAllRead()
		m.reload()

	case key.Matches(keyMsg, m.keys.Clear):
		m.notes.ClearAll()
		m.reload()

	case key.Matches(keyMsg, m.keys.Select):
		if m.cursor >= len(m.items) {
			return m, nil
		}
		item := m.items[m.cursor]
		m.notes.MarkRead(item.ID)
		m.reload()
		return m, func() tea.Msg {
			if item.Path != "" {
				return NavigateMsg{Path: item.Path}
			}
			return ClosedMsg{}
		}
	}

	return m, nil
}

// View renders the filter tabs and the notification list.
func (m Model) View() string {
	tabs := m.renderTabs()

	if len(m.items) == 0 {
		empty := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height - 2).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notifications.")
		return lipgloss.JoinVertical(lipgloss.Left, tabs, empty)
	}

	visible := m.height - 3
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.items) {
		end = len(m.items)
	}

	var rows []string
	for i := start; i < end; i++ {
		rows = append(rows, m.renderItem(i))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderTabs renders the category filter row.
func (m Model) renderTabs() string {
	var tabs []string
	for i, f := range filters {
		label := "All"
		if f != notify.FilterAll {
			label = f.Label()
		}
		if i == m.filter {
			tabs = append(tabs, theme.FilterActiveStyle.Render(label))
		} else {
			tabs = append(tabs, theme.FilterInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderItem renders one notification row.
func (m Model) renderItem(i int) string {
	n := m.items[i]

	title := n.Title
	if !n.Read {
		title = "● " + title
	}

	line := fmt.Sprintf("%s %s  %s",
		n.Category.Icon(),
		title,
		theme.HelpStyle.Render(n.Date.Format("Jan 2 15:04")),
	)

	style := theme.ListItemStyle
	if i == m.cursor {
		style = theme.SelectedItemStyle
	} else if n.Read {
		style = style.Foreground(theme.ColorGray)
	}

	return style.Render(line)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
