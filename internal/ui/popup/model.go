package popup

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zervos/desk/internal/keys"
	"github.com/zervos/desk/internal/notify"
	"github.com/zervos/desk/internal/theme"
)

// TickMsg drives the poll/expiry loop.
type TickMsg time.Time

// Model renders the transient toast overlay in the top-right corner of
// the content area and drives the controller's polling path.
type Model struct {
	controller *notify.Controller
	keys       *keys.KeyMap
	interval   time.Duration
	width      int
}

// New creates the popup overlay view.
func New(c *notify.Controller, k *keys.KeyMap, interval time.Duration, width int) Model {
	if interval <= 0 {
		interval = time.Second
	}
	return Model{
		controller: c,
		keys:       k,
		interval:   interval,
		width:      width,
	}
}

// Init schedules the first tick.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// tick returns the command for the next poll tick.
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles tick and dismiss messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.controller.Poll(time.Time(msg))
		return m, m.tick()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.DismissToast) {
			toasts := m.controller.Visible(time.Now())
			if len(toasts) > 0 {
				m.controller.Dismiss(toasts[0].PopupID)
			}
		}
	}

	return m, nil
}

// View renders the visible toasts as a right-aligned stack. An empty
// string means nothing is showing.
func (m Model) View() string {
	now := time.Now()
	toasts := m.controller.Visible(now)
	if len(toasts) == 0 {
		return ""
	}

	var blocks []string
	for _, t := range toasts {
		blocks = append(blocks, m.renderToast(t, now))
	}
	if pending := m.controller.PendingCount(); pending > 0 {
		blocks = append(blocks, theme.HelpStyle.Render(
			fmt.Sprintf("+%d more pending", pending),
		))
	}

	stack := lipgloss.JoinVertical(lipgloss.Right, blocks...)
	return lipgloss.NewStyle().
		Width(m.width).
		Align(lipgloss.Right).
		Render(stack)
}

// renderToast renders one toast with a remaining-time affordance.
func (m Model) renderToast(t notify.Toast, now time.Time) string {
	header := fmt.Sprintf("%s %s",
		t.Category.Icon(),
		theme.UnreadItemStyle.Render(t.Title),
	)

	lines := []string{header}
	if t.Body != "" {
		lines = append(lines, t.Body)
	}
	lines = append(lines, m.renderProgress(t, now))

	return theme.ToastStyle.Render(strings.Join(lines, "\n"))
}

// renderProgress draws the shrinking bar showing time until auto-dismiss.
func (m Model) renderProgress(t notify.Toast, now time.Time) string {
	const barWidth = 24

	total := m.controller.Duration()
	left := t.Deadline.Sub(now)
	if left < 0 {
		left = 0
	}

	filled := int(float64(barWidth) * float64(left) / float64(total))
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat("─", filled) + strings.Repeat(" ", barWidth-filled)
	return theme.HelpStyle.Render(bar)
}

// SetSize updates the overlay width.
func (m *Model) SetSize(width int) {
	m.width = width
}
