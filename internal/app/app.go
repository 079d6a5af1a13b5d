package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zervos/desk/internal/bus"
	"github.com/zervos/desk/internal/invoice"
	"github.com/zervos/desk/internal/keys"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/notify"
	"github.com/zervos/desk/internal/store"
	"github.com/zervos/desk/internal/team"
	"github.com/zervos/desk/internal/ui"
	helpview "github.com/zervos/desk/internal/ui/help"
	invoicesview "github.com/zervos/desk/internal/ui/invoices"
	notificationsview "github.com/zervos/desk/internal/ui/notifications"
	popupview "github.com/zervos/desk/internal/ui/popup"
	teamview "github.com/zervos/desk/internal/ui/team"
	workspacesview "github.com/zervos/desk/internal/ui/workspaces"
	"github.com/zervos/desk/internal/workspace"
)

// BusEventMsg carries one event-bus delivery into the Bubble Tea loop.
type BusEventMsg struct {
	Event  string
	Detail any
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewNotifications ViewState = iota
	ViewInvoices
	ViewTeam
	ViewWorkspaces
	ViewHelp
)

// Deps bundles the services the root model operates on.
type Deps struct {
	Bus       *bus.Bus
	Notes     *notify.Store
	Popups    *notify.Controller
	Workspace *workspace.Manager
	Invoices  *invoice.Service
	Team      *team.Service
	Watcher   *store.Watcher
	Config    *model.AppConfig
}

// Model is the root Bubble Tea model that manages view routing, the
// header badge, the popup overlay, and event-bus bridging.
type Model struct {
	deps         Deps
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	feedView     notificationsview.Model
	invoiceView  invoicesview.Model
	teamView     teamview.Model
	wsView       workspacesview.Model
	helpView     helpview.Model
	popupView    popupview.Model
	eventCh      chan BusEventMsg
	unsubs       []func()
	unreadCount  int
	statusNote   string
	ready        bool
}

// New creates the root application model and bridges the event bus into
// the Bubble Tea message loop.
func New(deps Deps) Model {
	k := keys.DefaultKeyMap()

	pollInterval := durationMS(deps.Config.Popup.PollIntervalMS, 1000)

	m := Model{
		deps:        deps,
		currentView: ViewNotifications,
		keys:        k,
		feedView:    notificationsview.New(deps.Notes, k, 80, 24),
		invoiceView: invoicesview.New(deps.Invoices, deps.Workspace, k, 80, 24),
		teamView:    teamview.New(deps.Team, deps.Workspace, k, 80, 24),
		wsView:      workspacesview.New(deps.Workspace, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		popupView:   popupview.New(deps.Popups, k, pollInterval, 80),
		eventCh:     make(chan BusEventMsg, 64),
		unreadCount: deps.Notes.UnreadCount(),
	}

	// Forward bus events into the tea loop. Delivery is non-blocking:
	// a full channel drops the event, and the next reload catches up.
	forward := func(event string) bus.Handler {
		return func(detail any) {
			select {
			case m.eventCh <- BusEventMsg{Event: event, Detail: detail}:
			default:
			}
		}
	}
	for _, event := range []string{
		bus.EventNotificationsUpdated,
		bus.EventTeamMembersUpdated,
		bus.EventLocalStorageChanged,
		bus.EventStorage,
	} {
		m.unsubs = append(m.unsubs, deps.Bus.Subscribe(event, forward(event)))
	}

	return m
}

// Init starts the popup tick loop and the bus-event subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.popupView.Init(),
		m.waitForEvent(),
	)
}

// waitForEvent returns a command that delivers the next bus event.
func (m Model) waitForEvent() tea.Cmd {
	ch := m.eventCh
	return func() tea.Msg {
		return <-ch
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.feedView.SetSize(contentWidth, contentHeight)
		m.invoiceView.SetSize(contentWidth, contentHeight)
		m.teamView.SetSize(contentWidth, contentHeight)
		m.wsView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.popupView.SetSize(contentWidth)
		return m.updateActiveView(msg)

	case BusEventMsg:
		m.applyBusEvent(msg)
		return m, m.waitForEvent()

	case popupview.TickMsg:
		var cmd tea.Cmd
		m.popupView, cmd = m.popupView.Update(msg)
		return m, cmd

	case notificationsview.NavigateMsg:
		m.statusNote = ""
		switch {
		case strings.HasPrefix(msg.Path, "/dashboard/invoices"):
			m.currentView = ViewInvoices
		case strings.HasPrefix(msg.Path, "/dashboard/team"):
			m.currentView = ViewTeam
		default:
			m.statusNote = msg.Path
		}
		return m, nil

	case notificationsview.ClosedMsg:
		return m, nil

	case invoicesview.CreatedMsg:
		m.statusNote = fmt.Sprintf("created %s", msg.Invoice.Number)
		return m, nil

	case workspacesview.ChangedMsg:
		m.teamView.Reload()
		m.invoiceView.Reload()
		return m, nil

	case tea.KeyMsg:
		if model, cmd, handled := m.handleGlobalKeys(msg); handled {
			return model, cmd
		}
		// Toast dismissal works from any view.
		if key.Matches(msg, m.keys.DismissToast) {
			var cmd tea.Cmd
			m.popupView, cmd = m.popupView.Update(msg)
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// applyBusEvent refreshes the projections affected by a bus event.
func (m *Model) applyBusEvent(msg BusEventMsg) {
	switch msg.Event {
	case bus.EventNotificationsUpdated:
		m.unreadCount = m.deps.Notes.UnreadCount()
		m.feedView.Reload()

	case bus.EventTeamMembersUpdated:
		m.teamView.Reload()

	case bus.EventLocalStorageChanged, bus.EventStorage:
		m.wsView.Reload()
		m.teamView.Reload()
		m.invoiceView.Reload()
		m.unreadCount = m.deps.Notes.UnreadCount()
		m.feedView.Reload()
	}
}

// handleGlobalKeys processes keys that work regardless of active view.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	// Views with an active form swallow printable keys.
	if m.formActive() {
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		return m, nil, false
	}

	switch {
	case msg.String() == "ctrl+c", key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Notifications):
		m.currentView = ViewNotifications
		return m, nil, true

	case key.Matches(msg, m.keys.Invoices):
		m.currentView = ViewInvoices
		return m, nil, true

	case key.Matches(msg, m.keys.Team):
		m.currentView = ViewTeam
		return m, nil, true

	case key.Matches(msg, m.keys.Workspaces):
		m.currentView = ViewWorkspaces
		return m, nil, true

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
	}

	return m, nil, false
}

// formActive reports whether the active view is capturing text input.
func (m Model) formActive() bool {
	switch m.currentView {
	case ViewInvoices:
		return m.invoiceView.FormActive()
	case ViewTeam:
		return m.teamView.FormActive()
	case ViewWorkspaces:
		return m.wsView.FormActive()
	}
	return false
}

// quit tears down subscriptions and background work before exiting.
func (m Model) quit() (tea.Model, tea.Cmd, bool) {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.deps.Popups.Close()
	m.deps.Workspace.Close()
	if m.deps.Watcher != nil {
		m.deps.Watcher.Stop()
	}
	return m, tea.Quit, true
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewNotifications:
		m.feedView, cmd = m.feedView.Update(msg)
	case ViewInvoices:
		m.invoiceView, cmd = m.invoiceView.Update(msg)
	case ViewTeam:
		m.teamView, cmd = m.teamView.Update(msg)
	case ViewWorkspaces:
		m.wsView, cmd = m.wsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI with the popup overlay above the
// active content.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.badge())

	content := m.renderContent()
	if overlay := m.popupView.View(); overlay != "" {
		content = overlay + "\n" + content
	}

	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// headerTitle includes the selected workspace.
func (m Model) headerTitle() string {
	title := "Zervos"
	if ws := m.deps.Workspace.Selected(); ws != nil {
		title = fmt.Sprintf("Zervos · %s %s", ws.Initials, ws.Name)
	}
	return title
}

// badge renders the unread count segment, empty when all read.
func (m Model) badge() string {
	if m.unreadCount == 0 {
		return ""
	}
	return fmt.Sprintf("%d unread", m.unreadCount)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewNotifications:
		return m.feedView.View()
	case ViewInvoices:
		return m.invoiceView.View()
	case ViewTeam:
		return m.teamView.View()
	case ViewWorkspaces:
		return m.wsView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusNote != "" {
		return m.statusNote
	}

	switch m.currentView {
	case ViewNotifications:
		return "enter open | tab filter | m mark all read | C clear | 2 invoices | 4 workspaces | ? help"
	case ViewInvoices:
		return "n new | enter advance status | 1 notifications | ? help"
	case ViewTeam:
		return "n add | d remove | 1 notifications | ? help"
	case ViewWorkspaces:
		return "enter select | n new | d delete | 1 notifications | ? help"
	case ViewHelp:
		return "? close help | esc back"
	default:
		return "q quit | ? help"
	}
}

// durationMS converts a millisecond config value with a fallback.
func durationMS(ms, fallback int) time.Duration {
	if ms <= 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}
