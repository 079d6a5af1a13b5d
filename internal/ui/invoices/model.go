package invoices

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/zervos/desk/internal/invoice"
	"github.com/zervos/desk/internal/keys"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/theme"
	"github.com/zervos/desk/internal/workspace"
)

// CreatedMsg is sent after an invoice was created.
type CreatedMsg struct {
	Invoice model.Invoice
}

// statusCycle is the order statuses advance through on select.
var statusCycle = map[string]string{
	model.InvoiceDraft: model.InvoiceSent,
	model.InvoiceSent:  model.InvoicePaid,
	model.InvoicePaid:  model.InvoicePaid,
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	customerName  string
	customerEmail string
	amount        string
	notes         string
}

// Model is the invoice list and create-form view.
type Model struct {
	service *invoice.Service
	manager *workspace.Manager
	keys    *keys.KeyMap
	items   []model.Invoice
	cursor  int
	form    *huh.Form
	fb      *formBindings
	width   int
	height  int
}

// New creates the invoice view.
func New(svc *invoice.Service, mgr *workspace.Manager, k *keys.KeyMap, width, height int) Model {
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

// Reload refreshes the list from the service.
func (m *Model) Reload() {
	m.reload()
}

// FormActive reports whether the create form is capturing input.
func (m Model) FormActive() bool {
	return m.form != nil
}

func (m *Model) reload() {
	m.items = m.service.List()
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles messages for the invoice view.
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
		// Advance Draft -> Sent -> Paid.
		if m.cursor < len(m.items) {
			inv := m.items[m.cursor]
			m.service.SetStatus(inv.ID, statusCycle[inv.Status])
			m.reload()
		}

	case key.Matches(keyMsg, m.keys.New):
		*m.fb = formBindings{}
		m.form = m.buildForm()
		return m, m.form.Init()
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
		amount, _ := strconv.ParseFloat(m.fb.amount, 64)
		created := m.service.Create(model.Invoice{
			CustomerName:  m.fb.customerName,
			CustomerEmail: m.fb.customerEmail,
			Amount:        amount,
			Notes:         m.fb.notes,
		}, m.manager.Selected())

		m.form = nil
		m.reload()
		return m, tea.Batch(cmd, func() tea.Msg {
			return CreatedMsg{Invoice: created}
		})
	}

	return m, cmd
}

// buildForm constructs the create-invoice form.
func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Customer").
				Value(&m.fb.customerName).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("customer is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Email").
				Value(&m.fb.customerEmail),
			huh.NewInput().
				Title("Amount").
				Value(&m.fb.amount).
				Validate(func(s string) error {
					if _, err := strconv.ParseFloat(s, 64); err != nil {
						return fmt.Errorf("amount must be a number")
					}
					return nil
				}),
			huh.NewText().
				Title("Notes").
				Value(&m.fb.notes),
		),
	).WithWidth(m.width - 4)
}

// View renders the invoice list or the active form.
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
			Render("No invoices. Press n to create one.")
	}

	var rows []string
	for i, inv := range m.items {
		line := fmt.Sprintf("%s  %s  %.2f %s  %s",
			inv.Number,
			inv.CustomerName,
			inv.Amount,
			inv.Currency,
			statusStyle(inv.Status).Render(inv.Status),
		)

		style := theme.ListItemStyle
		if i == m.cursor {
			style = theme.SelectedItemStyle
		}
		rows = append(rows, style.Render(line))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// statusStyle colors an invoice status label.
func statusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch status {
	case model.InvoicePaid:
		return base.Foreground(theme.ColorGreen)
	case model.InvoiceSent:
		return base.Foreground(theme.ColorYellow)
	default:
		return base.Foreground(theme.ColorGray)
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
