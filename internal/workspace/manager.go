// Package workspace owns the tenant workspace collection and the active
// workspace selection, keeping both consistent with the onboarding
// company profile across contexts.
package workspace

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zervos/desk/internal/bus"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/store"
)

// Manager tracks the workspace collection and the selected workspace.
// Initialization is idempotent and re-runs whenever the bus signals a
// local change (localStorageChanged) or another context wrote the
// company profile (storage event filtered to the company key).
type Manager struct {
	kv     store.KV
	bus    *bus.Bus
	logger *zap.Logger

	mu         sync.Mutex
	workspaces []model.Workspace
	selected   *model.Workspace
	unsubs     []func()
}

// NewManager creates a manager, runs initialization once, and
// subscribes to both reactivity paths.
func NewManager(kv store.KV, b *bus.Bus, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{kv: kv, bus: b, logger: logger}

	m.Init()

	m.unsubs = append(m.unsubs,
		b.Subscribe(bus.EventLocalStorageChanged, func(any) { m.Init() }),
		b.Subscribe(bus.EventStorage, func(detail any) {
			if key, ok := detail.(string); ok && key == store.KeyCompany {
				m.Init()
			}
		}),
	)

	return m
}

// Close removes the bus subscriptions.
func (m *Manager) Close() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}

// Init loads the persisted state and self-heals it:
//
//  1. an empty collection gets exactly one default workspace derived
//     from the company profile (or fixed fallbacks),
//  2. a single workspace whose name diverged from the company profile
//     is resynchronized in place — never when more than one workspace
//     exists, since the target would be ambiguous,
//  3. a selection pointing at a missing id falls back to the first
//     workspace, or to no selection when the collection is empty.
//
// Init is safe to re-run at any time.
func (m *Manager) Init() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var company *model.Company
	var c model.Company
	if m.kv.Read(store.KeyCompany, &c) {
		company = &c
	}

	var workspaces []model.Workspace
	m.kv.Read(store.KeyWorkspaces, &workspaces)

	switch {
	case len(workspaces) == 0:
		ws := DeriveDefault(company)
		ws.ID = NewWorkspaceID()
		workspaces = []model.Workspace{ws}
		m.kv.Write(store.KeyWorkspaces, workspaces)
		m.logger.Info("created default workspace", zap.String("name", ws.Name))

	case len(workspaces) == 1 && company != nil && company.Name != "" &&
		workspaces[0].Name != company.Name:
		workspaces[0].Name = company.Name
		workspaces[0].Initials = model.Initials(company.Name)
		workspaces[0].Description = deriveDescription(company)
		m.kv.Write(store.KeyWorkspaces, workspaces)
		m.logger.Info("resynced workspace to company profile",
			zap.String("name", company.Name))
	}

	var selectedID string
	m.kv.Read(store.KeySelectedWorkspace, &selectedID)

	selected := findWorkspace(workspaces, selectedID)
	if selected == nil && len(workspaces) > 0 {
		selected = &workspaces[0]
		m.kv.Write(store.KeySelectedWorkspace, selected.ID)
	}

	m.workspaces = workspaces
	if selected != nil {
		ws := *selected
		m.selected = &ws
	} else {
		m.selected = nil
	}
}

// Selected returns a copy of the selected workspace, or nil.
func (m *Manager) Selected() *model.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == nil {
		return nil
	}
	ws := *m.selected
	return &ws
}

// SetSelected persists the selection. Passing nil clears it.
func (m *Manager) SetSelected(ws *model.Workspace) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ws == nil {
		m.selected = nil
		m.kv.Remove(store.KeySelectedWorkspace)
		return
	}

	copied := *ws
	m.selected = &copied
	m.kv.Write(store.KeySelectedWorkspace, ws.ID)
}

// All returns a copy of the workspace collection.
func (m *Manager) All() []model.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]model.Workspace(nil), m.workspaces...)
}

// SetAll replaces the collection, reconciles the selection against it
// (kept and refreshed when the id survives, cleared otherwise), and
// broadcasts localStorageChanged so other mounted contexts converge.
func (m *Manager) SetAll(workspaces []model.Workspace) {
	m.mu.Lock()

	m.workspaces = append([]model.Workspace(nil), workspaces...)
	m.kv.Write(store.KeyWorkspaces, m.workspaces)

	if m.selected != nil {
		if refreshed := findWorkspace(m.workspaces, m.selected.ID); refreshed != nil {
			ws := *refreshed
			m.selected = &ws
			m.kv.Write(store.KeySelectedWorkspace, ws.ID)
		} else {
			m.selected = nil
			m.kv.Remove(store.KeySelectedWorkspace)
		}
	}

	m.mu.Unlock()

	m.bus.Publish(bus.EventLocalStorageChanged, nil)
}

// findWorkspace returns a pointer into workspaces for the given id.
func findWorkspace(workspaces []model.Workspace, id string) *model.Workspace {
	if id == "" {
		return nil
	}
	for i := range workspaces {
		if workspaces[i].ID == id {
			return &workspaces[i]
		}
	}
	return nil
}

// NewWorkspaceID derives a workspace id from the creation timestamp.
func NewWorkspaceID() string {
	return fmt.Sprintf("%d", time.Now().UnixMilli())
}

// DeriveDefault synthesizes the default workspace from the company
// profile. It is pure and total: every field has a fixed fallback, and
// the id is left for the caller to assign.
func DeriveDefault(company *model.Company) model.Workspace {
	name := "My Workspace"
	if company != nil && strings.TrimSpace(company.Name) != "" {
		name = strings.TrimSpace(company.Name)
	}

	return model.Workspace{
		Name:        name,
		Initials:    model.Initials(name),
		Color:       "blue",
		Description: deriveDescription(company),
		Status:      model.WorkspaceActive,
		BookingLink: bookingLink(name),
		Prefix:      "INV",
		MaxDigits:   4,
	}
}

// deriveDescription builds the workspace description from the profile.
func deriveDescription(company *model.Company) string {
	if company == nil {
		return "Default workspace"
	}
	if company.Industry != "" {
		return fmt.Sprintf("%s (%s)", company.Name, company.Industry)
	}
	if company.Name != "" {
		return company.Name
	}
	return "Default workspace"
}

// bookingLink derives the public booking URL from the workspace name.
func bookingLink(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	return "https://book.zervos.app/" + slug
}
