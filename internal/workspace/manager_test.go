package workspace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zervos/desk/internal/bus"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/store"
	"github.com/zervos/desk/internal/workspace"
	"github.com/zervos/desk/tests/testutil"
)

func TestDeriveDefaultWithoutCompany(t *testing.T) {
	ws := workspace.DeriveDefault(nil)

	assert.Empty(t, ws.ID)
	assert.Equal(t, "My Workspace", ws.Name)
	assert.Equal(t, "MY", ws.Initials)
	assert.Equal(t, "blue", ws.Color)
	assert.Equal(t, "Default workspace", ws.Description)
	assert.Equal(t, model.WorkspaceActive, ws.Status)
	assert.Equal(t, "https://book.zervos.app/my-workspace", ws.BookingLink)
	assert.Equal(t, "INV", ws.Prefix)
	assert.Equal(t, 4, ws.MaxDigits)
}

func TestDeriveDefaultFromCompanyProfile(t *testing.T) {
	ws := workspace.DeriveDefault(&model.Company{
		Name:     "Acme Studio",
		Industry: "Design",
	})

	assert.Equal(t, "Acme Studio", ws.Name)
	assert.Equal(t, "AC", ws.Initials)
	assert.Equal(t, "Acme Studio (Design)", ws.Description)
	assert.Equal(t, "https://book.zervos.app/acme-studio", ws.BookingLink)
}

func TestInitCreatesDefaultWorkspace(t *testing.T) {
	kv := testutil.NewTestStore(t)

	m := workspace.NewManager(kv, bus.New(nil), nil)
	t.Cleanup(m.Close)

	all := m.All()
	require.Len(t, all, 1)
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, "My Workspace", all[0].Name)

	selected := m.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, all[0].ID, selected.ID)

	// Both the collection and the selection are persisted.
	var stored []model.Workspace
	require.True(t, kv.Read(store.KeyWorkspaces, &stored))
	assert.Len(t, stored, 1)

	var selectedID string
	require.True(t, kv.Read(store.KeySelectedWorkspace, &selectedID))
	assert.Equal(t, all[0].ID, selectedID)
}

func TestInitResyncsSingleWorkspaceToCompanyName(t *testing.T) {
	kv := testutil.NewTestStore(t)
	kv.Write(store.KeyCompany, model.Company{Name: "Acme", Industry: "Design"})
	kv.Write(store.KeyWorkspaces, []model.Workspace{
		{ID: "1", Name: "Old Name", Initials: "OL", Status: model.WorkspaceActive},
	})

	m := workspace.NewManager(kv, bus.New(nil), nil)
	t.Cleanup(m.Close)

	all := m.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Acme", all[0].Name)
	assert.Equal(t, "AC", all[0].Initials)
	assert.Equal(t, "Acme (Design)", all[0].Description)
}

func TestInitNeverResyncsMultipleWorkspaces(t *testing.T) {
	kv := testutil.NewTestStore(t)
	kv.Write(store.KeyCompany, model.Company{Name: "Acme"})
	kv.Write(store.KeyWorkspaces, []model.Workspace{
		{ID: "1", Name: "First", Initials: "FI"},
		{ID: "2", Name: "Second", Initials: "SE"},
	})

	m := workspace.NewManager(kv, bus.New(nil), nil)
	t.Cleanup(m.Close)

	all := m.All()
	require.Len(t, all, 2)
	assert.Equal(t, "First", all[0].Name)
	assert.Equal(t, "Second", all[1].Name)
}

func TestInitHealsDanglingSelection(t *testing.T) {
	kv := testutil.NewTestStore(t)
	kv.Write(store.KeyWorkspaces, []model.Workspace{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Beta"},
	})
	kv.Write(store.KeySelectedWorkspace, "missing")

	m := workspace.NewManager(kv, bus.New(nil), nil)
	t.Cleanup(m.Close)

	selected := m.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, "a", selected.ID)

	var selectedID string
	require.True(t, kv.Read(store.KeySelectedWorkspace, &selectedID))
	assert.Equal(t, "a", selectedID)
}

func TestSetSelected(t *testing.T) {
	kv := testutil.NewTestStore(t)
	kv.Write(store.KeyWorkspaces, []model.Workspace{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Beta"},
	})

	m := workspace.NewManager(kv, bus.New(nil), nil)
	t.Cleanup(m.Close)

	all := m.All()
	m.SetSelected(&all[1])

	selected := m.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, "b", selected.ID)

	m.SetSelected(nil)
	assert.Nil(t, m.Selected())
}

func TestSetAllReconcilesSelection(t *testing.T) {
	kv := testutil.NewTestStore(t)
	kv.Write(store.KeyWorkspaces, []model.Workspace{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Beta"},
	})
	kv.Write(store.KeySelectedWorkspace, "a")

	m := workspace.NewManager(kv, bus.New(nil), nil)
	t.Cleanup(m.Close)

	// Removing the selected workspace clears the selection, and the
	// broadcast re-init immediately heals it to the first survivor.
	m.SetAll([]model.Workspace{{ID: "b", Name: "Beta"}})

	all := m.All()
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].ID)

	selected := m.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, "b", selected.ID)
}

func TestSetAllBroadcastsChange(t *testing.T) {
	kv := testutil.NewTestStore(t)
	b := bus.New(nil)

	m := workspace.NewManager(kv, b, nil)
	t.Cleanup(m.Close)

	fired := 0
	b.Subscribe(bus.EventLocalStorageChanged, func(any) { fired++ })

	m.SetAll(append(m.All(), model.Workspace{ID: "x", Name: "Extra"}))

	assert.Equal(t, 1, fired)
}

func TestInitReactsToForeignCompanyWrite(t *testing.T) {
	kv := testutil.NewTestStore(t)
	b := bus.New(nil)

	m := workspace.NewManager(kv, b, nil)
	t.Cleanup(m.Close)

	kv.Write(store.KeyCompany, model.Company{Name: "Fresh Co"})
	b.Publish(bus.EventStorage, store.KeyCompany)

	all := m.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Fresh Co", all[0].Name)
	assert.Equal(t, "FR", all[0].Initials)
}

func TestInitIgnoresUnrelatedStorageEvents(t *testing.T) {
	kv := testutil.NewTestStore(t)
	b := bus.New(nil)

	m := workspace.NewManager(kv, b, nil)
	t.Cleanup(m.Close)

	before := m.All()[0].Name
	kv.Write(store.KeyCompany, model.Company{Name: "Fresh Co"})
	b.Publish(bus.EventStorage, store.KeyInvoices)

	assert.Equal(t, before, m.All()[0].Name)
}
