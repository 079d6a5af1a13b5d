package invoice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zervos/desk/internal/bus"
	"github.com/zervos/desk/internal/invoice"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/notify"
	"github.com/zervos/desk/tests/testutil"
)

// fakeMailer records delivery attempts and fails on demand.
type fakeMailer struct {
	sent []model.Invoice
	err  error
}

func (f *fakeMailer) SendInvoice(inv model.Invoice) error {
	f.sent = append(f.sent, inv)
	return f.err
}

func newServiceFixture(t *testing.T) (*invoice.Service, *notify.Store, *fakeMailer) {
	t.Helper()

	kv := testutil.NewTestStore(t)
	notes := notify.NewStore(kv, bus.New(nil), nil)
	notes.ClearAll()

	m := &fakeMailer{}
	return invoice.NewService(kv, notes, m, nil), notes, m
}

func TestCreateAssignsDefaults(t *testing.T) {
	svc, _, _ := newServiceFixture(t)

	inv := svc.Create(model.Invoice{CustomerName: "Jordan Lee", Amount: 120}, nil)

	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, "INV-0001", inv.Number)
	assert.Equal(t, model.InvoiceDraft, inv.Status)
	assert.Equal(t, "USD", inv.Currency)
	assert.False(t, inv.CreatedAt.IsZero())
}

func TestCreateNumbersSequentially(t *testing.T) {
	svc, _, _ := newServiceFixture(t)

	svc.Create(model.Invoice{CustomerName: "One"}, nil)
	second := svc.Create(model.Invoice{CustomerName: "Two"}, nil)

	assert.Equal(t, "INV-0002", second.Number)

	list := svc.List()
	require.Len(t, list, 2)
	assert.Equal(t, "INV-0002", list[0].Number, "newest first")
}

func TestCreateUsesWorkspaceNumberingScheme(t *testing.T) {
	svc, _, _ := newServiceFixture(t)

	ws := &model.Workspace{ID: "w1", Prefix: "ACM", MaxDigits: 3}
	inv := svc.Create(model.Invoice{CustomerName: "Jo"}, ws)

	assert.Equal(t, "ACM-001", inv.Number)
	assert.Equal(t, "w1", inv.WorkspaceID)
}

func TestCreateRaisesNotification(t *testing.T) {
	svc, notes, _ := newServiceFixture(t)

	inv := svc.Create(model.Invoice{CustomerName: "Jo", Amount: 50}, nil)

	all := notes.All()
	require.Len(t, all, 1)
	assert.Equal(t, model.CategoryInvoices, all[0].Category)
	assert.Contains(t, all[0].Title, inv.Number)
	assert.Equal(t, "/dashboard/invoices", all[0].Path)
}

func TestCreateAttemptsEmail(t *testing.T) {
	svc, _, m := newServiceFixture(t)

	inv := svc.Create(model.Invoice{
		CustomerName:  "Jo",
		CustomerEmail: "jo@example.com",
	}, nil)

	require.Len(t, m.sent, 1)
	assert.Equal(t, inv.Number, m.sent[0].Number)
}

func TestMailerFailureDoesNotRollBack(t *testing.T) {
	svc, notes, m := newServiceFixture(t)
	m.err = errors.New("smtp down")

	svc.Create(model.Invoice{CustomerName: "Jo"}, nil)

	assert.Len(t, svc.List(), 1)
	assert.Len(t, notes.All(), 1)
}

func TestSetStatus(t *testing.T) {
	svc, _, _ := newServiceFixture(t)

	inv := svc.Create(model.Invoice{CustomerName: "Jo"}, nil)
	svc.SetStatus(inv.ID, model.InvoicePaid)

	list := svc.List()
	require.Len(t, list, 1)
	assert.Equal(t, model.InvoicePaid, list[0].Status)

	// Unknown ids are no-ops.
	svc.SetStatus("missing", model.InvoiceSent)
	assert.Equal(t, model.InvoicePaid, svc.List()[0].Status)
}
