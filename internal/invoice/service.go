// Package invoice manages the locally persisted invoice collection. It
// follows the persist+notify pattern: every creation writes the blob,
// raises a notification, and attempts a best-effort email.
package invoice

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zervos/desk/internal/mailer"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/notify"
	"github.com/zervos/desk/internal/store"
)

// Service owns invoice persistence and its side effects.
type Service struct {
	kv     store.KV
	notes  *notify.Store
	mailer mailer.Mailer
	logger *zap.Logger

	mu sync.Mutex
}

// NewService creates the invoice service.
func NewService(kv store.KV, notes *notify.Store, m mailer.Mailer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{kv: kv, notes: notes, mailer: m, logger: logger}
}

// load reads the stored collection. Callers hold s.mu.
func (s *Service) load() []model.Invoice {
	var list []model.Invoice
	s.kv.Read(store.KeyInvoices, &list)
	return list
}

// List returns all invoices, newest first.
func (s *Service) List() []model.Invoice {
	s.mu.Lock()
	list := s.load()
	s.mu.Unlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// Create persists a new invoice and raises the side effects: an
// invoices-category notification, and an email attempt whose failure is
// logged but never reverts the already-committed invoice. The numbering
// scheme comes from the workspace prefix and digit width; ws may be nil.
func (s *Service) Create(inv model.Invoice, ws *model.Workspace) model.Invoice {
	s.mu.Lock()

	inv.ID = uuid.New().String()
	inv.CreatedAt = time.Now()
	if inv.Status == "" {
		inv.Status = model.InvoiceDraft
	}
	if inv.Currency == "" {
		inv.Currency = "USD"
	}
	if ws != nil {
		inv.WorkspaceID = ws.ID
	}

	list := s.load()
	inv.Number = nextNumber(ws, len(list)+1)

	list = append([]model.Invoice{inv}, list...)
	s.kv.Write(store.KeyInvoices, list)

	s.mu.Unlock()

	s.notes.Add(model.Notification{
		Title:    fmt.Sprintf("Invoice %s created", inv.Number),
		Body:     fmt.Sprintf("%s, %.2f %s", inv.CustomerName, inv.Amount, inv.Currency),
		Category: model.CategoryInvoices,
		Path:     "/dashboard/invoices",
	})

	if err := s.mailer.SendInvoice(inv); err != nil {
		s.logger.Warn("sending invoice email failed",
			zap.String("invoice", inv.Number),
			zap.Error(err),
		)
	}

	return inv
}

// SetStatus updates the status of one invoice. Unknown ids are no-ops.
func (s *Service) SetStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load()
	changed := false
	for i := range list {
		if list[i].ID == id && list[i].Status != status {
			list[i].Status = status
			changed = true
		}
	}
	if !changed {
		return
	}
	s.kv.Write(store.KeyInvoices, list)
}

// nextNumber formats the invoice number from the workspace prefix and a
// zero-padded sequence bounded by the workspace digit width.
func nextNumber(ws *model.Workspace, seq int) string {
	prefix := "INV"
	digits := 4
	if ws != nil {
		if ws.Prefix != "" {
			prefix = ws.Prefix
		}
		if ws.MaxDigits > 0 {
			digits = ws.MaxDigits
		}
	}
	return fmt.Sprintf("%s-%0*d", prefix, digits, seq)
}
