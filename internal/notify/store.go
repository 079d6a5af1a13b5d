package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zervos/desk/internal/bus"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/store"
)

// FilterAll selects every category in Filter.
const FilterAll model.Category = "all"

// Store owns the canonical notification list. Every mutation persists
// the full collection back to the durable store and publishes on the
// event bus; UI components hold only derived, read-only projections.
type Store struct {
	kv     store.KV
	bus    *bus.Bus
	logger *zap.Logger

	mu sync.Mutex
}

// NewStore creates the notification store and seeds demo data if the
// persisted collection has never held anything.
func NewStore(kv store.KV, b *bus.Bus, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{kv: kv, bus: b, logger: logger}
	s.seed()
	return s
}

// seed writes a small set of example records exactly once per store
// lifetime. The seeded flag is persisted separately so a feed that was
// cleared stays empty instead of being re-seeded on the next start.
func (s *Store) seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var seeded bool
	if s.kv.Read(store.KeyNotificationsSeeded, &seeded) && seeded {
		return
	}

	list := s.load()
	if len(list) == 0 {
		now := time.Now()
		list = []model.Notification{
			{
				ID:       uuid.New().String(),
				Title:    "Welcome to Zervos",
				Body:     "Your booking dashboard is ready.",
				Category: model.CategorySystem,
				Date:     now,
			},
			{
				ID:       uuid.New().String(),
				Title:    "New booking",
				Body:     "Intro call with Jordan Lee.",
				Category: model.CategoryBookings,
				Path:     "/dashboard/appointments",
				Date:     now.Add(-time.Minute),
			},
			{
				ID:       uuid.New().String(),
				Title:    "Invoice paid",
				Body:     "INV-0001 was marked as paid.",
				Category: model.CategoryInvoices,
				Path:     "/dashboard/invoices",
				Date:     now.Add(-2 * time.Minute),
			},
		}
		s.kv.Write(store.KeyNotifications, list)
	}

	s.kv.Write(store.KeyNotificationsSeeded, true)
}

// load reads the stored collection. Callers hold s.mu.
func (s *Store) load() []model.Notification {
	var list []model.Notification
	s.kv.Read(store.KeyNotifications, &list)
	return list
}

// persist writes the collection and publishes notifications-updated.
// Callers hold s.mu.
func (s *Store) persist(list []model.Notification) {
	s.kv.Write(store.KeyNotifications, list)
	s.bus.Publish(bus.EventNotificationsUpdated, append([]model.Notification(nil), list...))
}

// Add appends a notification to the feed. The id, date, and unread flag
// are assigned here; whatever the caller set for them is ignored. The
// new record is stored newest-first, persisted, and published as a
// new-notification event before the created record is returned.
func (s *Store) Add(n model.Notification) model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.New().String()
	n.Date = time.Now()
	n.Read = false
	if !n.Category.Valid() {
		n.Category = model.CategorySystem
	}

	list := append([]model.Notification{n}, s.load()...)
	s.persist(list)
	s.bus.Publish(bus.EventNewNotification, n)

	return n
}

// MarkRead marks a single record as read. An unknown id is a no-op.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load()
	changed := false
	for i := range list {
		if list[i].ID == id && !list[i].Read {
			list[i].Read = true
			changed = true
		}
	}
	if !changed {
		return
	}
	s.persist(list)
}

// MarkAllRead marks every record as read.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load()
	for i := range list {
		list[i].Read = true
	}
	s.persist(list)
}

// ClearAll empties the feed.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persist([]model.Notification{})
}

// Snapshot returns the collection in stored (insertion) order. Display
// code must use All or Filter, which re-sort; Snapshot exists for the
// popup poller's count-delta logic, which depends on newest-first
// storage order.
func (s *Store) Snapshot() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]model.Notification(nil), s.load()...)
}

// All returns every record sorted by date descending.
func (s *Store) All() []model.Notification {
	return s.Filter(FilterAll)
}

// Filter returns the records matching category (or all of them for
// FilterAll), sorted by date descending. It never mutates the feed.
func (s *Store) Filter(category model.Category) []model.Notification {
	s.mu.Lock()
	list := s.load()
	s.mu.Unlock()

	var out []model.Notification
	for _, n := range list {
		if category == FilterAll || n.Category == category {
			out = append(out, n)
		}
	}

	// Insertion order and temporal order may diverge, so always re-sort.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})

	return out
}

// UnreadCount returns how many records are unread.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.load() {
		if !n.Read {
			count++
		}
	}
	return count
}

// Count returns the total number of stored records.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.load())
}
