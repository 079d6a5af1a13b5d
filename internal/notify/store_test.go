package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zervos/desk/internal/bus"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/notify"
	"github.com/zervos/desk/internal/store"
	"github.com/zervos/desk/tests/testutil"
)

func TestSeedsDemoDataOnce(t *testing.T) {
	kv := testutil.NewTestStore(t)
	b := bus.New(nil)

	s := notify.NewStore(kv, b, nil)
	assert.Equal(t, 3, s.Count())

	var seeded bool
	require.True(t, kv.Read(store.KeyNotificationsSeeded, &seeded))
	assert.True(t, seeded)

	// A second store over the same data must not seed again.
	again := notify.NewStore(kv, b, nil)
	assert.Equal(t, 3, again.Count())
}

func TestClearedFeedStaysEmpty(t *testing.T) {
	kv := testutil.NewTestStore(t)
	b := bus.New(nil)

	s := notify.NewStore(kv, b, nil)
	s.ClearAll()

	again := notify.NewStore(kv, b, nil)
	assert.Equal(t, 0, again.Count())
}

func TestAddAssignsIdentityAndDefaults(t *testing.T) {
	kv := testutil.NewTestStore(t)
	s := notify.NewStore(kv, bus.New(nil), nil)
	s.ClearAll()

	n := s.Add(model.Notification{
		ID:       "caller-supplied",
		Title:    "Booking confirmed",
		Category: "bogus",
		Read:     true,
	})

	assert.NotEmpty(t, n.ID)
	assert.NotEqual(t, "caller-supplied", n.ID)
	assert.False(t, n.Read)
	assert.False(t, n.Date.IsZero())
	assert.Equal(t, model.CategorySystem, n.Category)
}

func TestAddPublishesBothEvents(t *testing.T) {
	kv := testutil.NewTestStore(t)
	b := bus.New(nil)
	s := notify.NewStore(kv, b, nil)
	s.ClearAll()

	var single model.Notification
	var updated []model.Notification
	b.Subscribe(bus.EventNewNotification, func(detail any) {
		single = detail.(model.Notification)
	})
	b.Subscribe(bus.EventNotificationsUpdated, func(detail any) {
		updated = detail.([]model.Notification)
	})

	n := s.Add(model.Notification{Title: "Hello", Category: model.CategoryBookings})

	assert.Equal(t, n.ID, single.ID)
	require.Len(t, updated, 1)
	assert.Equal(t, n.ID, updated[0].ID)
}

func TestMarkRead(t *testing.T) {
	kv := testutil.NewTestStore(t)
	s := notify.NewStore(kv, bus.New(nil), nil)
	s.ClearAll()

	n := s.Add(model.Notification{Title: "One", Category: model.CategorySystem})
	s.Add(model.Notification{Title: "Two", Category: model.CategorySystem})
	require.Equal(t, 2, s.UnreadCount())

	s.MarkRead(n.ID)
	assert.Equal(t, 1, s.UnreadCount())

	// Marking again or marking an unknown id changes nothing.
	s.MarkRead(n.ID)
	s.MarkRead("unknown")
	assert.Equal(t, 1, s.UnreadCount())
}

func TestMarkAllRead(t *testing.T) {
	kv := testutil.NewTestStore(t)
	s := notify.NewStore(kv, bus.New(nil), nil)

	require.Positive(t, s.UnreadCount())
	s.MarkAllRead()
	assert.Equal(t, 0, s.UnreadCount())
}

func TestClearAllEmptiesFeed(t *testing.T) {
	kv := testutil.NewTestStore(t)
	s := notify.NewStore(kv, bus.New(nil), nil)

	s.ClearAll()
	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.All())
}

func TestFilterByCategory(t *testing.T) {
	kv := testutil.NewTestStore(t)
	s := notify.NewStore(kv, bus.New(nil), nil)
	s.ClearAll()

	s.Add(model.Notification{Title: "Booking A", Category: model.CategoryBookings})
	s.Add(model.Notification{Title: "Invoice", Category: model.CategoryInvoices})
	s.Add(model.Notification{Title: "Booking B", Category: model.CategoryBookings})

	bookings := s.Filter(model.CategoryBookings)
	require.Len(t, bookings, 2)
	for _, n := range bookings {
		assert.Equal(t, model.CategoryBookings, n.Category)
	}

	assert.Len(t, s.Filter(notify.FilterAll), 3)
	assert.Empty(t, s.Filter(model.CategoryPOS))
}

func TestAllSortsByDateDescending(t *testing.T) {
	kv := testutil.NewTestStore(t)
	s := notify.NewStore(kv, bus.New(nil), nil)
	s.ClearAll()

	s.Add(model.Notification{Title: "first", Category: model.CategorySystem})
	s.Add(model.Notification{Title: "second", Category: model.CategorySystem})
	s.Add(model.Notification{Title: "third", Category: model.CategorySystem})

	all := s.All()
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i-1].Date.Before(all[i].Date),
			"feed must be newest first")
	}
}

func TestPersistsAcrossStoreLifetimes(t *testing.T) {
	kv := testutil.NewTestStore(t)
	b := bus.New(nil)

	s := notify.NewStore(kv, b, nil)
	s.ClearAll()
	n := s.Add(model.Notification{Title: "Durable", Category: model.CategorySystem})

	again := notify.NewStore(kv, b, nil)
	all := again.All()
	require.Len(t, all, 1)
	assert.Equal(t, n.ID, all[0].ID)
}
