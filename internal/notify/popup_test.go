package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zervos/desk/internal/bus"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/notify"
	"github.com/zervos/desk/tests/testutil"
)

// newControllerFixture builds an empty feed, its bus, and a controller
// with the given visibility cap and toast duration.
func newControllerFixture(t *testing.T, maxShown int, duration time.Duration) (*notify.Store, *bus.Bus, *notify.Controller) {
	t.Helper()

	kv := testutil.NewTestStore(t)
	b := bus.New(nil)
	notes := notify.NewStore(kv, b, nil)
	notes.ClearAll()

	c := notify.NewController(notes, b, nil, maxShown, duration, nil)
	t.Cleanup(c.Close)

	return notes, b, c
}

func TestEventPathShowsToastImmediately(t *testing.T) {
	notes, _, c := newControllerFixture(t, 5, 5*time.Second)
	now := time.Now()

	n := notes.Add(model.Notification{Title: "Booked", Category: model.CategoryBookings})

	vis := c.Visible(now)
	require.Len(t, vis, 1)
	assert.Equal(t, n.ID, vis[0].Notification.ID)
	assert.NotEmpty(t, vis[0].PopupID)
	assert.NotEqual(t, n.ID, vis[0].PopupID)
}

func TestPollingDoesNotDuplicateEventDeliveries(t *testing.T) {
	notes, _, c := newControllerFixture(t, 5, 5*time.Second)
	now := time.Now()

	notes.Add(model.Notification{Title: "Booked", Category: model.CategoryBookings})

	// The poll sees the count grow, but the record was already delivered
	// through the event path and is suppressed.
	c.Poll(now)

	assert.Len(t, c.Visible(now), 1)
	assert.Equal(t, 0, c.PendingCount())
}

func TestPollingDeliversForeignAppends(t *testing.T) {
	kv := testutil.NewTestStore(t)
	b := bus.New(nil)
	notes := notify.NewStore(kv, b, nil)
	notes.ClearAll()

	c := notify.NewController(notes, b, nil, 5, 5*time.Second, nil)
	t.Cleanup(c.Close)

	// A second store over the same data stands in for another context:
	// its events go to a different bus the controller never sees.
	foreign := notify.NewStore(kv, bus.New(nil), nil)
	foreign.Add(model.Notification{Title: "From elsewhere", Category: model.CategorySystem})

	now := time.Now()
	c.Poll(now)

	vis := c.Visible(now)
	require.Len(t, vis, 1)
	assert.Equal(t, "From elsewhere", vis[0].Title)
}

func TestExistingHistoryIsNotReplayed(t *testing.T) {
	kv := testutil.NewTestStore(t)
	b := bus.New(nil)
	notes := notify.NewStore(kv, b, nil)
	require.Positive(t, notes.Count())

	// The count cursor seeds from the feed as it exists at construction.
	c := notify.NewController(notes, b, nil, 5, 5*time.Second, nil)
	t.Cleanup(c.Close)

	now := time.Now()
	c.Poll(now)

	assert.Empty(t, c.Visible(now))
	assert.Equal(t, 0, c.PendingCount())
}

func TestOverflowQueuesWithoutDropping(t *testing.T) {
	notes, _, c := newControllerFixture(t, 2, 5*time.Second)
	base := time.Now()

	for i := 0; i < 5; i++ {
		notes.Add(model.Notification{Title: "n", Category: model.CategorySystem})
	}

	assert.Len(t, c.Visible(base), 2)
	assert.Equal(t, 3, c.PendingCount())

	// Expired toasts free their slots for the queue.
	assert.Len(t, c.Visible(base.Add(6*time.Second)), 2)
	assert.Equal(t, 1, c.PendingCount())

	assert.Len(t, c.Visible(base.Add(12*time.Second)), 1)
	assert.Equal(t, 0, c.PendingCount())
}

func TestDismissRemovesVisibleToast(t *testing.T) {
	notes, _, c := newControllerFixture(t, 5, 5*time.Second)
	now := time.Now()

	notes.Add(model.Notification{Title: "a", Category: model.CategorySystem})
	notes.Add(model.Notification{Title: "b", Category: model.CategorySystem})

	vis := c.Visible(now)
	require.Len(t, vis, 2)

	c.Dismiss(vis[0].PopupID)

	remaining := c.Visible(now)
	require.Len(t, remaining, 1)
	assert.Equal(t, vis[1].PopupID, remaining[0].PopupID)
}

func TestDismissRemovesPendingPopup(t *testing.T) {
	notes, _, c := newControllerFixture(t, 1, 5*time.Second)
	now := time.Now()

	notes.Add(model.Notification{Title: "shown", Category: model.CategorySystem})
	notes.Add(model.Notification{Title: "queued", Category: model.CategorySystem})

	require.Len(t, c.Visible(now), 1)
	require.Equal(t, 1, c.PendingCount())

	// Dismissing the visible toast promotes the queued one on the next
	// sweep; dismissing by a stale id is a no-op.
	c.Dismiss("no-such-popup")
	assert.Equal(t, 1, c.PendingCount())
}

func TestClearedFeedResetsCursor(t *testing.T) {
	notes, _, c := newControllerFixture(t, 5, 5*time.Second)
	now := time.Now()

	notes.Add(model.Notification{Title: "a", Category: model.CategorySystem})
	c.Visible(now)

	notes.ClearAll()
	c.Poll(now)

	// One genuinely new record after the clear pops exactly once.
	notes.Add(model.Notification{Title: "fresh", Category: model.CategorySystem})
	c.Poll(now)

	vis := c.Visible(now)
	counted := 0
	for _, v := range vis {
		if v.Title == "fresh" {
			counted++
		}
	}
	assert.Equal(t, 1, counted)
}

func TestClosedControllerIgnoresEvents(t *testing.T) {
	notes, _, c := newControllerFixture(t, 5, 5*time.Second)
	now := time.Now()

	c.Close()
	notes.Add(model.Notification{Title: "late", Category: model.CategorySystem})

	assert.Empty(t, c.Visible(now))
}
