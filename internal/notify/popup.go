package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zervos/desk/internal/bus"
	"github.com/zervos/desk/internal/cue"
	"github.com/zervos/desk/internal/model"
)

// seenCapacity bounds the ring of recently delivered notification ids
// used to suppress duplicate popups from the polling path.
const seenCapacity = 64

// Toast is a popup promoted to a visible slot, with its dismiss deadline.
type Toast struct {
	model.Popup

	// Deadline is when the toast auto-dismisses.
	Deadline time.Time
}

// Controller runs the popup state machine. Two trigger paths feed it:
// the new-notification bus event (same-context, immediate) and a
// count-delta poll over the persisted feed (safety net for appends made
// by other contexts). Polling-discovered records already delivered
// through the event path are suppressed by a bounded seen-set; beyond
// that, a notification may still pop twice under distinct popup ids.
//
// At most maxVisible toasts render at once. Overflow stays pending and
// is promoted as slots free up; nothing is dropped.
type Controller struct {
	notes    *Store
	chime    *cue.Chime
	logger   *zap.Logger
	duration time.Duration
	maxShown int

	mu        sync.Mutex
	pending   []model.Popup
	visible   []Toast
	lastCount int
	seenIDs   []string
	seenSet   map[string]struct{}
	unsub     func()
	closed    bool
}

// NewController creates a popup controller and subscribes it to the
// new-notification event. The count cursor is seeded from the current
// feed length so pre-existing history is not replayed as popups.
func NewController(
	notes *Store,
	b *bus.Bus,
	chime *cue.Chime,
	maxShown int,
	duration time.Duration,
	logger *zap.Logger,
) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxShown <= 0 {
		maxShown = 5
	}
	if duration <= 0 {
		duration = 5 * time.Second
	}

	c := &Controller{
		notes:     notes,
		chime:     chime,
		logger:    logger,
		duration:  duration,
		maxShown:  maxShown,
		lastCount: notes.Count(),
		seenSet:   make(map[string]struct{}, seenCapacity),
	}

	c.unsub = b.Subscribe(bus.EventNewNotification, c.onNewNotification)
	return c
}

// Close tears down the bus subscription. A closed controller ignores
// further events; leaving it subscribed after its owning UI is gone
// would keep duplicating popups.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.unsub != nil {
		c.unsub()
	}
}

// onNewNotification is the event-driven trigger path.
func (c *Controller) onNewNotification(detail any) {
	n, ok := detail.(model.Notification)
	if !ok {
		c.logger.Warn("unexpected new-notification payload")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.enqueue(n, true)
}

// Poll is the polling trigger path: when the persisted feed grew since
// the last check, the count delta is taken from the front of the
// newest-first snapshot and enqueued. The cursor is updated after every
// check, shrink or grow, so a cleared feed does not produce popups later.
func (c *Controller) Poll(now time.Time) {
	snapshot := c.notes.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	count := len(snapshot)
	if count > c.lastCount {
		delta := count - c.lastCount
		if delta > count {
			delta = count
		}
		// Oldest of the new batch first so toasts stack in feed order.
		for i := delta - 1; i >= 0; i-- {
			c.enqueue(snapshot[i], false)
		}
	}
	c.lastCount = count

	c.sweep(now)
}

// enqueue wraps a notification with a fresh popup id and queues it.
// Polling-path records already in the seen-set are suppressed; event
// path deliveries always enqueue. Callers hold c.mu.
func (c *Controller) enqueue(n model.Notification, fromEvent bool) {
	if !fromEvent {
		if _, ok := c.seenSet[n.ID]; ok {
			return
		}
	}
	c.markSeen(n.ID)

	c.pending = append(c.pending, model.Popup{
		Notification: n,
		PopupID:      uuid.New().String(),
	})

	if c.chime != nil {
		c.chime.Ring()
	}
}

// markSeen records an id in the bounded ring. Callers hold c.mu.
func (c *Controller) markSeen(id string) {
	if _, ok := c.seenSet[id]; ok {
		return
	}
	if len(c.seenIDs) >= seenCapacity {
		oldest := c.seenIDs[0]
		c.seenIDs = c.seenIDs[1:]
		delete(c.seenSet, oldest)
	}
	c.seenIDs = append(c.seenIDs, id)
	c.seenSet[id] = struct{}{}
}

// sweep drops expired toasts and promotes pending popups into free
// slots, assigning each its dismiss deadline. Callers hold c.mu.
func (c *Controller) sweep(now time.Time) {
	kept := c.visible[:0]
	for _, t := range c.visible {
		if t.Deadline.After(now) {
			kept = append(kept, t)
		}
	}
	c.visible = kept

	for len(c.visible) < c.maxShown && len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.visible = append(c.visible, Toast{
			Popup:    next,
			Deadline: now.Add(c.duration),
		})
	}
}

// Visible returns the currently rendered toasts after sweeping expired
// ones and promoting pending popups.
func (c *Controller) Visible(now time.Time) []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweep(now)
	return append([]Toast(nil), c.visible...)
}

// Dismiss removes a popup by its popup id, visible or pending,
// regardless of its timer.
func (c *Controller) Dismiss(popupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.visible {
		if t.PopupID == popupID {
			c.visible = append(c.visible[:i:i], c.visible[i+1:]...)
			return
		}
	}
	for i, p := range c.pending {
		if p.PopupID == popupID {
			c.pending = append(c.pending[:i:i], c.pending[i+1:]...)
			return
		}
	}
}

// PendingCount reports how many popups are queued but not yet shown.
func (c *Controller) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

// Duration returns the auto-dismiss duration for a visible toast.
func (c *Controller) Duration() time.Duration {
	return c.duration
}
