package bus

import (
	"sync"

	"go.uber.org/zap"
)

// Event names shared across the application. These match the persisted
// wire names used by every consumer, so they must not be renamed.
const (
	// EventNewNotification carries the model.Notification value that was
	// just appended to the feed.
	EventNewNotification = "new-notification"

	// EventNotificationsUpdated carries the full []model.Notification
	// after any mutation of the feed.
	EventNotificationsUpdated = "notifications-updated"

	// EventLocalStorageChanged is a broadcast "something changed,
	// re-derive" signal with no payload.
	EventLocalStorageChanged = "localStorageChanged"

	// EventTeamMembersUpdated fires after team member mutations.
	EventTeamMembersUpdated = "team-members-updated"

	// EventTimeSlotsUpdated fires after time slot publication.
	EventTimeSlotsUpdated = "timeslots-updated"

	// EventStorage is delivered by the store watcher when another handle
	// of the shared store wrote a key. The writing handle never receives
	// its own storage events, so same-context reactivity must not rely
	// on this event alone. The detail is the changed key string.
	EventStorage = "storage"
)

// Handler receives the detail payload of a published event.
type Handler func(detail any)

// subscription pairs a handler with a stable identity so that
// unsubscribe can remove exactly one registration.
type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a synchronous in-process publish/subscribe dispatcher. Delivery
// for a given publish happens on the publisher's goroutine, in
// subscription order. Past events are not replayed to late subscribers.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]subscription
	logger *zap.Logger
}

// New creates an empty event bus.
func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers a handler for an event name and returns a function
// that removes the registration. Unsubscribing twice is a no-op.
func (b *Bus) Subscribe(event string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[event] = append(b.subs[event], subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subs[event]
		for i, s := range subs {
			if s.id == id {
				b.subs[event] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers detail to every handler subscribed to event, in
// subscription order. A panicking handler is isolated: it is logged and
// the remaining handlers still run.
func (b *Bus) Publish(event string, detail any) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs[event]))
	copy(subs, b.subs[event])
	b.mu.Unlock()

	for _, s := range subs {
		b.invoke(event, s, detail)
	}
}

// invoke runs one handler with panic isolation.
func (b *Bus) invoke(event string, s subscription, detail any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event", event),
				zap.Any("panic", r),
			)
		}
	}()

	s.handler(detail)
}
