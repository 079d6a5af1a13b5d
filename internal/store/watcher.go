package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zervos/desk/internal/bus"
)

// Watcher polls the store's revision counter and publishes a bus.EventStorage
// event (detail: the changed key) for every key written by a *different*
// store handle. It mirrors the browser storage event: the writing context
// never observes its own writes through this path, and there is no ordering
// guarantee beyond "eventually, on a later poll".
type Watcher struct {
	store    *SQLiteStore
	bus      *bus.Bus
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	lastRev int64
	stopCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher over the given store handle. Events are
// published for writes made by handles other than this one.
func NewWatcher(s *SQLiteStore, b *bus.Bus, interval time.Duration, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{
		store:    s,
		bus:      b,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling in a background goroutine. The watcher seeds its
// cursor from the current revision so pre-existing history is not
// replayed. Calling Start twice is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true

	rev, err := w.store.CurrentRev()
	if err != nil {
		w.logger.Warn("seeding watcher revision failed", zap.Error(err))
		rev = 0
	}
	w.lastRev = rev
	w.mu.Unlock()

	go w.loop()
}

// Stop halts the polling goroutine. Stopping twice is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
}

// loop drives the poll ticks until stopped.
func (w *Watcher) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Poll performs one check for foreign writes. Exported so tests and
// focus-style refresh paths can force a check without waiting a tick.
func (w *Watcher) Poll() {
	w.mu.Lock()
	since := w.lastRev
	w.mu.Unlock()

	changes, err := w.store.ChangesSince(since)
	if err != nil {
		w.logger.Warn("polling for changes failed", zap.Error(err))
		return
	}
	if len(changes) == 0 {
		return
	}

	last := since
	own := w.store.WriterToken()
	for _, c := range changes {
		if c.Rev > last {
			last = c.Rev
		}
		if c.Writer == own {
			continue
		}
		w.bus.Publish(bus.EventStorage, c.Key)
	}

	w.mu.Lock()
	if last > w.lastRev {
		w.lastRev = last
	}
	w.mu.Unlock()
}
