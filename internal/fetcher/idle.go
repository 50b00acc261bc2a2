package fetcher

import (
	"context"
	"sync"
	"time"
)

// Network idle defaults, matching the "networkidle2" navigation condition:
// the page counts as settled once at most two requests have been in flight
// for half a second.
const (
	DefaultIdleConnections = 2
	DefaultIdleInterval    = 500 * time.Millisecond
)

// idleTracker follows in-flight requests of one tab and reports when the
// network has been quiet for the settle interval.
type idleTracker struct {
	mu        sync.Mutex
	inflight  map[string]struct{}
	maxActive int
	interval  time.Duration
	idleSince time.Time
	now       func() time.Time
}

func newIdleTracker(maxActive int, interval time.Duration, now func() time.Time) *idleTracker {
	if now == nil {
		now = time.Now
	}
	return &idleTracker{
		inflight:  make(map[string]struct{}),
		maxActive: maxActive,
		interval:  interval,
		idleSince: now(),
		now:       now,
	}
}

// started records a request leaving the tab.
func (t *idleTracker) started(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight[id] = struct{}{}
	if len(t.inflight) > t.maxActive {
		t.idleSince = time.Time{}
	}
}

// finished records a request completing or failing.
func (t *idleTracker) finished(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.inflight[id]; !ok {
		return
	}
	delete(t.inflight, id)
	if len(t.inflight) <= t.maxActive && t.idleSince.IsZero() {
		t.idleSince = t.now()
	}
}

// idle reports whether the network has been quiet for the settle interval.
func (t *idleTracker) idle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.idleSince.IsZero() && t.now().Sub(t.idleSince) >= t.interval
}

// wait blocks until the network is idle or ctx is done.
func (t *idleTracker) wait(ctx context.Context) error {
	poll := t.interval / 10
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if t.idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
