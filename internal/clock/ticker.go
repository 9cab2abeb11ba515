// Package clock provides reactive time primitives: a minute-boundary ticker
// and a watcher for absolute instants. Both expose a subscribe/read pair and
// hold no timers while nobody is listening.
package clock

import (
	"sync"
	"time"
)

// MinuteTicker notifies subscribers exactly at each wall-clock minute
// boundary. One shared timer is armed for the next boundary rather than a
// fixed-interval poll, so subscribers observe a new minute number at most
// once per minute and always right after the boundary elapses.
type MinuteTicker struct {
	now       func() time.Time
	timer     *time.Timer
	listeners map[int]func(int64)
	nextID    int
	mu        sync.Mutex
}

// NewMinuteTicker creates an unarmed ticker.
func NewMinuteTicker() *MinuteTicker {
	return &MinuteTicker{
		now:       time.Now,
		listeners: make(map[int]func(int64)),
	}
}

// Current returns the current minute number (Unix time / 60). Safe to call
// with no active subscription.
func (t *MinuteTicker) Current() int64 {
	return t.now().Unix() / 60
}

// Subscribe registers fn to receive the new minute number at every boundary.
// The timer is armed on the first subscription and torn down when the last
// subscriber unsubscribes.
func (t *MinuteTicker) Subscribe(fn func(minute int64)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.listeners[id] = fn

	if t.timer == nil {
		t.arm()
	}

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
		if len(t.listeners) == 0 && t.timer != nil {
			t.timer.Stop()
			t.timer = nil
		}
	}
}

// arm schedules the shared timer for the next minute boundary.
// Caller must hold t.mu.
func (t *MinuteTicker) arm() {
	t.timer = time.AfterFunc(t.untilNextBoundary(), t.fire)
}

// untilNextBoundary returns the exact delay to the next minute boundary.
// Caller must hold t.mu.
func (t *MinuteTicker) untilNextBoundary() time.Duration {
	now := t.now()
	ms := now.UnixMilli() % 60000
	return time.Duration(60000-ms) * time.Millisecond
}

func (t *MinuteTicker) fire() {
	t.mu.Lock()
	minute := t.now().Unix() / 60
	fns := make([]func(int64), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	if len(t.listeners) > 0 {
		t.arm()
	} else {
		t.timer = nil
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(minute)
	}
}
