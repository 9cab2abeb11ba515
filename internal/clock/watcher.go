package clock

import (
	"sync"
	"time"
)

// TimestampWatcher notifies listeners when an absolute instant elapses.
// Listeners are grouped into buckets keyed by the minute containing their
// target instant, so many transactions due in the same minute share one
// timer. A bucket's timer is torn down exactly when its last listener
// unsubscribes.
type TimestampWatcher struct {
	now     func() time.Time
	buckets map[int64]*watchBucket
	nextID  int
	mu      sync.Mutex
}

type watchBucket struct {
	timer   *time.Timer
	entries map[int]watchEntry
	armedAt time.Time
}

type watchEntry struct {
	at time.Time
	fn func()
}

// NewTimestampWatcher creates a watcher with no armed timers.
func NewTimestampWatcher() *TimestampWatcher {
	return &TimestampWatcher{
		now:     time.Now,
		buckets: make(map[int64]*watchBucket),
	}
}

// HasPassed reports whether the instant has elapsed. Safe to call with no
// active watch.
func (w *TimestampWatcher) HasPassed(at time.Time) bool {
	return !w.now().Before(at)
}

// Watch invokes fn once the instant elapses, never early. If the instant has
// already passed, fn runs immediately on the calling goroutine. The returned
// function cancels the watch; canceling after fire is a no-op.
func (w *TimestampWatcher) Watch(at time.Time, fn func()) func() {
	if w.HasPassed(at) {
		fn()
		return func() {}
	}

	w.mu.Lock()
	key := at.Unix() / 60
	bucket, ok := w.buckets[key]
	if !ok {
		bucket = &watchBucket{entries: make(map[int]watchEntry)}
		w.buckets[key] = bucket
	}

	id := w.nextID
	w.nextID++
	bucket.entries[id] = watchEntry{at: at, fn: fn}
	w.armBucket(key, bucket)
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		b, ok := w.buckets[key]
		if !ok {
			return
		}
		delete(b.entries, id)
		if len(b.entries) == 0 {
			b.timer.Stop()
			delete(w.buckets, key)
		}
	}
}

// armBucket ensures the bucket's timer fires at the earliest pending instant.
// Caller must hold w.mu.
func (w *TimestampWatcher) armBucket(key int64, bucket *watchBucket) {
	earliest := time.Time{}
	for _, e := range bucket.entries {
		if earliest.IsZero() || e.at.Before(earliest) {
			earliest = e.at
		}
	}
	if earliest.IsZero() {
		return
	}
	if bucket.timer != nil {
		if bucket.armedAt.Equal(earliest) {
			return
		}
		bucket.timer.Stop()
	}
	bucket.armedAt = earliest
	bucket.timer = time.AfterFunc(earliest.Sub(w.now()), func() { w.fireBucket(key) })
}

func (w *TimestampWatcher) fireBucket(key int64) {
	w.mu.Lock()
	bucket, ok := w.buckets[key]
	if !ok {
		w.mu.Unlock()
		return
	}

	now := w.now()
	var due []func()
	for id, e := range bucket.entries {
		if !now.Before(e.at) {
			due = append(due, e.fn)
			delete(bucket.entries, id)
		}
	}
	if len(bucket.entries) == 0 {
		delete(w.buckets, key)
	} else {
		// Listeners later in the same minute are still pending; re-arm
		// for the next earliest instant.
		bucket.timer = nil
		bucket.armedAt = time.Time{}
		w.armBucket(key, bucket)
	}
	w.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}
