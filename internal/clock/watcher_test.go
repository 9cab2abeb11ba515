package clock

import (
	"sync"
	"testing"
	"time"
)

func TestTimestampWatcher_HasPassed(t *testing.T) {
	w := NewTimestampWatcher()
	fixed := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	tests := []struct {
		at   time.Time
		name string
		want bool
	}{
		{name: "past instant", at: fixed.Add(-time.Second), want: true},
		{name: "exact instant counts as passed", at: fixed, want: true},
		{name: "future instant", at: fixed.Add(time.Second), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.HasPassed(tt.at); got != tt.want {
				t.Errorf("HasPassed(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestTimestampWatcher_PastInstantFiresImmediately(t *testing.T) {
	w := NewTimestampWatcher()

	fired := false
	unsub := w.Watch(time.Now().Add(-time.Minute), func() { fired = true })
	defer unsub()

	if !fired {
		t.Fatal("watch on a past instant should fire immediately")
	}
	if len(w.buckets) != 0 {
		t.Fatal("past instant should not create a bucket")
	}
}

func TestTimestampWatcher_FutureInstantFires(t *testing.T) {
	w := NewTimestampWatcher()

	var mu sync.Mutex
	fired := 0
	w.Watch(time.Now().Add(20*time.Millisecond), func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired != 1 {
		t.Fatalf("expected exactly one fire, got %d", fired)
	}
}

func TestTimestampWatcher_CoalescesSameMinute(t *testing.T) {
	w := NewTimestampWatcher()
	fixed := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	at := fixed.Add(10 * time.Second)
	unsub1 := w.Watch(at, func() {})
	unsub2 := w.Watch(at.Add(5*time.Second), func() {})

	w.mu.Lock()
	buckets := len(w.buckets)
	w.mu.Unlock()
	if buckets != 1 {
		t.Fatalf("instants in the same minute should share one bucket, got %d", buckets)
	}

	unsub1()
	w.mu.Lock()
	buckets = len(w.buckets)
	w.mu.Unlock()
	if buckets != 1 {
		t.Fatal("bucket should survive while a listener remains")
	}

	unsub2()
	w.mu.Lock()
	buckets = len(w.buckets)
	w.mu.Unlock()
	if buckets != 0 {
		t.Fatal("bucket should be torn down after last unsubscribe")
	}
}

func TestTimestampWatcher_NeverEarly(t *testing.T) {
	w := NewTimestampWatcher()

	at := time.Now().Add(40 * time.Millisecond)
	var mu sync.Mutex
	var firedAt time.Time
	w.Watch(at, func() {
		mu.Lock()
		firedAt = time.Now()
		mu.Unlock()
	})

	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if firedAt.IsZero() {
		t.Fatal("watch never fired")
	}
	if firedAt.Before(at) {
		t.Errorf("fired at %v, before target %v", firedAt, at)
	}
}
