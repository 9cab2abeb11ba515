package clock

import (
	"testing"
	"time"
)

func TestMinuteTicker_Current(t *testing.T) {
	ticker := NewMinuteTicker()
	fixed := time.Date(2024, 3, 5, 10, 30, 45, 0, time.UTC)
	ticker.now = func() time.Time { return fixed }

	want := fixed.Unix() / 60
	if got := ticker.Current(); got != want {
		t.Errorf("Current() = %d, want %d", got, want)
	}
}

func TestMinuteTicker_BoundaryDelay(t *testing.T) {
	tests := []struct {
		now  time.Time
		name string
		want time.Duration
	}{
		{
			name: "mid-minute",
			now:  time.Date(2024, 3, 5, 10, 30, 45, 0, time.UTC),
			want: 15 * time.Second,
		},
		{
			name: "just after boundary",
			now:  time.Date(2024, 3, 5, 10, 30, 0, 1e6, time.UTC),
			want: 59*time.Second + 999*time.Millisecond,
		},
		{
			name: "exactly on boundary arms full minute",
			now:  time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC),
			want: time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticker := NewMinuteTicker()
			ticker.now = func() time.Time { return tt.now }
			if got := ticker.untilNextBoundary(); got != tt.want {
				t.Errorf("untilNextBoundary() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinuteTicker_TimerLifecycle(t *testing.T) {
	ticker := NewMinuteTicker()

	if ticker.timer != nil {
		t.Fatal("new ticker should not hold a timer")
	}

	unsub1 := ticker.Subscribe(func(int64) {})
	unsub2 := ticker.Subscribe(func(int64) {})

	ticker.mu.Lock()
	armed := ticker.timer != nil
	ticker.mu.Unlock()
	if !armed {
		t.Fatal("timer should be armed while subscribers exist")
	}

	unsub1()
	ticker.mu.Lock()
	armed = ticker.timer != nil
	ticker.mu.Unlock()
	if !armed {
		t.Fatal("timer should stay armed while one subscriber remains")
	}

	unsub2()
	ticker.mu.Lock()
	armed = ticker.timer != nil
	ticker.mu.Unlock()
	if armed {
		t.Fatal("timer should be torn down after last unsubscribe")
	}
}

func TestMinuteTicker_FireNotifiesAllSubscribers(t *testing.T) {
	ticker := NewMinuteTicker()
	fixed := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	ticker.now = func() time.Time { return fixed }

	got := make([]int64, 0, 2)
	unsub := ticker.Subscribe(func(m int64) { got = append(got, m) })
	defer unsub()
	unsub2 := ticker.Subscribe(func(m int64) { got = append(got, m) })
	defer unsub2()

	ticker.fire()

	want := fixed.Unix() / 60
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	for _, m := range got {
		if m != want {
			t.Errorf("notified minute = %d, want %d", m, want)
		}
	}
}
