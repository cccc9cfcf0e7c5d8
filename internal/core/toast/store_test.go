package toast

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/pkg/clock"
)

func newTestStore(opts ...StoreOption) (*Store, *clock.Fake) {
	c := clock.NewFake(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewStore(append([]StoreOption{WithClock(c)}, opts...)...), c
}

func titles(toasts []Toast) []string {
	out := make([]string, len(toasts))
	for i, t := range toasts {
		out[i] = t.Title
	}
	return out
}

func TestStore_Add_newest_first_with_category_defaults(t *testing.T) {
	s, _ := newTestStore()

	s.Add(notify.CategoryError, "A", "")
	s.Add(notify.CategorySuccess, "B", "")

	toasts := s.List()
	require.Equal(t, []string{"B", "A"}, titles(toasts))
	assert.Equal(t, DefaultDurations[notify.CategorySuccess], toasts[0].Duration)
	assert.Equal(t, DefaultDurations[notify.CategoryError], toasts[1].Duration)
	assert.Greater(t, toasts[1].Duration, toasts[0].Duration, "errors stay longer")
}

func TestStore_Add_empty_title_uses_category_label(t *testing.T) {
	s, _ := newTestStore()

	id := s.Warning("", "low balance")

	require.Len(t, s.List(), 1)
	assert.Equal(t, id, s.List()[0].ID)
	assert.Equal(t, "Warning", s.List()[0].Title)
}

func TestStore_Add_assigns_unique_ids(t *testing.T) {
	s, _ := newTestStore(WithMaxVisible(200))

	seen := make(map[string]bool)
	for range 100 {
		id := s.Info("x", "")
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestStore_Add_evicts_oldest_at_max(t *testing.T) {
	s, c := newTestStore()

	for i := range DefaultMaxVisible + 3 {
		s.Info(fmt.Sprintf("t%d", i), "")
	}

	toasts := s.List()
	require.Len(t, toasts, DefaultMaxVisible)
	assert.Equal(t, fmt.Sprintf("t%d", DefaultMaxVisible+2), toasts[0].Title)
	assert.Equal(t, "t3", toasts[len(toasts)-1].Title)
	assert.Equal(t, DefaultMaxVisible, c.Pending(), "evicted toasts release their timers")
}

func TestStore_expires_after_duration(t *testing.T) {
	s, c := newTestStore()

	s.Add(notify.CategoryInfo, "expiring", "", WithDuration(5000*time.Millisecond))
	require.Equal(t, 1, s.Len())

	c.Advance(4999 * time.Millisecond)
	assert.Equal(t, 1, s.Len(), "still visible before the deadline")

	c.Advance(2 * time.Millisecond)
	assert.Zero(t, s.Len())
}

func TestStore_persistent_toast_does_not_expire(t *testing.T) {
	s, c := newTestStore()

	s.Error("sticky", "", Persistent())
	s.Error("negative", "", WithDuration(-time.Second))

	c.Advance(time.Hour)

	assert.Equal(t, 2, s.Len())
	assert.Zero(t, c.Pending())
	assert.True(t, s.List()[0].Persistent())
	assert.True(t, s.List()[0].ExpiresAt().IsZero())
}

func TestStore_Remove(t *testing.T) {
	s, c := newTestStore()
	first := s.Info("first", "")
	s.Info("second", "")

	s.Remove(first)

	assert.Equal(t, []string{"second"}, titles(s.List()))
	assert.Equal(t, 1, c.Pending(), "dismissed toast timer is stopped")
}

func TestStore_Remove_unknown_and_repeated_is_noop(t *testing.T) {
	s, _ := newTestStore()
	id := s.Info("only", "")

	s.Remove("missing")
	assert.Equal(t, 1, s.Len())

	s.Remove(id)
	s.Remove(id)
	assert.Zero(t, s.Len())
}

func TestStore_ClearAll(t *testing.T) {
	s, c := newTestStore()
	s.Success("a", "")
	s.Error("b", "")

	s.ClearAll()

	assert.Empty(t, s.List())
	assert.Zero(t, c.Pending())

	c.Advance(time.Minute)
	assert.Empty(t, s.List())
}

func TestStore_expiry_after_manual_removal_is_safe(t *testing.T) {
	c := clock.NewFake(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	s := NewStore(WithClock(leakyClock{c}))

	id := s.Info("gone", "")
	s.Remove(id)
	later := s.Info("later", "", WithDuration(time.Minute))

	// leakyClock ignores Stop, so the first timer still fires against a
	// missing id.
	c.Advance(DefaultDurations[notify.CategoryInfo] + time.Millisecond)

	require.Len(t, s.List(), 1)
	assert.Equal(t, later, s.List()[0].ID)
}

func TestStore_Trigger(t *testing.T) {
	s, _ := newTestStore()

	ran := 0
	withAction := s.Success("VIP approved", "", WithAction("Open profile", func() { ran++ }))
	plain := s.Info("plain", "")

	assert.True(t, s.Trigger(withAction))
	assert.False(t, s.Trigger(plain))
	assert.False(t, s.Trigger("missing"))
	assert.Equal(t, 1, ran)
	assert.Equal(t, 2, s.Len(), "actions do not affect lifecycle")
}

func TestStore_WithDurations(t *testing.T) {
	s, _ := newTestStore(WithDurations(map[notify.Category]time.Duration{
		notify.CategoryError: 10 * time.Second,
	}))

	assert.Equal(t, 10*time.Second, s.DefaultDuration(notify.CategoryError))
	assert.Equal(t, 5*time.Second, s.DefaultDuration(notify.CategorySuccess))
}

func TestStore_Subscribe_reasons(t *testing.T) {
	s, c := newTestStore(WithMaxVisible(1))

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	a := s.Info("a", "")
	b := s.Info("b", "")
	c.Advance(DefaultDurations[notify.CategoryInfo])
	d := s.Info("d", "", Persistent())
	s.Remove(d)
	s.ClearAll()

	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = fmt.Sprintf("%s:%s", e.Kind, e.Reason)
	}
	assert.Equal(t, []string{
		"added:",
		"removed:evicted",
		"added:",
		"removed:expired",
		"added:",
		"removed:dismissed",
		"cleared:",
	}, kinds)
	assert.Equal(t, a, events[1].Toast.ID)
	assert.Equal(t, b, events[3].Toast.ID)
}

func TestStore_uninitialised_panics(t *testing.T) {
	var s *Store
	assert.PanicsWithValue(t, "toast: store used before NewStore", func() {
		s.Info("x", "")
	})
}

// leakyClock wraps a fake clock but returns timers whose Stop is ignored.
type leakyClock struct{ *clock.Fake }

func (l leakyClock) AfterFunc(d time.Duration, fn func()) clock.Timer {
	l.Fake.AfterFunc(d, fn)
	return noopTimer{}
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }
