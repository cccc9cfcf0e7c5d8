package live

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/toast"
	"github.com/colonyops/beacon/pkg/clock"
)

// scriptedRand replays fixed values and repeats the last one when exhausted.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	if len(r.floats) > 1 {
		r.floats = r.floats[1:]
	}
	return v
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	if len(r.ints) > 1 {
		r.ints = r.ints[1:]
	}
	return v % n
}

type fixture struct {
	clock  *clock.Fake
	notes  *notify.Store
	toasts *toast.Store
	gen    *Generator
}

func newFixture(t *testing.T, r Rand, opts ...Option) *fixture {
	t.Helper()

	c := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	f := &fixture{
		clock:  c,
		notes:  notify.NewStore(notify.WithClock(c), notify.WithCapacity(10_000)),
		toasts: toast.NewStore(toast.WithClock(c)),
	}
	all := append([]Option{WithClock(c), WithRand(r)}, opts...)
	f.gen = New(DefaultConfig(), f.notes, f.toasts, all...)
	return f
}

func TestGenerator_first_event_after_initial_delay(t *testing.T) {
	f := newFixture(t, &scriptedRand{floats: []float64{0.9, 0.5}})

	f.gen.Start()

	f.clock.Advance(5*time.Second - time.Millisecond)
	assert.Zero(t, f.notes.Len())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, 1, f.notes.Len())
	assert.Equal(t, 1, f.toasts.Len())
}

func TestGenerator_recurring_interval_is_randomised_in_range(t *testing.T) {
	// choice, bucket/message via ints, then interval draw 0.5 -> 45s.
	f := newFixture(t, &scriptedRand{floats: []float64{0.9, 0.5}})

	f.gen.Start()
	f.clock.Advance(5 * time.Second)
	require.Equal(t, 1, f.notes.Len())

	f.clock.Advance(45*time.Second - time.Millisecond)
	assert.Equal(t, 1, f.notes.Len())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, 2, f.notes.Len())
}

func TestGenerator_interval_bounds(t *testing.T) {
	cfg := DefaultConfig()
	g := New(cfg, nil, nil, WithRand(&scriptedRand{floats: []float64{0}}))
	assert.Equal(t, cfg.MinInterval, g.intervalLocked())

	g = New(cfg, nil, nil, WithRand(&scriptedRand{floats: []float64{0.999999}}))
	got := g.intervalLocked()
	assert.GreaterOrEqual(t, got, cfg.MinInterval)
	assert.LessOrEqual(t, got, cfg.MaxInterval)
}

func TestGenerator_message_event_selection(t *testing.T) {
	// Float 0.9 >= 0.30 selects a canned message; ints pick bucket 2 (error)
	// and message 1 within it.
	f := newFixture(t, &scriptedRand{floats: []float64{0.9}, ints: []int{2, 1}})

	ev := f.gen.Emit()

	want := Catalog[notify.CategoryError][1]
	assert.Equal(t, KindMessage, ev.Kind)
	assert.Equal(t, notify.CategoryError, ev.Category)
	assert.Equal(t, want.Title, ev.Title)
	assert.Equal(t, want.Description, ev.Description)
}

func TestGenerator_event_written_to_both_stores(t *testing.T) {
	f := newFixture(t, &scriptedRand{floats: []float64{0.9}, ints: []int{1, 0}})

	ev := f.gen.Emit()

	n, ok := f.notes.Get(ev.NotificationID)
	require.True(t, ok)
	assert.Equal(t, ev.Title, n.Title)
	assert.Equal(t, ev.Category, n.Category)

	toasts := f.toasts.List()
	require.Len(t, toasts, 1)
	assert.Equal(t, ev.ToastID, toasts[0].ID)
	assert.Equal(t, ev.Category, toasts[0].Category)
}

func TestGenerator_toast_dismissal_keeps_log_entry(t *testing.T) {
	f := newFixture(t, &scriptedRand{floats: []float64{0.9}})

	ev := f.gen.Emit()
	f.toasts.Remove(ev.ToastID)

	n, ok := f.notes.Get(ev.NotificationID)
	require.True(t, ok)
	assert.False(t, n.Read)
	assert.Equal(t, 1, f.notes.UnreadCount())
}

func TestGenerator_toast_action_marks_log_entry_read(t *testing.T) {
	f := newFixture(t, &scriptedRand{floats: []float64{0.9}})

	ev := f.gen.Emit()
	require.True(t, f.toasts.Trigger(ev.ToastID))

	n, ok := f.notes.Get(ev.NotificationID)
	require.True(t, ok)
	assert.True(t, n.Read)
	assert.Equal(t, 1, f.toasts.Len(), "toast stays until dismissed")
}

func TestGenerator_lottery_tiers(t *testing.T) {
	cfg := DefaultConfig()
	span := cfg.MaxPrize - cfg.MinPrize

	tests := []struct {
		name     string
		amount   float64
		tier     Tier
		title    string
		category notify.Category
	}{
		{"jackpot", 120_000, TierJackpot, "JACKPOT WINNER!", notify.CategorySuccess},
		{"jackpot boundary", 100_000, TierJackpot, "JACKPOT WINNER!", notify.CategorySuccess},
		{"big", 30_000, TierBig, "Big Win!", notify.CategorySuccess},
		{"lucky", 2_500, TierLucky, "Lucky Winner", notify.CategoryInfo},
		{"standard", 900, TierStandard, "Lottery Winner", notify.CategoryInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draw := (tt.amount - cfg.MinPrize) / span
			f := newFixture(t, &scriptedRand{floats: []float64{0.1, draw}, ints: []int{3, 1}})

			ev := f.gen.Emit()

			assert.Equal(t, KindLottery, ev.Kind)
			assert.Equal(t, tt.amount, ev.PrizeAmount)
			assert.Equal(t, tt.tier, ev.Tier)
			assert.Equal(t, tt.title, ev.Title)
			assert.Equal(t, tt.category, ev.Category)
			assert.Equal(t, Winners[3], ev.Winner)
			assert.Equal(t, Games[1], ev.Game)
			assert.Contains(t, ev.Description, Winners[3])
		})
	}
}

func TestGenerator_lottery_fraction_converges(t *testing.T) {
	const events = 1000

	for _, seed := range []uint64{1, 42, 2025} {
		f := newFixture(t, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))

		for range events {
			ev := f.gen.Emit()
			if ev.Kind == KindLottery && ev.PrizeAmount >= 100_000 {
				assert.Equal(t, "JACKPOT WINNER!", ev.Title)
			}
		}

		stats := f.gen.Stats()
		assert.Equal(t, events, stats.Total)
		// Three standard deviations of a binomial(1000, 0.3) is about 0.043.
		assert.InDelta(t, 0.30, stats.LotteryFraction(), 0.05, "seed %d", seed)
	}
}

func TestGenerator_Stop_cancels_initial_delay(t *testing.T) {
	f := newFixture(t, &scriptedRand{floats: []float64{0.9}})

	f.gen.Start()
	f.clock.Advance(2 * time.Second)
	f.gen.Stop()

	f.clock.Advance(10 * time.Minute)

	assert.Zero(t, f.notes.Len())
	assert.Zero(t, f.clock.Pending())
	assert.False(t, f.gen.Running())
}

func TestGenerator_Stop_cancels_recurring_timer(t *testing.T) {
	f := newFixture(t, rand.New(rand.NewPCG(3, 4)))

	f.gen.Start()
	f.clock.Advance(5 * time.Second)
	f.clock.Advance(3 * time.Minute)
	produced := f.notes.Len()
	require.Greater(t, produced, 1)

	f.gen.Stop()
	f.clock.Advance(10 * DefaultConfig().MaxInterval)

	assert.Equal(t, produced, f.notes.Len(), "no events after stop")
	assert.Zero(t, f.clock.Pending())
}

func TestGenerator_stale_callback_after_restart_is_ignored(t *testing.T) {
	c := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	notes := notify.NewStore(notify.WithClock(c))
	toasts := toast.NewStore(toast.WithClock(c))
	// Timers ignore Stop so the first epoch's callback still fires.
	g := New(DefaultConfig(), notes, toasts, WithClock(leakyClock{c}), WithRand(&scriptedRand{floats: []float64{0.9}}))

	g.Start()
	g.Stop()
	c.Advance(time.Second)
	g.Start()

	c.Advance(4 * time.Second)
	assert.Zero(t, notes.Len(), "stale first-epoch timer fired but was discarded")

	c.Advance(time.Second)
	assert.Equal(t, 1, notes.Len())
}

func TestGenerator_Stop_waits_for_in_flight_delivery(t *testing.T) {
	c := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	gc := &gatedClock{Fake: c, entered: make(chan struct{}), release: make(chan struct{})}
	notes := notify.NewStore(notify.WithClock(c))
	toasts := toast.NewStore(toast.WithClock(c))
	g := New(DefaultConfig(), notes, toasts, WithClock(gc), WithRand(&scriptedRand{floats: []float64{0.9}}))

	g.Start()
	advanced := make(chan struct{})
	go func() {
		c.Advance(5 * time.Second)
		close(advanced)
	}()
	<-gc.entered

	stopped := make(chan struct{})
	go func() {
		g.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a delivery was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(gc.release)
	<-stopped
	delivered := notes.Len()
	<-advanced

	assert.Equal(t, 1, delivered, "in-flight event lands before Stop returns")
	c.Advance(10 * time.Minute)
	assert.Equal(t, delivered, notes.Len(), "no events after stop")
	assert.Zero(t, c.Pending())
	assert.False(t, g.Running())
}

func TestGenerator_Start_is_idempotent(t *testing.T) {
	f := newFixture(t, &scriptedRand{floats: []float64{0.9}})

	f.gen.Start()
	f.gen.Start()
	assert.Equal(t, 1, f.clock.Pending())

	f.clock.Advance(5 * time.Second)
	assert.Equal(t, 1, f.notes.Len())
}

func TestGenerator_OnEvent(t *testing.T) {
	var got []Event
	f := newFixture(t, &scriptedRand{floats: []float64{0.9}}, OnEvent(func(e Event) { got = append(got, e) }))

	ev := f.gen.Emit()

	require.Len(t, got, 1)
	assert.Equal(t, ev, got[0])
	assert.Equal(t, f.clock.Now(), got[0].At)
}

func TestThresholds_Classify(t *testing.T) {
	th := DefaultThresholds
	assert.Equal(t, TierStandard, th.Classify(2_499))
	assert.Equal(t, TierLucky, th.Classify(2_500))
	assert.Equal(t, TierBig, th.Classify(25_000))
	assert.Equal(t, TierJackpot, th.Classify(100_000))
}

func TestFormatDollars(t *testing.T) {
	assert.Equal(t, "$500", formatDollars(500))
	assert.Equal(t, "$2,500", formatDollars(2500))
	assert.Equal(t, "$100,000", formatDollars(100000))
	assert.Equal(t, "$1,234,567", formatDollars(1234567))
}

type leakyClock struct{ *clock.Fake }

func (l leakyClock) AfterFunc(d time.Duration, fn func()) clock.Timer {
	l.Fake.AfterFunc(d, fn)
	return noopTimer{}
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }

// gatedClock blocks the first Now call, which happens inside delivery, until
// release is closed.
type gatedClock struct {
	*clock.Fake
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedClock) Now() time.Time {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Fake.Now()
}
