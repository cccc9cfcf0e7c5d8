package tui

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/beacon/internal/core/alerts"
	"github.com/colonyops/beacon/internal/core/config"
	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/toast"
	"github.com/colonyops/beacon/pkg/clock"
	"github.com/colonyops/beacon/pkg/tuitest"
)

type harness struct {
	clock  *clock.Fake
	notes  *notify.Store
	toasts *toast.Store
	gen    *live.Generator
	model  Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	c := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	h := &harness{
		clock:  c,
		notes:  notify.NewStore(notify.WithClock(c)),
		toasts: toast.NewStore(toast.WithClock(c)),
	}
	h.gen = live.New(live.DefaultConfig(), h.notes, h.toasts,
		live.WithClock(c), live.WithRand(rand.New(rand.NewPCG(7, 11))))

	h.model = New(Options{
		Notes:     h.notes,
		Toasts:    h.toasts,
		Generator: h.gen,
		Rules:     alerts.Samples(),
		Config:    config.DefaultConfig(),
		Clock:     c,
	})
	h.send(tuitest.WindowSize(120, 40))
	return h
}

func (h *harness) send(msgs ...tea.Msg) {
	h.model = tuitest.Send(h.model, msgs...).(Model)
}

func (h *harness) screen() string {
	return tuitest.StripANSI(h.model.render())
}

func TestModel_header_shows_unread_badge(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.screen(), "no unread")

	h.notes.Add(notify.CategoryInfo, "one", "")
	h.notes.Add(notify.CategoryWarning, "two", "")

	screen := h.screen()
	assert.Contains(t, screen, "2 unread")
	assert.Contains(t, screen, "one")
	assert.Contains(t, screen, "two")
}

func TestModel_emit_writes_both_stores(t *testing.T) {
	h := newHarness(t)

	h.send(tuitest.Key("e"))

	require.Equal(t, 1, h.notes.Len())
	require.Equal(t, 1, h.toasts.Len())
	assert.Contains(t, h.screen(), h.notes.List()[0].Title)
	assert.Equal(t, 1, h.gen.Stats().Total)
}

func TestModel_notification_center_cursor_and_mark_read(t *testing.T) {
	h := newHarness(t)
	h.notes.Add(notify.CategoryInfo, "older", "")
	h.notes.Add(notify.CategoryError, "newer", "")

	h.send(tuitest.Key("n"))
	require.Equal(t, stateNotifications, h.model.State())
	assert.Contains(t, h.screen(), "Notifications (2 unread)")

	// Cursor starts on the newest entry; move to the older one.
	h.send(tuitest.Key("j"), tuitest.KeyEnter())

	list := h.notes.List()
	assert.False(t, list[0].Read, "newer stays unread")
	assert.True(t, list[1].Read, "older marked read")
	assert.Equal(t, 1, h.notes.UnreadCount())

	h.send(tuitest.Key("k"), tuitest.KeyEnter())
	assert.Zero(t, h.notes.UnreadCount())
}

func TestModel_notification_center_mark_all_and_clear(t *testing.T) {
	h := newHarness(t)
	for range 3 {
		h.notes.Add(notify.CategoryInfo, "entry", "")
	}

	h.send(tuitest.Key("n"), tuitest.Key("m"))
	assert.Zero(t, h.notes.UnreadCount())
	assert.Equal(t, 3, h.notes.Len())

	h.send(tuitest.Key("D"))
	assert.Zero(t, h.notes.Len())
	assert.Contains(t, h.screen(), "No notifications")

	h.send(tuitest.KeyEscape())
	assert.Equal(t, stateNormal, h.model.State())
}

func TestModel_toast_dismissal(t *testing.T) {
	h := newHarness(t)
	h.toasts.Info("first", "")
	h.toasts.Info("second", "")

	h.send(tuitest.Key("x"))
	require.Len(t, h.toasts.List(), 1)
	assert.Equal(t, "first", h.toasts.List()[0].Title, "newest dismissed first")

	h.toasts.Info("third", "")
	h.send(tuitest.Key("X"))
	assert.Zero(t, h.toasts.Len())
}

func TestModel_trigger_runs_newest_toast_action(t *testing.T) {
	h := newHarness(t)

	h.send(tuitest.Key("e"), tuitest.Key("a"))

	require.Equal(t, 1, h.notes.Len())
	assert.True(t, h.notes.List()[0].Read)
	assert.Equal(t, 1, h.toasts.Len())
}

func TestModel_generator_toggle(t *testing.T) {
	h := newHarness(t)
	require.False(t, h.gen.Running())

	h.send(tuitest.Key("g"))
	assert.True(t, h.gen.Running())
	assert.Contains(t, h.screen(), "generator live")

	h.send(tuitest.Key("g"))
	assert.False(t, h.gen.Running())
	assert.Contains(t, h.screen(), "generator paused")
}

func TestModel_rules_panel(t *testing.T) {
	h := newHarness(t)

	h.send(tuitest.Key("r"))
	require.Equal(t, stateRules, h.model.State())

	screen := h.screen()
	assert.Contains(t, screen, "Alert Rules (4)")
	assert.Contains(t, screen, "High value deposit")
	assert.Contains(t, screen, "disabled")

	h.send(tuitest.Key("r"))
	assert.Equal(t, stateNormal, h.model.State())
}

func TestModel_quit(t *testing.T) {
	for _, key := range []tea.KeyPressMsg{tuitest.Key("q"), tuitest.KeyCtrlC()} {
		h := newHarness(t)
		_, cmd := h.model.Update(key)
		assert.True(t, tuitest.IsQuit(cmd), key.String())
	}
}

func TestModel_unbound_key_is_ignored(t *testing.T) {
	h := newHarness(t)
	before := h.screen()

	_, cmd := h.model.Update(tuitest.Key("z"))

	assert.Nil(t, cmd)
	assert.Equal(t, before, h.screen())
}

func TestModel_store_change_resumes_ticking(t *testing.T) {
	h := newHarness(t)
	h.toasts.Info("tick", "")

	m, cmd := h.model.Update(storeChangedMsg{})
	require.NotNil(t, cmd)
	assert.True(t, m.(Model).ticking)

	h.toasts.ClearAll()
	m, cmd = m.Update(toastTickMsg(h.clock.Now()))
	assert.Nil(t, cmd)
	assert.False(t, m.(Model).ticking)
}

func TestToastView_countdown_and_stack_order(t *testing.T) {
	c := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	store := toast.NewStore(toast.WithClock(c))
	v := NewToastView(store, c, 40, 2, "a")

	store.Info("oldest", "")
	store.Warning("middle", "")
	store.Error("newest", "disk full")

	out := tuitest.StripANSI(v.View())
	assert.NotContains(t, out, "oldest", "only maxOnScreen toasts are drawn")
	assert.Less(t, strings.Index(out, "middle"), strings.Index(out, "newest"), "newest sits at the bottom")
	assert.Contains(t, out, "7s")

	c.Advance(2500 * time.Millisecond)
	assert.Contains(t, tuitest.StripANSI(v.View()), "5s")
}

func TestToastView_persistent_and_action_footer(t *testing.T) {
	c := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	store := toast.NewStore(toast.WithClock(c))
	v := NewToastView(store, c, 40, 5, "a")

	store.Success("sticky", "", toast.Persistent())
	out := tuitest.StripANSI(v.View())
	assert.Contains(t, out, "sticky")
	assert.NotContains(t, out, "0s")

	store.ClearAll()
	store.Info("act", "", toast.WithAction("open", func() {}))
	assert.Contains(t, tuitest.StripANSI(v.View()), "[a] open")
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, "0s", remaining(-time.Second))
	assert.Equal(t, "1s", remaining(time.Millisecond))
	assert.Equal(t, "5s", remaining(5*time.Second))
	assert.Equal(t, "6s", remaining(5*time.Second+time.Millisecond))
}
