package eventbus_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/beacon/internal/core/eventbus"
	"github.com/colonyops/beacon/internal/core/eventbus/testbus"
	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/toast"
	"github.com/colonyops/beacon/pkg/clock"
)

func TestEventBus_dispatches_in_order(t *testing.T) {
	tb := testbus.New(t)

	for i := range 5 {
		tb.PublishNotificationChanged(eventbus.NotificationChangedPayload{Unread: i})
	}

	require.True(t, tb.WaitFor(eventbus.EventNotificationChanged, 5, time.Second))
	for i, p := range tb.Of(eventbus.EventNotificationChanged) {
		assert.Equal(t, i, p.(eventbus.NotificationChangedPayload).Unread)
	}
}

func TestEventBus_subscriber_panic_is_recovered(t *testing.T) {
	bus := eventbus.New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var panics atomic.Int32
	bus.OnPanic(func(eventbus.Event, any, any) { panics.Add(1) })

	delivered := make(chan struct{}, 1)
	bus.SubscribeToastChanged(func(eventbus.ToastChangedPayload) { panic("boom") })
	bus.SubscribeToastChanged(func(eventbus.ToastChangedPayload) { delivered <- struct{}{} })

	go bus.Start(ctx)
	bus.PublishToastChanged(eventbus.ToastChangedPayload{})

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second subscriber not called after first panicked")
	}
	assert.Equal(t, int32(1), panics.Load())
}

func TestEventBus_OnSubscribe(t *testing.T) {
	bus := eventbus.New(1)

	var seen []eventbus.Event
	bus.OnSubscribe(func(e eventbus.Event) { seen = append(seen, e) })
	bus.SubscribeGeneratorFired(func(eventbus.GeneratorFiredPayload) {})

	assert.Equal(t, []eventbus.Event{eventbus.EventGeneratorFired}, seen)
}

func TestBridge(t *testing.T) {
	tb := testbus.New(t)
	c := clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	notes := notify.NewStore(notify.WithClock(c))
	toasts := toast.NewStore(toast.WithClock(c))

	detach := eventbus.Bridge(tb.EventBus, notes, toasts)

	n := notes.Add(notify.CategoryWarning, "churn", "")
	notes.MarkAsRead(n.ID)
	id := toasts.Info("hello", "")
	toasts.Remove(id)

	require.True(t, tb.WaitFor(eventbus.EventNotificationChanged, 2, time.Second))
	require.True(t, tb.WaitFor(eventbus.EventToastChanged, 2, time.Second))

	notesEvents := tb.Of(eventbus.EventNotificationChanged)
	assert.Equal(t, notify.EventAdded, notesEvents[0].(eventbus.NotificationChangedPayload).Kind)
	read := notesEvents[1].(eventbus.NotificationChangedPayload)
	assert.Equal(t, notify.EventRead, read.Kind)
	assert.Zero(t, read.Unread)

	removed := tb.Of(eventbus.EventToastChanged)[1].(eventbus.ToastChangedPayload)
	assert.Equal(t, toast.ReasonDismissed, removed.Reason)
	assert.Equal(t, id, removed.Toast.ID)

	detach()
	tb.Reset()
	notes.Add(notify.CategoryInfo, "after detach", "")
	tb.AssertNotPublished(t, eventbus.EventNotificationChanged, 50*time.Millisecond)
}

func TestGeneratorHook(t *testing.T) {
	tb := testbus.New(t)
	c := clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	notes := notify.NewStore(notify.WithClock(c))
	toasts := toast.NewStore(toast.WithClock(c))

	gen := live.New(live.DefaultConfig(), notes, toasts, live.WithClock(c), eventbus.GeneratorHook(tb.EventBus))
	ev := gen.Emit()

	tb.AssertPublished(t, eventbus.EventGeneratorFired)
	got := tb.Of(eventbus.EventGeneratorFired)[0].(eventbus.GeneratorFiredPayload)
	assert.Equal(t, ev.NotificationID, got.Event.NotificationID)
}
