package tui

import (
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/beacon/internal/core/eventbus"
	"github.com/colonyops/beacon/internal/core/live"
)

// storeChangedMsg asks the model to re-read the stores. Last carries the
// most recent generator event seen since the previous drain, if any.
type storeChangedMsg struct {
	last *live.Event
}

// SignalBuffer coalesces store and generator activity from the event bus
// into single redraw signals so a burst of changes costs one render.
type SignalBuffer struct {
	mu     sync.Mutex
	last   *live.Event
	dirty  bool
	signal chan struct{}
}

// NewSignalBuffer constructs an empty buffer.
func NewSignalBuffer() *SignalBuffer {
	return &SignalBuffer{signal: make(chan struct{}, 1)}
}

// Attach subscribes the buffer to every bus topic the dashboard renders.
func (b *SignalBuffer) Attach(bus *eventbus.EventBus) {
	if bus == nil {
		return
	}
	bus.SubscribeNotificationChanged(func(eventbus.NotificationChangedPayload) { b.Touch() })
	bus.SubscribeToastChanged(func(eventbus.ToastChangedPayload) { b.Touch() })
	bus.SubscribeGeneratorFired(func(p eventbus.GeneratorFiredPayload) { b.Push(p.Event) })
}

// Touch marks the stores as changed and emits a non-blocking signal.
func (b *SignalBuffer) Touch() {
	b.mu.Lock()
	b.dirty = true
	b.mu.Unlock()
	b.notify()
}

// Push records a generator event and emits a non-blocking signal.
func (b *SignalBuffer) Push(ev live.Event) {
	b.mu.Lock()
	b.dirty = true
	b.last = &ev
	b.mu.Unlock()
	b.notify()
}

func (b *SignalBuffer) notify() {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns the pending change, resetting the buffer. ok is false when
// nothing changed since the last drain.
func (b *SignalBuffer) Drain() (storeChangedMsg, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.dirty {
		return storeChangedMsg{}, false
	}
	msg := storeChangedMsg{last: b.last}
	b.dirty = false
	b.last = nil
	return msg, true
}

// WaitForSignal blocks until there is a change ready to drain.
func (b *SignalBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		msg, _ := b.Drain()
		return msg
	}
}
