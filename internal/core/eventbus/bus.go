package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches published events to subscribers on a single
// goroutine started with Start. Publishing never blocks: when the buffer is
// full the event is dropped and the OnDrop hooks fire.
type EventBus struct {
	ch chan envelope

	subMu sync.RWMutex
	subs  map[Event][]func(any)

	hookMu      sync.RWMutex
	onPublish   []func(Event, any)
	onDrop      []func(Event, any)
	onSubscribe []func(Event)
	onPanic     []func(Event, any, any)
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

// OnPublish registers a hook that fires after an event is successfully enqueued.
func (bus *EventBus) OnPublish(fn func(Event, any)) {
	bus.hookMu.Lock()
	bus.onPublish = append(bus.onPublish, fn)
	bus.hookMu.Unlock()
}

// OnDrop registers a hook that fires when an event is dropped due to a full buffer.
func (bus *EventBus) OnDrop(fn func(Event, any)) {
	bus.hookMu.Lock()
	bus.onDrop = append(bus.onDrop, fn)
	bus.hookMu.Unlock()
}

// OnSubscribe registers a hook that fires after a subscriber is registered.
func (bus *EventBus) OnSubscribe(fn func(Event)) {
	bus.hookMu.Lock()
	bus.onSubscribe = append(bus.onSubscribe, fn)
	bus.hookMu.Unlock()
}

// OnPanic registers a hook that fires when a subscriber panics.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) {
	bus.hookMu.Lock()
	bus.onPanic = append(bus.onPanic, fn)
	bus.hookMu.Unlock()
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.subMu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.subMu.Unlock()

	bus.hookMu.RLock()
	hooks := append([]func(Event){}, bus.onSubscribe...)
	bus.hookMu.RUnlock()
	for _, h := range hooks {
		h(event)
	}
}

// send enqueues an event and fires hooks. Used by the typed Publish* methods.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		bus.runHooks(bus.hookSnapshot(&bus.onPublish), event, payload)
	default:
		bus.runHooks(bus.hookSnapshot(&bus.onDrop), event, payload)
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.subMu.RLock()
	subs := append([]func(any){}, bus.subs[env.event]...)
	bus.subMu.RUnlock()

	for _, fn := range subs {
		bus.call(env, fn)
	}
}

func (bus *EventBus) call(env envelope, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(env.event, env.payload, r)
		}
	}()
	fn(env.payload)
}

func (bus *EventBus) hookSnapshot(list *[]func(Event, any)) []func(Event, any) {
	bus.hookMu.RLock()
	defer bus.hookMu.RUnlock()
	return append([]func(Event, any){}, (*list)...)
}

func (bus *EventBus) runHooks(hooks []func(Event, any), event Event, payload any) {
	for _, fn := range hooks {
		fn(event, payload)
	}
}

func (bus *EventBus) runOnPanic(event Event, payload any, recovered any) {
	bus.hookMu.RLock()
	hooks := append([]func(Event, any, any){}, bus.onPanic...)
	bus.hookMu.RUnlock()
	for _, fn := range hooks {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn(event, payload, recovered)
		}()
	}
}
