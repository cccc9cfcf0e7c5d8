// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within beacon.
package eventbus

import (
	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/toast"
)

// Event names a bus topic.
type Event string

const (
	// Keep list sorted A-Z
	EventGeneratorFired      Event = "generator.fired"
	EventNotificationChanged Event = "notification.changed"
	EventToastChanged        Event = "toast.changed"
)

// Events lists every event type with its payload struct.
var Events = map[Event]any{
	EventGeneratorFired:      GeneratorFiredPayload{},
	EventNotificationChanged: NotificationChangedPayload{},
	EventToastChanged:        ToastChangedPayload{},
}

// GeneratorFiredPayload is emitted after the live generator delivered an
// event to both stores.
type GeneratorFiredPayload struct {
	Event live.Event
}

// NotificationChangedPayload is emitted for every notification log change.
type NotificationChangedPayload struct {
	Kind         notify.EventKind
	Notification notify.Notification
	Unread       int
}

// ToastChangedPayload is emitted for every toast stack change.
type ToastChangedPayload struct {
	Kind   toast.EventKind
	Toast  toast.Toast
	Reason toast.Reason
}

// PublishGeneratorFired publishes a generator.fired event.
func (bus *EventBus) PublishGeneratorFired(p GeneratorFiredPayload) {
	bus.send(EventGeneratorFired, p)
}

// SubscribeGeneratorFired registers fn for generator.fired events.
func (bus *EventBus) SubscribeGeneratorFired(fn func(GeneratorFiredPayload)) {
	bus.subscribe(EventGeneratorFired, func(p any) { fn(p.(GeneratorFiredPayload)) })
}

// PublishNotificationChanged publishes a notification.changed event.
func (bus *EventBus) PublishNotificationChanged(p NotificationChangedPayload) {
	bus.send(EventNotificationChanged, p)
}

// SubscribeNotificationChanged registers fn for notification.changed events.
func (bus *EventBus) SubscribeNotificationChanged(fn func(NotificationChangedPayload)) {
	bus.subscribe(EventNotificationChanged, func(p any) { fn(p.(NotificationChangedPayload)) })
}

// PublishToastChanged publishes a toast.changed event.
func (bus *EventBus) PublishToastChanged(p ToastChangedPayload) {
	bus.send(EventToastChanged, p)
}

// SubscribeToastChanged registers fn for toast.changed events.
func (bus *EventBus) SubscribeToastChanged(fn func(ToastChangedPayload)) {
	bus.subscribe(EventToastChanged, func(p any) { fn(p.(ToastChangedPayload)) })
}
