package eventbus

import (
	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/toast"
)

// Bridge republishes store changes on the bus so that asynchronous
// consumers (TUI, websocket feed, metrics) observe them without holding
// references to the stores' listener lists. The returned function detaches
// the bridge.
func Bridge(bus *EventBus, notes *notify.Store, toasts *toast.Store) func() {
	if bus == nil {
		return func() {}
	}

	var detach []func()
	if notes != nil {
		detach = append(detach, notes.Subscribe(func(e notify.Event) {
			bus.PublishNotificationChanged(NotificationChangedPayload{
				Kind:         e.Kind,
				Notification: e.Notification,
				Unread:       e.Unread,
			})
		}))
	}
	if toasts != nil {
		detach = append(detach, toasts.Subscribe(func(e toast.Event) {
			bus.PublishToastChanged(ToastChangedPayload{
				Kind:   e.Kind,
				Toast:  e.Toast,
				Reason: e.Reason,
			})
		}))
	}

	return func() {
		for _, fn := range detach {
			fn()
		}
	}
}

// GeneratorHook returns a live.OnEvent hook that publishes generator events.
func GeneratorHook(bus *EventBus) live.Option {
	return live.OnEvent(func(e live.Event) {
		if bus == nil {
			return
		}
		bus.PublishGeneratorFired(GeneratorFiredPayload{Event: e})
	})
}
