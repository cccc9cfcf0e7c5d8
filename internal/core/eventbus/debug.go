package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger registers bus hooks that log all event activity at debug level.
// Uses OnPublish for event firing, OnDrop for buffer-full warnings, and OnPanic
// for subscriber panic reporting.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		e := logger.Debug().Str("event", string(event))
		switch p := payload.(type) {
		case NotificationChangedPayload:
			e = e.Str("kind", string(p.Kind)).Int("unread", p.Unread)
		case ToastChangedPayload:
			e = e.Str("kind", string(p.Kind)).Str("toast_id", p.Toast.ID)
			if p.Reason != "" {
				e = e.Str("reason", string(p.Reason))
			}
		case GeneratorFiredPayload:
			e = e.Str("kind", string(p.Event.Kind)).Str("category", string(p.Event.Category))
		}
		e.Msg("event fired")
	})

	bus.OnDrop(func(event Event, _ any) {
		logger.Warn().Str("event", string(event)).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}
