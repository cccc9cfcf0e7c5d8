package toast

import "time"

type options struct {
	duration time.Duration
	action   *Action
}

// Option adjusts a single toast at creation.
type Option func(*options)

// WithDuration sets an explicit lifetime. Zero or negative keeps the toast
// until it is dismissed.
func WithDuration(d time.Duration) Option {
	return func(o *options) { o.duration = d }
}

// Persistent keeps the toast until it is dismissed.
func Persistent() Option {
	return WithDuration(0)
}

// WithAction attaches a labelled effect run by Store.Trigger.
func WithAction(label string, effect func()) Option {
	return func(o *options) {
		o.action = &Action{Label: label, Effect: effect}
	}
}

// EventKind identifies a change to the toast stack.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventRemoved EventKind = "removed"
	EventCleared EventKind = "cleared"
)

// Reason explains why a toast left the stack.
type Reason string

const (
	ReasonExpired   Reason = "expired"
	ReasonDismissed Reason = "dismissed"
	ReasonEvicted   Reason = "evicted"
)

// Event describes a change delivered to subscribers. Reason is set for
// EventRemoved only.
type Event struct {
	Kind   EventKind
	Toast  Toast
	Reason Reason
}

// Listener receives store events outside the store lock.
type Listener func(Event)
