// Package toast manages the stack of visible transient toasts: creation with
// category defaults, timed expiry, dismissal and eviction.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/pkg/clock"
)

const DefaultMaxVisible = 10

// DefaultDurations are the per-category lifetimes applied when a toast is
// added without an explicit duration.
var DefaultDurations = map[notify.Category]time.Duration{
	notify.CategorySuccess: 5 * time.Second,
	notify.CategoryInfo:    5 * time.Second,
	notify.CategoryWarning: 6 * time.Second,
	notify.CategoryError:   7 * time.Second,
}

// Action is an optional user-triggered effect attached to a toast.
type Action struct {
	Label  string
	Effect func()
}

// Toast is a visible transient message. A non-positive Duration means the
// toast stays until dismissed.
type Toast struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Category    notify.Category `json:"category"`
	Duration    time.Duration   `json:"duration"`
	Action      *Action         `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Persistent reports whether the toast never expires on its own.
func (t Toast) Persistent() bool {
	return t.Duration <= 0
}

// ExpiresAt returns the expiry instant, or the zero time for persistent toasts.
func (t Toast) ExpiresAt() time.Time {
	if t.Persistent() {
		return time.Time{}
	}
	return t.CreatedAt.Add(t.Duration)
}

type entry struct {
	toast Toast
	timer clock.Timer
}

// Store holds the visible toasts, newest first. The zero value is not
// usable; construct with NewStore.
type Store struct {
	mu         sync.Mutex
	clock      clock.Clock
	maxVisible int
	durations  map[notify.Category]time.Duration
	entries    []entry
	listeners  map[int]Listener
	nextSub    int
	newID      func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMaxVisible sets the toast capacity. Values below one are ignored.
func WithMaxVisible(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxVisible = n
		}
	}
}

// WithDurations overrides default durations for the given categories.
func WithDurations(d map[notify.Category]time.Duration) StoreOption {
	return func(s *Store) {
		for cat, dur := range d {
			s.durations[cat] = dur
		}
	}
}

// WithClock sets the clock used for expiry timers.
func WithClock(c clock.Clock) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewStore constructs an empty toast store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		clock:      clock.Real(),
		maxVisible: DefaultMaxVisible,
		durations:  make(map[notify.Category]time.Duration, len(DefaultDurations)),
		listeners:  make(map[int]Listener),
		newID:      uuid.NewString,
	}
	for cat, d := range DefaultDurations {
		s.durations[cat] = d
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) mustInit() {
	if s == nil || s.maxVisible == 0 {
		panic("toast: store used before NewStore")
	}
}

// DefaultDuration returns the lifetime applied to cat when no explicit
// duration is given.
func (s *Store) DefaultDuration(cat notify.Category) time.Duration {
	s.mustInit()
	return s.durations[cat.OrInfo()]
}

// Add creates a toast at the front of the stack and returns its id. Toasts
// beyond capacity are evicted from the tail. A positive duration schedules
// exactly one removal.
func (s *Store) Add(cat notify.Category, title, description string, opts ...Option) string {
	s.mustInit()

	cat = cat.OrInfo()
	o := options{duration: s.durations[cat]}
	for _, opt := range opts {
		opt(&o)
	}
	if title == "" {
		title = cat.Label()
	}

	s.mu.Lock()
	t := Toast{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		Category:    cat,
		Duration:    o.duration,
		Action:      o.action,
		CreatedAt:   s.clock.Now(),
	}

	e := entry{toast: t}
	if !t.Persistent() {
		id := t.ID
		e.timer = s.clock.AfterFunc(t.Duration, func() { s.expire(id) })
	}
	s.entries = append([]entry{e}, s.entries...)

	var evicted []entry
	if len(s.entries) > s.maxVisible {
		evicted = append(evicted, s.entries[s.maxVisible:]...)
		s.entries = s.entries[:s.maxVisible:s.maxVisible]
	}
	s.mu.Unlock()

	for _, ev := range evicted {
		stopTimer(ev.timer)
		s.emit(Event{Kind: EventRemoved, Toast: ev.toast, Reason: ReasonEvicted})
	}
	s.emit(Event{Kind: EventAdded, Toast: t})
	return t.ID
}

// Success adds a success toast.
func (s *Store) Success(title, description string, opts ...Option) string {
	return s.Add(notify.CategorySuccess, title, description, opts...)
}

// Error adds an error toast.
func (s *Store) Error(title, description string, opts ...Option) string {
	return s.Add(notify.CategoryError, title, description, opts...)
}

// Warning adds a warning toast.
func (s *Store) Warning(title, description string, opts ...Option) string {
	return s.Add(notify.CategoryWarning, title, description, opts...)
}

// Info adds an info toast.
func (s *Store) Info(title, description string, opts ...Option) string {
	return s.Add(notify.CategoryInfo, title, description, opts...)
}

// Remove dismisses the toast with id. Unknown ids are a no-op.
func (s *Store) Remove(id string) {
	s.remove(id, ReasonDismissed)
}

func (s *Store) expire(id string) {
	s.remove(id, ReasonExpired)
}

func (s *Store) remove(id string, reason Reason) {
	s.mustInit()

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	e := s.entries[idx]
	s.entries = append(s.entries[:idx:idx], s.entries[idx+1:]...)
	s.mu.Unlock()

	if reason != ReasonExpired {
		stopTimer(e.timer)
	}
	s.emit(Event{Kind: EventRemoved, Toast: e.toast, Reason: reason})
}

// ClearAll removes every toast and stops their pending timers.
func (s *Store) ClearAll() {
	s.mustInit()

	s.mu.Lock()
	entries := s.entries
	s.entries = nil
	s.mu.Unlock()

	for _, e := range entries {
		stopTimer(e.timer)
	}
	s.emit(Event{Kind: EventCleared})
}

// Trigger runs the action attached to the toast with id. It reports whether
// an action ran. The toast stays visible.
func (s *Store) Trigger(id string) bool {
	s.mustInit()

	s.mu.Lock()
	idx := s.indexOf(id)
	var action *Action
	if idx >= 0 {
		action = s.entries[idx].toast.Action
	}
	s.mu.Unlock()

	if action == nil || action.Effect == nil {
		return false
	}
	action.Effect()
	return true
}

// List returns a snapshot of the visible toasts, newest first.
func (s *Store) List() []Toast {
	s.mustInit()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Toast, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.toast
	}
	return out
}

// Len returns the number of visible toasts.
func (s *Store) Len() int {
	s.mustInit()

	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// MaxVisible returns the toast capacity.
func (s *Store) MaxVisible() int {
	s.mustInit()
	return s.maxVisible
}

// Subscribe registers fn for every change and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mustInit()

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].toast.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) emit(e Event) {
	s.mu.Lock()
	subs := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}

func stopTimer(t clock.Timer) {
	if t != nil {
		t.Stop()
	}
}
