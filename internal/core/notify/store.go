// Package notify holds the session-scoped notification log: a bounded,
// newest-first list of read/unread entries backing the notification center
// and its unread badge.
package notify

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/colonyops/beacon/pkg/clock"
)

// DefaultCapacity is the number of notifications retained when no
// capacity is configured.
const DefaultCapacity = 100

// Notification is a single entry in the notification log.
type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	Read        bool      `json:"read"`
}

// EventKind identifies a change to the log.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventRead    EventKind = "read"
	EventAllRead EventKind = "all_read"
	EventCleared EventKind = "cleared"
	EventEvicted EventKind = "evicted"
)

// Event describes a change delivered to subscribers. Unread is the unread
// count after the change.
type Event struct {
	Kind         EventKind
	Notification Notification
	Unread       int
}

// Listener receives store events. Listeners run outside the store lock and
// may call back into the store.
type Listener func(Event)

// Store is the bounded notification log. The zero value is not usable;
// construct with NewStore.
type Store struct {
	mu        sync.Mutex
	clock     clock.Clock
	capacity  int
	entropy   io.Reader
	items     []Notification
	unread    int
	listeners map[int]Listener
	nextSub   int
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity sets the maximum number of retained notifications.
// Values below one are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithClock sets the clock used for timestamps and ids.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewStore constructs an empty notification log.
func NewStore(opts ...Option) *Store {
	s := &Store{
		clock:     clock.Real(),
		capacity:  DefaultCapacity,
		entropy:   ulid.Monotonic(rand.Reader, 0),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) mustInit() {
	if s == nil || s.capacity == 0 {
		panic("notify: store used before NewStore")
	}
}

// Add prepends a new unread notification, evicting the oldest entries
// beyond capacity.
func (s *Store) Add(cat Category, title, description string) Notification {
	s.mustInit()

	s.mu.Lock()
	now := s.clock.Now()
	n := Notification{
		ID:          ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		Title:       title,
		Description: description,
		Category:    cat.OrInfo(),
		CreatedAt:   now,
	}

	s.items = append([]Notification{n}, s.items...)
	s.unread++

	var evicted []Notification
	if len(s.items) > s.capacity {
		evicted = append(evicted, s.items[s.capacity:]...)
		s.items = s.items[:s.capacity:s.capacity]
		for _, e := range evicted {
			if !e.Read {
				s.unread--
			}
		}
	}
	unread := s.unread
	s.mu.Unlock()

	for _, e := range evicted {
		s.emit(Event{Kind: EventEvicted, Notification: e, Unread: unread})
	}
	s.emit(Event{Kind: EventAdded, Notification: n, Unread: unread})
	return n
}

// MarkAsRead marks the notification with id as read. It reports whether an
// unread entry transitioned to read; unknown ids and already-read entries
// are a no-op.
func (s *Store) MarkAsRead(id string) bool {
	s.mustInit()

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 || s.items[idx].Read {
		s.mu.Unlock()
		return false
	}
	s.items[idx].Read = true
	s.unread--
	n, unread := s.items[idx], s.unread
	s.mu.Unlock()

	s.emit(Event{Kind: EventRead, Notification: n, Unread: unread})
	return true
}

// MarkAllAsRead marks every entry as read.
func (s *Store) MarkAllAsRead() {
	s.mustInit()

	s.mu.Lock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.unread = 0
	s.mu.Unlock()

	s.emit(Event{Kind: EventAllRead, Unread: 0})
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mustInit()

	s.mu.Lock()
	s.items = nil
	s.unread = 0
	s.mu.Unlock()

	s.emit(Event{Kind: EventCleared, Unread: 0})
}

// List returns a snapshot of the log, newest first.
func (s *Store) List() []Notification {
	s.mustInit()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the notification with id.
func (s *Store) Get(id string) (Notification, bool) {
	s.mustInit()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Notification{}, false
	}
	return s.items[idx], true
}

// UnreadCount returns the number of unread entries.
func (s *Store) UnreadCount() int {
	s.mustInit()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mustInit()

	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Capacity returns the maximum number of retained entries.
func (s *Store) Capacity() int {
	s.mustInit()
	return s.capacity
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
	for i := range s.items {
		if s.items[i].ID == id {
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
