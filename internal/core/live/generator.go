// Package live fabricates synthetic CRM events (signups, lottery wins,
// operational alerts) at randomised intervals and feeds them into the
// notification log and the toast stack.
package live

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/toast"
	"github.com/colonyops/beacon/pkg/clock"
)

// Rand is the randomness source used for every choice the generator makes.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NotificationSink receives generated events as log entries.
type NotificationSink interface {
	Add(cat notify.Category, title, description string) notify.Notification
	MarkAsRead(id string) bool
}

// ToastSink receives generated events as toasts.
type ToastSink interface {
	Add(cat notify.Category, title, description string, opts ...toast.Option) string
}

// Config controls timing and event selection.
type Config struct {
	InitialDelay       time.Duration
	MinInterval        time.Duration
	MaxInterval        time.Duration
	LotteryProbability float64
	MinPrize           float64
	MaxPrize           float64
	Thresholds         Thresholds
}

// DefaultConfig returns the standard simulation settings.
func DefaultConfig() Config {
	return Config{
		InitialDelay:       5 * time.Second,
		MinInterval:        30 * time.Second,
		MaxInterval:        60 * time.Second,
		LotteryProbability: 0.30,
		MinPrize:           500,
		MaxPrize:           150_000,
		Thresholds:         DefaultThresholds,
	}
}

// Kind identifies how an event was produced.
type Kind string

const (
	KindLottery Kind = "lottery"
	KindMessage Kind = "message"
)

// Event is one generated occurrence, after delivery to both sinks.
type Event struct {
	Kind           Kind            `json:"kind"`
	Category       notify.Category `json:"category"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Tier           Tier            `json:"tier,omitempty"`
	PrizeAmount    float64         `json:"prize_amount,omitempty"`
	Winner         string          `json:"winner,omitempty"`
	Game           string          `json:"game,omitempty"`
	At             time.Time       `json:"at"`
	NotificationID string          `json:"notification_id"`
	ToastID        string          `json:"toast_id"`
}

// Stats counts delivered events.
type Stats struct {
	Total      int                     `json:"total"`
	Lottery    int                     `json:"lottery"`
	ByCategory map[notify.Category]int `json:"by_category"`
	ByTier     map[Tier]int            `json:"by_tier"`
}

// LotteryFraction returns the share of lottery events.
func (s Stats) LotteryFraction() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Lottery) / float64(s.Total)
}

// Generator schedules and emits events. It is safe for concurrent use.
type Generator struct {
	cfg    Config
	notes  NotificationSink
	toasts ToastSink
	clock  clock.Clock
	logger zerolog.Logger

	// fireMu serialises scheduled deliveries against Stop.
	fireMu sync.Mutex

	mu      sync.Mutex
	rand    Rand
	running bool
	epoch   uint64
	initial clock.Timer
	next    clock.Timer
	stats   Stats
	hooks   []func(Event)
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the clock used for scheduling.
func WithClock(c clock.Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithRand sets the randomness source.
func WithRand(r Rand) Option {
	return func(g *Generator) { g.rand = r }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// OnEvent registers fn to observe every delivered event.
func OnEvent(fn func(Event)) Option {
	return func(g *Generator) { g.hooks = append(g.hooks, fn) }
}

// New constructs a stopped generator that writes to notes and toasts.
func New(cfg Config, notes NotificationSink, toasts ToastSink, opts ...Option) *Generator {
	g := &Generator{
		cfg:    cfg,
		notes:  notes,
		toasts: toasts,
		clock:  clock.Real(),
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: zerolog.Nop(),
		stats:  newStats(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func newStats() Stats {
	return Stats{
		ByCategory: make(map[notify.Category]int),
		ByTier:     make(map[Tier]int),
	}
}

// Start schedules the first event after the initial delay. Calling Start on
// a running generator does nothing.
func (g *Generator) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return
	}
	g.running = true
	g.epoch++
	epoch := g.epoch
	g.initial = g.clock.AfterFunc(g.cfg.InitialDelay, func() { g.fire(epoch) })

	g.logger.Debug().
		Dur("initial_delay", g.cfg.InitialDelay).
		Msg("generator started")
}

// Stop cancels the initial-delay and recurring timers together and waits for
// an in-flight scheduled delivery to finish. No event fires after Stop
// returns. Stop must not be called from an OnEvent hook.
func (g *Generator) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	g.epoch++
	if g.initial != nil {
		g.initial.Stop()
		g.initial = nil
	}
	if g.next != nil {
		g.next.Stop()
		g.next = nil
	}
	total := g.stats.Total
	g.mu.Unlock()

	g.fireMu.Lock()
	g.fireMu.Unlock() //nolint:staticcheck // waits out a concurrent fire

	g.logger.Debug().Int("events", total).Msg("generator stopped")
}

// Running reports whether the generator is scheduled.
func (g *Generator) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Emit generates and delivers one event immediately without touching the
// schedule.
func (g *Generator) Emit() Event {
	g.mu.Lock()
	ev := g.pickLocked()
	g.mu.Unlock()

	return g.deliver(ev)
}

// Stats returns a copy of the delivery counters.
func (g *Generator) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := newStats()
	out.Total = g.stats.Total
	out.Lottery = g.stats.Lottery
	for k, v := range g.stats.ByCategory {
		out.ByCategory[k] = v
	}
	for k, v := range g.stats.ByTier {
		out.ByTier[k] = v
	}
	return out
}

func (g *Generator) fire(epoch uint64) {
	g.fireMu.Lock()
	defer g.fireMu.Unlock()

	g.mu.Lock()
	if !g.running || epoch != g.epoch {
		g.mu.Unlock()
		return
	}
	g.initial = nil
	g.next = nil
	ev := g.pickLocked()
	g.mu.Unlock()

	g.deliver(ev)

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running || epoch != g.epoch {
		return
	}
	wait := g.intervalLocked()
	g.next = g.clock.AfterFunc(wait, func() { g.fire(epoch) })
	g.logger.Debug().Dur("next_in", wait).Msg("next event scheduled")
}

func (g *Generator) deliver(ev Event) Event {
	ev.At = g.clock.Now()
	id := g.notes.Add(ev.Category, ev.Title, ev.Description).ID
	ev.NotificationID = id
	ev.ToastID = g.toasts.Add(ev.Category, ev.Title, ev.Description,
		toast.WithAction("mark read", func() { g.notes.MarkAsRead(id) }))

	g.mu.Lock()
	g.stats.Total++
	g.stats.ByCategory[ev.Category]++
	if ev.Kind == KindLottery {
		g.stats.Lottery++
		g.stats.ByTier[ev.Tier]++
	}
	hooks := make([]func(Event), len(g.hooks))
	copy(hooks, g.hooks)
	g.mu.Unlock()

	g.logger.Info().
		Str("kind", string(ev.Kind)).
		Str("category", string(ev.Category)).
		Str("title", ev.Title).
		Msg("live event")

	for _, fn := range hooks {
		fn(ev)
	}
	return ev
}

// pickLocked chooses the next event. Lottery events are drawn with the
// configured probability; otherwise a category bucket and then a message
// within it are chosen uniformly.
func (g *Generator) pickLocked() Event {
	if g.rand.Float64() < g.cfg.LotteryProbability {
		return g.lotteryLocked()
	}

	cat := notify.Categories[g.rand.IntN(len(notify.Categories))]
	msgs := Catalog[cat]
	m := msgs[g.rand.IntN(len(msgs))]
	return Event{
		Kind:        KindMessage,
		Category:    cat,
		Title:       m.Title,
		Description: m.Description,
	}
}

func (g *Generator) lotteryLocked() Event {
	span := max(g.cfg.MaxPrize-g.cfg.MinPrize, 0)
	amount := math.Round(g.cfg.MinPrize + g.rand.Float64()*span)
	winner := Winners[g.rand.IntN(len(Winners))]
	game := Games[g.rand.IntN(len(Games))]

	tier := g.cfg.Thresholds.Classify(amount)
	cat, m := lotteryMessage(tier, winner, game, amount)
	return Event{
		Kind:        KindLottery,
		Category:    cat,
		Title:       m.Title,
		Description: m.Description,
		Tier:        tier,
		PrizeAmount: amount,
		Winner:      winner,
		Game:        game,
	}
}

func (g *Generator) intervalLocked() time.Duration {
	span := g.cfg.MaxInterval - g.cfg.MinInterval
	if span <= 0 {
		return g.cfg.MinInterval
	}
	return g.cfg.MinInterval + time.Duration(g.rand.Float64()*float64(span))
}
