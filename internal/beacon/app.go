// Package beacon wires the notification stores, the live generator and
// their consumers into a single application container.
package beacon

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/beacon/internal/core/alerts"
	"github.com/colonyops/beacon/internal/core/config"
	"github.com/colonyops/beacon/internal/core/eventbus"
	"github.com/colonyops/beacon/internal/core/hooks"
	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/toast"
	"github.com/colonyops/beacon/internal/metrics"
	"github.com/colonyops/beacon/internal/server"
	"github.com/colonyops/beacon/internal/server/feed"
	"github.com/colonyops/beacon/pkg/clock"
	"github.com/colonyops/beacon/pkg/executil"
)

const busBuffer = 256

// App is the central entry point for all beacon operations.
// Commands and the TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config    *config.Config
	Clock     clock.Clock
	Bus       *eventbus.EventBus
	Notes     *notify.Store
	Toasts    *toast.Store
	Generator *live.Generator
	Rules     []alerts.Rule
	Metrics   *metrics.Metrics
	Feed      *feed.Hub
	Hooks     *hooks.Dispatcher

	logger zerolog.Logger
	detach func()
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

type settings struct {
	clock  clock.Clock
	rand   live.Rand
	runner executil.Runner
	logger zerolog.Logger
}

// Option configures App construction.
type Option func(*settings)

// WithClock replaces the wall clock, mainly for simulation and tests.
func WithClock(c clock.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithRand fixes the generator's randomness source.
func WithRand(r live.Rand) Option {
	return func(s *settings) { s.rand = r }
}

// WithRunner sets the command runner used by hooks.
func WithRunner(r executil.Runner) Option {
	return func(s *settings) { s.runner = r }
}

// WithLogger sets the base logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New constructs an App from a loaded configuration. Nothing runs until
// Start is called.
func New(cfg *config.Config, opts ...Option) *App {
	s := settings{
		clock:  clock.Real(),
		runner: &executil.Shell{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	bus := eventbus.New(busBuffer)
	eventbus.RegisterDebugLogger(bus, s.logger.With().Str("cmp", "eventbus").Logger())

	notes := notify.NewStore(
		notify.WithClock(s.clock),
		notify.WithCapacity(cfg.Notifications.MaxRetained),
	)
	toasts := toast.NewStore(
		toast.WithClock(s.clock),
		toast.WithMaxVisible(cfg.Toasts.MaxVisible),
		toast.WithDurations(cfg.Toasts.Durations),
	)

	genOpts := []live.Option{
		live.WithClock(s.clock),
		live.WithLogger(s.logger.With().Str("cmp", "generator").Logger()),
		eventbus.GeneratorHook(bus),
	}
	if s.rand != nil {
		genOpts = append(genOpts, live.WithRand(s.rand))
	}
	gen := live.New(cfg.Live(), notes, toasts, genOpts...)

	m := metrics.New()
	m.WatchStores(notes, toasts)
	m.Subscribe(bus)

	a := &App{
		Config:    cfg,
		Clock:     s.clock,
		Bus:       bus,
		Notes:     notes,
		Toasts:    toasts,
		Generator: gen,
		Rules:     cfg.Rules(),
		Metrics:   m,
		logger:    s.logger,
		wg:        new(sync.WaitGroup),
	}

	a.Feed = feed.NewHub(cfg.Server.FeedBuffer,
		feed.WithSnapshot(a.Snapshot),
		feed.WithClientCount(m.SetFeedClients),
		feed.WithLogger(s.logger.With().Str("cmp", "feed").Logger()),
	)
	a.Feed.Subscribe(bus)

	a.Hooks = hooks.NewDispatcher(cfg.Hooks, s.runner,
		hooks.WithClock(s.clock),
		hooks.WithLogger(s.logger.With().Str("cmp", "hooks").Logger()),
	)

	a.detach = eventbus.Bridge(bus, notes, toasts)
	return a
}

// Start runs the bus, the feed hub and the hook dispatcher until Close, and
// starts the generator when auto start is enabled.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.Bus.Start(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.Feed.Run(ctx)
	}()
	a.Hooks.Subscribe(ctx, a.Bus)

	if a.Config.Generator.AutoStartEnabled() {
		a.Generator.Start()
	}
	a.logger.Debug().
		Int("rules", len(a.Rules)).
		Int("hooks", len(a.Config.Hooks)).
		Msg("app started")
}

// Close stops the generator and every background goroutine. It is safe to
// call on an App that was never started.
func (a *App) Close() {
	a.Generator.Stop()
	a.detach()
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	a.Hooks.Wait()
}

// Snapshot returns the current state of both stores for newly connected
// feed clients.
func (a *App) Snapshot() any {
	return feed.Snapshot{
		Notifications: a.Notes.List(),
		Unread:        a.Notes.UnreadCount(),
		Toasts:        a.Toasts.List(),
	}
}

// Server builds the HTTP API over the app's components.
func (a *App) Server() *server.Server {
	return server.New(a.Config.Server, server.Deps{
		Notes:     a.Notes,
		Toasts:    a.Toasts,
		Generator: a.Generator,
		Rules:     a.Rules,
		Metrics:   a.Metrics,
		Feed:      a.Feed,
	}, a.logger.With().Str("cmp", "server").Logger())
}
