// Package hooks runs user shell commands when live events match a filter,
// e.g. a desktop notification for every jackpot.
package hooks

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/colonyops/beacon/internal/core/eventbus"
	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/pkg/clock"
	"github.com/colonyops/beacon/pkg/executil"
	"github.com/colonyops/beacon/pkg/tmpl"
)

const defaultTimeout = 10 * time.Second

var tierRank = map[live.Tier]int{
	live.TierStandard: 0,
	live.TierLucky:    1,
	live.TierBig:      2,
	live.TierJackpot:  3,
}

// Match filters events. Empty lists match everything. MinTier restricts the
// hook to lottery events at or above the tier.
type Match struct {
	Kinds      []live.Kind       `yaml:"kinds"`
	Categories []notify.Category `yaml:"categories"`
	MinTier    live.Tier         `yaml:"min_tier"`
}

// Hook is a shell command template run for matching events.
type Hook struct {
	Name     string        `yaml:"name"`
	On       Match         `yaml:"on"`
	Sh       string        `yaml:"sh"`
	Cooldown time.Duration `yaml:"cooldown"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Matches reports whether ev passes the filter.
func (h Hook) Matches(ev live.Event) bool {
	m := h.On
	if len(m.Kinds) > 0 && !slices.Contains(m.Kinds, ev.Kind) {
		return false
	}
	if len(m.Categories) > 0 && !slices.Contains(m.Categories, ev.Category) {
		return false
	}
	if m.MinTier != "" {
		if ev.Kind != live.KindLottery || tierRank[ev.Tier] < tierRank[m.MinTier] {
			return false
		}
	}
	return true
}

// Env returns the BEACON_* variables exported to hook commands.
func Env(ev live.Event) []string {
	return []string{
		"BEACON_KIND=" + string(ev.Kind),
		"BEACON_CATEGORY=" + string(ev.Category),
		"BEACON_TITLE=" + ev.Title,
		"BEACON_DESCRIPTION=" + ev.Description,
		"BEACON_TIER=" + string(ev.Tier),
		"BEACON_PRIZE=" + strconv.FormatFloat(ev.PrizeAmount, 'f', 0, 64),
		"BEACON_NOTIFICATION_ID=" + ev.NotificationID,
	}
}

// sampleEvent feeds template validation.
var sampleEvent = live.Event{
	Kind:        live.KindLottery,
	Category:    notify.CategorySuccess,
	Title:       "JACKPOT WINNER!",
	Description: "Maria S. hit the Mega Millions jackpot for $120,000!",
	Tier:        live.TierJackpot,
	PrizeAmount: 120_000,
	Winner:      "Maria S.",
	Game:        "Mega Millions",
}

// Validate checks every hook, naming fields hooks[i].
func Validate(hooks []Hook) error {
	var errs criterio.FieldErrorsBuilder
	for i, h := range hooks {
		field := fmt.Sprintf("hooks[%d]", i)
		if h.Name == "" {
			errs = errs.Append(field+".name", fmt.Errorf("cannot be empty"))
		}
		if h.Sh == "" {
			errs = errs.Append(field+".sh", fmt.Errorf("cannot be empty"))
		} else if err := tmpl.Validate(h.Sh, sampleEvent); err != nil {
			errs = errs.Append(field+".sh", fmt.Errorf("template error: %w", err))
		}
		if _, ok := tierRank[h.On.MinTier]; h.On.MinTier != "" && !ok {
			errs = errs.Append(field+".on.min_tier", fmt.Errorf("unknown tier %q", h.On.MinTier))
		}
		for j, c := range h.On.Categories {
			if !c.Valid() {
				errs = errs.Append(fmt.Sprintf("%s.on.categories[%d]", field, j), fmt.Errorf("unknown category %q", c))
			}
		}
		for j, k := range h.On.Kinds {
			if k != live.KindLottery && k != live.KindMessage {
				errs = errs.Append(fmt.Sprintf("%s.on.kinds[%d]", field, j), fmt.Errorf("unknown kind %q", k))
			}
		}
		if h.Cooldown < 0 || h.Timeout < 0 {
			errs = errs.Append(field, fmt.Errorf("cooldown and timeout cannot be negative"))
		}
	}
	return errs.ToError()
}

// Dispatcher runs matching hooks for each event.
type Dispatcher struct {
	hooks  []Hook
	runner executil.Runner
	clock  clock.Clock
	logger zerolog.Logger

	mu   sync.Mutex
	last map[string]time.Time
	wg   sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock sets the clock used for cooldowns.
func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher builds a dispatcher for hooks.
func NewDispatcher(hooks []Hook, runner executil.Runner, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		hooks:  hooks,
		runner: runner,
		clock:  clock.Real(),
		logger: zerolog.Nop(),
		last:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle runs every matching hook for ev synchronously and returns the
// names of the hooks that ran. Failures are logged.
func (d *Dispatcher) Handle(ctx context.Context, ev live.Event) []string {
	var ran []string
	for _, h := range d.hooks {
		if !h.Matches(ev) || !d.claim(h) {
			continue
		}

		cmd, err := tmpl.Render(h.Sh, ev)
		if err != nil {
			d.logger.Error().Err(err).Str("hook", h.Name).Msg("render hook")
			continue
		}

		timeout := h.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		err = d.runner.Run(runCtx, cmd, Env(ev))
		cancel()

		ran = append(ran, h.Name)
		if err != nil {
			d.logger.Warn().Err(err).Str("hook", h.Name).Msg("hook failed")
			continue
		}
		d.logger.Debug().Str("hook", h.Name).Str("title", ev.Title).Msg("hook ran")
	}
	return ran
}

// claim records a run for h unless it is still cooling down.
func (d *Dispatcher) claim(h Hook) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	if last, ok := d.last[h.Name]; ok && h.Cooldown > 0 && now.Sub(last) < h.Cooldown {
		return false
	}
	d.last[h.Name] = now
	return true
}

// Subscribe runs hooks for every generator event on the bus. Commands run
// off the bus goroutine; Wait blocks until in-flight runs finish.
func (d *Dispatcher) Subscribe(ctx context.Context, bus *eventbus.EventBus) {
	if len(d.hooks) == 0 {
		return
	}
	bus.SubscribeGeneratorFired(func(p eventbus.GeneratorFiredPayload) {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.Handle(ctx, p.Event)
		}()
	})
}

// Wait blocks until hooks started by Subscribe have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
