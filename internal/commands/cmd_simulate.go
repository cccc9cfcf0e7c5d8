package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/styles"
	"github.com/colonyops/beacon/internal/core/toast"
	"github.com/colonyops/beacon/pkg/clock"
	"github.com/colonyops/beacon/pkg/iojson"
)

type SimulateCmd struct {
	flags  *Flags
	events int
	seed   uint64
	format string
}

// NewSimulateCmd creates a new simulate command.
func NewSimulateCmd(flags *Flags) *SimulateCmd {
	return &SimulateCmd{flags: flags}
}

// Register adds the simulate command to the application.
func (cmd *SimulateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "simulate",
		Usage:     "Run the generator on a simulated clock and report the event mix",
		UsageText: "beacon simulate [--events N] [--seed S] [--format text|json]",
		Description: `Runs the live generator with the configured timing against a simulated
clock, so thousands of events complete instantly, then prints the category,
tier and lottery distribution.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "events",
				Aliases:     []string{"n"},
				Usage:       "number of events to generate",
				Value:       1000,
				Destination: &cmd.events,
			},
			&cli.Uint64Flag{
				Name:        "seed",
				Usage:       "random seed (0 picks one)",
				Destination: &cmd.seed,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

// SimulationReport summarises a simulated run.
type SimulationReport struct {
	Seed            uint64        `json:"seed"`
	Events          int           `json:"events"`
	SimulatedTime   time.Duration `json:"simulated_time"`
	LotteryFraction float64       `json:"lottery_fraction"`
	Stats           live.Stats    `json:"stats"`
	LargestPrize    float64       `json:"largest_prize"`
	Unread          int           `json:"unread"`
	ToastsVisible   int           `json:"toasts_visible"`
}

func (cmd *SimulateCmd) run(_ context.Context, c *cli.Command) error {
	if cmd.events < 1 {
		return fmt.Errorf("--events must be at least 1")
	}
	if cmd.format != "text" && cmd.format != "json" {
		return fmt.Errorf("unknown format %q", cmd.format)
	}

	seed := cmd.seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	report := Simulate(cmd.flags.Config.Live(), cmd.events, seed)
	if cmd.format == "json" {
		return iojson.Write(c.Root().Writer, report)
	}
	return writeReport(c.Root().Writer, report)
}

// Simulate runs the generator against a fake clock until events have been
// delivered.
func Simulate(cfg live.Config, events int, seed uint64) SimulationReport {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := clock.NewFake(start)

	notes := notify.NewStore(notify.WithClock(fake))
	toasts := toast.NewStore(toast.WithClock(fake))

	var largest float64
	gen := live.New(cfg, notes, toasts,
		live.WithClock(fake),
		live.WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))),
		live.OnEvent(func(ev live.Event) { largest = max(largest, ev.PrizeAmount) }),
	)

	step := max(cfg.MinInterval/4, time.Millisecond)
	gen.Start()
	for gen.Stats().Total < events {
		fake.Advance(step)
	}
	gen.Stop()

	stats := gen.Stats()
	return SimulationReport{
		Seed:            seed,
		Events:          stats.Total,
		SimulatedTime:   fake.Now().Sub(start),
		LotteryFraction: stats.LotteryFraction(),
		Stats:           stats,
		LargestPrize:    largest,
		Unread:          notes.UnreadCount(),
		ToastsVisible:   toasts.Len(),
	}
}

func writeReport(w io.Writer, r SimulationReport) error {
	pct := func(n int) float64 { return 100 * float64(n) / float64(max(r.Events, 1)) }

	lines := []string{
		styles.CommandHeaderStyle.Render("Simulation"),
		fmt.Sprintf("  seed            %d", r.Seed),
		fmt.Sprintf("  events          %d", r.Events),
		fmt.Sprintf("  simulated time  %s", r.SimulatedTime.Round(time.Second)),
		fmt.Sprintf("  lottery share   %.1f%%", 100*r.LotteryFraction),
		fmt.Sprintf("  largest prize   $%.0f", r.LargestPrize),
		"",
		styles.CommandHeaderStyle.Render("Categories"),
	}
	for _, cat := range notify.Categories {
		n := r.Stats.ByCategory[cat]
		lines = append(lines, fmt.Sprintf("  %s %-8s %6d  %5.1f%%",
			styles.CategoryText(cat).Render(styles.CategoryIcon(cat)), cat, n, pct(n)))
	}

	lines = append(lines, "", styles.CommandHeaderStyle.Render("Lottery tiers"))
	for _, tier := range []live.Tier{live.TierStandard, live.TierLucky, live.TierBig, live.TierJackpot} {
		n := r.Stats.ByTier[tier]
		lines = append(lines, fmt.Sprintf("  %-10s %6d", tier, n))
	}
	lines = append(lines, "", styles.TextMutedStyle.Render(
		fmt.Sprintf("log retained %d unread, %d toasts visible at end", r.Unread, r.ToastsVisible)))

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
