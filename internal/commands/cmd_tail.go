package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/beacon/internal/beacon"
	"github.com/colonyops/beacon/internal/core/eventbus"
	"github.com/colonyops/beacon/internal/core/live"
)

type TailCmd struct {
	flags *Flags
	app   *beacon.App
	count int
	now   bool
}

// NewTailCmd creates a new tail command.
func NewTailCmd(flags *Flags, app *beacon.App) *TailCmd {
	return &TailCmd{flags: flags, app: app}
}

// Register adds the tail command to the application.
func (cmd *TailCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "tail",
		Usage:       "Print live events as JSON lines",
		UsageText:   "beacon tail [--count N] [--now]",
		Description: "Runs the live event generator headless and writes one JSON object per generated event to stdout.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "count",
				Aliases:     []string{"n"},
				Usage:       "exit after N events (0 runs until interrupted)",
				Destination: &cmd.count,
			},
			&cli.BoolFlag{
				Name:        "now",
				Usage:       "emit one event immediately instead of waiting for the initial delay",
				Destination: &cmd.now,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *TailCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.count < 0 {
		return fmt.Errorf("--count cannot be negative")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := make(chan live.Event, 64)
	cmd.app.Bus.SubscribeGeneratorFired(func(p eventbus.GeneratorFiredPayload) {
		select {
		case events <- p.Event:
		default:
			log.Warn().Str("title", p.Event.Title).Msg("tail output is behind, event skipped")
		}
	})

	stopDiag, err := startDiag(ctx, cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	defer stopDiag()

	cmd.app.Start(ctx)
	defer cmd.app.Close()

	// tail always runs the generator, whatever auto_start says.
	cmd.app.Generator.Start()
	if cmd.now {
		cmd.app.Generator.Emit()
	}

	enc := json.NewEncoder(c.Root().Writer)
	written := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if err := enc.Encode(ev); err != nil {
				return fmt.Errorf("write event: %w", err)
			}
			written++
			if cmd.count > 0 && written >= cmd.count {
				return nil
			}
		}
	}
}
