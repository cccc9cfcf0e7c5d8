package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/beacon/internal/beacon"
)

type ServeCmd struct {
	flags *Flags
	app   *beacon.App
	addr  string
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, app *beacon.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the notification API and websocket feed",
		UsageText: "beacon serve [--addr host:port]",
		Description: `Runs the live event generator headless and exposes both stores over HTTP.

The websocket feed at /ws pushes notification, toast and generator events
to dashboard clients as JSON frames.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides server.addr)",
				Sources:     cli.EnvVars("BEACON_ADDR"),
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.addr != "" {
		cmd.app.Config.Server.Addr = cmd.addr
	}

	stopDiag, err := startDiag(ctx, cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	defer stopDiag()

	cmd.app.Start(ctx)
	defer cmd.app.Close()

	return cmd.app.Server().Serve(ctx)
}
