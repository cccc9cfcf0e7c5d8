package commands

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/beacon/internal/beacon"
	"github.com/colonyops/beacon/internal/core/logging"
	"github.com/colonyops/beacon/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *beacon.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *beacon.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Register adds the tui command to the application.
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "tui",
		Usage:       "Open the live notification dashboard",
		UsageText:   "beacon tui",
		Description: "Runs the live event generator and shows toasts, the notification center and alert rules in the terminal.",
		Action:      cmd.run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	stopDiag, err := startDiag(ctx, cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	defer stopDiag()

	cmd.app.Start(ctx)
	defer cmd.app.Close()

	m := tui.New(tui.Options{
		Notes:     cmd.app.Notes,
		Toasts:    cmd.app.Toasts,
		Generator: cmd.app.Generator,
		Rules:     cmd.app.Rules,
		Bus:       cmd.app.Bus,
		Config:    *cmd.app.Config,
		Clock:     cmd.app.Clock,
		Logger:    logging.Component("tui"),
	})

	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
