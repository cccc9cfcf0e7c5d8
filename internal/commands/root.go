package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/beacon/internal/beacon"
)

// GlobalFlags returns the root flags bound to flags.
func GlobalFlags(flags *Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("BEACON_LOG_LEVEL"),
			Value:       "info",
			Destination: &flags.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (stderr when empty; the dashboard defaults to the state dir)",
			Sources:     cli.EnvVars("BEACON_LOG_FILE"),
			Destination: &flags.LogFile,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (json, console)",
			Sources:     cli.EnvVars("BEACON_LOG_FORMAT"),
			Value:       "json",
			Destination: &flags.LogFormat,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     cli.EnvVars("BEACON_CONFIG"),
			Value:       DefaultConfigPath(),
			Destination: &flags.ConfigPath,
		},
		&cli.IntFlag{
			Name:        "diag-port",
			Usage:       "serve pprof and metrics on this localhost port (0 disables)",
			Sources:     cli.EnvVars("BEACON_DIAG_PORT"),
			Destination: &flags.DiagPort,
		},
	}
}

// NewRoot builds the beacon command tree. The dashboard is the default
// action. app is populated later, in the root Before hook.
func NewRoot(flags *Flags, app *beacon.App) *cli.Command {
	root := &cli.Command{
		Name:      "beacon",
		Usage:     "Live CRM notifications in the terminal",
		UsageText: "beacon [global options] command [command options]",
		Description: `Beacon simulates a stream of CRM events (signups, lottery wins, operational
alerts) and surfaces them as transient toasts and a persistent notification log.

Run 'beacon' with no arguments to open the live dashboard.
Run 'beacon serve' to expose the same state over HTTP and a websocket feed.`,
		Flags: GlobalFlags(flags),
	}

	tuiCmd := NewTuiCmd(flags, app)

	root = tuiCmd.Register(root)
	root = NewTailCmd(flags, app).Register(root)
	root = NewServeCmd(flags, app).Register(root)
	root = NewSimulateCmd(flags).Register(root)
	root = NewPushCmd(flags).Register(root)
	root = NewStatusCmd(flags).Register(root)
	root = NewRulesCmd(flags).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)
	root = NewDoctorCmd(flags).Register(root)

	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'beacon --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	return root
}
