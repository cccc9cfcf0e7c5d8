package commands

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/beacon/internal/client"
	"github.com/colonyops/beacon/internal/core/styles"
	"github.com/colonyops/beacon/pkg/iojson"
)

type StatusCmd struct {
	flags *Flags

	addr   string
	format string
	start  bool
	stop   bool
}

// NewStatusCmd creates a new status command.
func NewStatusCmd(flags *Flags) *StatusCmd {
	return &StatusCmd{flags: flags}
}

// ServerStatus is what status reports about a running server.
type ServerStatus struct {
	Addr      string                 `json:"addr"`
	Unread    int                    `json:"unread"`
	Generator client.GeneratorStatus `json:"generator"`
}

// Register adds the status command to the application.
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Show unread count and generator state of a running server",
		UsageText: "beacon status [--start | --stop] [--format text|json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "server address (defaults to server.addr from config)",
				Sources:     cli.EnvVars("BEACON_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format: text or json",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "start",
				Usage:       "start the generator first",
				Destination: &cmd.start,
			},
			&cli.BoolFlag{
				Name:        "stop",
				Usage:       "stop the generator first",
				Destination: &cmd.stop,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.start && cmd.stop {
		return fmt.Errorf("--start and --stop are mutually exclusive")
	}
	if cmd.format != "text" && cmd.format != "json" {
		return fmt.Errorf("unknown format %q", cmd.format)
	}

	url := baseURL(cmd.addr, cmd.flags.Config.Server.Addr)
	api := client.New(url, client.WithLogger(log.Logger))

	if cmd.start || cmd.stop {
		if err := api.SetGenerator(ctx, cmd.start); err != nil {
			return err
		}
	}

	unread, err := api.UnreadCount(ctx)
	if err != nil {
		return err
	}
	gen, err := api.Generator(ctx)
	if err != nil {
		return err
	}

	st := ServerStatus{Addr: url, Unread: unread, Generator: gen}
	if cmd.format == "json" {
		return iojson.Write(c.Root().Writer, st)
	}
	writeStatus(c.Root().Writer, st)
	return nil
}

func writeStatus(w io.Writer, st ServerStatus) {
	state := styles.RuleOffStyle.Render("paused")
	if st.Generator.Running {
		state = styles.RuleEnabledStyle.Render("live")
	}

	_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render("beacon "+st.Addr))
	_, _ = fmt.Fprintf(w, "  unread      %d\n", st.Unread)
	_, _ = fmt.Fprintf(w, "  generator   %s\n", state)
	_, _ = fmt.Fprintf(w, "  events      %d (%.0f%% lottery)\n", st.Generator.Stats.Total, st.Generator.LotteryFraction*100)

	cats := make([]string, 0, len(st.Generator.Stats.ByCategory))
	for k := range st.Generator.Stats.ByCategory {
		cats = append(cats, k)
	}
	slices.Sort(cats)
	for _, k := range cats {
		_, _ = fmt.Fprintf(w, "    %-9s %d\n", k, st.Generator.Stats.ByCategory[k])
	}
}
