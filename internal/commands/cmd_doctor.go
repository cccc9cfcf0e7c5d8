package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/beacon/internal/client"
	"github.com/colonyops/beacon/internal/core/doctor"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/styles"
	"github.com/colonyops/beacon/pkg/iojson"
)

type DoctorCmd struct {
	flags  *Flags
	format string
	addr   string
}

// NewDoctorCmd creates a new doctor command.
func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

// Register adds the doctor command to the application.
func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your beacon setup",
		UsageText:   "beacon doctor [options]",
		Description: "Checks the configuration, hook commands, the log directory and whether a server is running.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "server address to probe (defaults to server.addr from config)",
				Sources:     cli.EnvVars("BEACON_ADDR"),
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	logFile := cmd.flags.LogFile
	if logFile == "" {
		logFile = DefaultLogFile()
	}

	url := baseURL(cmd.addr, cfg.Server.Addr)
	api := client.New(url, client.WithRetries(0), client.WithLogger(log.Logger))

	results := doctor.RunAll(ctx, []doctor.Check{
		doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath),
		doctor.NewHooksCheck(cfg.Hooks),
		doctor.NewLogCheck(logFile),
		doctor.NewServerCheck(url, api.UnreadCount),
	})

	if cmd.format == "json" {
		return outputDoctorJSON(c.Root().Writer, results)
	}

	writeDoctorReport(c.Root().Writer, results)
	if _, _, failed := doctor.Summary(results); failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func outputDoctorJSON(w io.Writer, results []doctor.Result) error {
	passed, warned, failed := doctor.Summary(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: failed == 0,
		Summary: summaryJSON{Passed: passed, Warned: warned, Failed: failed},
		Checks:  results,
	}

	if err := iojson.Write(w, out); err != nil {
		return err
	}
	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func writeDoctorReport(w io.Writer, results []doctor.Result) {
	var (
		ok      = styles.CategoryText(notify.CategorySuccess)
		caution = styles.CategoryText(notify.CategoryWarning)
		bad     = styles.CategoryText(notify.CategoryError)
	)
	divider := styles.TextMutedStyle.Render(strings.Repeat("─", 40))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render("Beacon Doctor"))
	_, _ = fmt.Fprintln(w, divider)
	_, _ = fmt.Fprintln(w)

	for _, result := range results {
		_, _ = fmt.Fprintln(w, styles.TextForegroundBold.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.TextMutedStyle.Render(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = ok.Render("✔")
			case doctor.StatusWarn:
				icon = caution.Render("●")
			case doctor.StatusFail:
				icon = bad.Render("✘")
			}

			_, _ = fmt.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	passed, warned, failed := doctor.Summary(results)
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
		ok.Render(fmt.Sprintf("%d passed", passed)),
		caution.Render(fmt.Sprintf("%d warnings", warned)),
		bad.Render(fmt.Sprintf("%d failed", failed)),
	)
}
