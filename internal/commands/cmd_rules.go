package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/beacon/internal/core/alerts"
	"github.com/colonyops/beacon/internal/core/styles"
	"github.com/colonyops/beacon/pkg/iojson"
)

type RulesCmd struct {
	flags  *Flags
	format string
	width  int
	input  iojson.Input[[]alerts.Rule]
}

// NewRulesCmd creates a new rules command.
func NewRulesCmd(flags *Flags) *RulesCmd {
	return &RulesCmd{flags: flags}
}

// Register adds the rules command to the application.
func (cmd *RulesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rules",
		Usage:     "List configured alert rules",
		UsageText: "beacon rules [--format markdown|json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (markdown, json)",
				Value:       "markdown",
				Destination: &cmd.format,
			},
			&cli.IntFlag{
				Name:        "width",
				Usage:       "word wrap width for markdown output",
				Value:       100,
				Destination: &cmd.width,
			},
		},
		Action: cmd.list,
		Commands: []*cli.Command{
			{
				Name:        "check",
				Usage:       "Validate alert rules from a JSON or YAML file, or stdin",
				UsageText:   "beacon rules check [-f rules.yaml]",
				Description: "Reads a list of alert rules and reports every invalid field.",
				Flags:       []cli.Flag{cmd.input.Flag()},
				Action:      cmd.check,
			},
		},
	})
	return app
}

func (cmd *RulesCmd) list(_ context.Context, c *cli.Command) error {
	rules := cmd.flags.Config.Rules()

	switch cmd.format {
	case "json":
		return iojson.Write(c.Root().Writer, rules)
	case "markdown":
	default:
		return fmt.Errorf("unknown format %q", cmd.format)
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(cmd.width),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(RulesMarkdown(rules))
	if err != nil {
		return fmt.Errorf("render rules: %w", err)
	}
	_, err = fmt.Fprint(c.Root().Writer, out)
	return err
}

// RulesMarkdown renders rules as a markdown table.
func RulesMarkdown(rules []alerts.Rule) string {
	var b strings.Builder
	b.WriteString("# Alert Rules\n\n")
	if len(rules) == 0 {
		b.WriteString("_No alert rules configured._\n")
		return b.String()
	}

	b.WriteString("| Rule | Status | When | Then | Cooldown | Triggered |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range rules {
		status := "enabled"
		if !r.IsEnabled() {
			status = "disabled"
		}
		actions := make([]string, 0, len(r.Actions))
		for _, a := range r.Actions {
			actions = append(actions, fmt.Sprintf("%s %s (%s)", a.Type, a.Target, a.Priority))
		}
		fmt.Fprintf(&b, "| **%s** | %s | `%s` | %s | %s | %d |\n",
			mdEscape(r.Name), status, r.Expression(), mdEscape(strings.Join(actions, ", ")),
			r.Cooldown, r.TriggerCount)
	}
	return b.String()
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func (cmd *RulesCmd) check(_ context.Context, c *cli.Command) error {
	rules, err := cmd.input.Read()
	if err != nil {
		return err
	}

	errs := fieldErrors(alerts.ValidateAll(rules))
	if len(errs) == 0 {
		_, _ = fmt.Fprintf(c.Root().Writer, "%d rule(s) valid\n", len(rules))
		return nil
	}

	printFieldErrors(c.Root().ErrWriter, errs)
	return cli.Exit(fmt.Sprintf("%d error(s) found", len(errs)), 1)
}
