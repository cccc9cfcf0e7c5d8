package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/beacon/internal/core/config"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/styles"
	"github.com/colonyops/beacon/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "beacon config validate [options]",
				Description: "Validates the configuration file, checking durations, the listen address, alert rules and hook templates.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

// ValidationResult is the machine readable outcome of config validate.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []FieldError               `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	errs := fieldErrors(cfg.ValidateDeep(cmd.flags.ConfigPath))
	result := ValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: cfg.Warnings(),
	}

	if cmd.format == "json" {
		if err := iojson.Write(c.Root().Writer, result); err != nil {
			return err
		}
		if !result.Valid {
			return cli.Exit("", 1)
		}
		return nil
	}

	w := c.Root().Writer
	for _, warn := range result.Warnings {
		icon := styles.CategoryText(notify.CategoryWarning).Render(styles.IconWarning)
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", icon, warn.Category, warn.Message)
		if warn.Item != "" {
			_, _ = fmt.Fprintf(w, "  Item: %s\n", warn.Item)
		}
	}
	printFieldErrors(w, result.Errors)

	_, _ = fmt.Fprintln(w)
	if result.Valid {
		_, _ = fmt.Fprintf(w, "%s Configuration is valid\n", styles.CategoryText(notify.CategorySuccess).Render(styles.IconSuccess))
		return nil
	}
	return cli.Exit(fmt.Sprintf("%d error(s) found", len(result.Errors)), 1)
}
