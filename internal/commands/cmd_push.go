package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/beacon/internal/client"
	"github.com/colonyops/beacon/internal/core/notify"
)

type PushCmd struct {
	flags *Flags

	addr        string
	category    string
	title       string
	description string
	duration    time.Duration
	persistent  bool
	logEntry    bool
	interactive bool
}

// NewPushCmd creates a new push command.
func NewPushCmd(flags *Flags) *PushCmd {
	return &PushCmd{flags: flags}
}

// Register adds the push command to the application.
func (cmd *PushCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "push",
		Usage:     "Send a toast to a running beacon server",
		UsageText: "beacon push [--category info] --title TEXT [--description TEXT]\n   beacon push -i",
		Description: `Posts a toast to the API of a running "beacon serve".

Without --title the toast is described through an interactive form.
Use --log to also record the message in the notification log.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "server address (defaults to server.addr from config)",
				Sources:     cli.EnvVars("BEACON_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "toast category: success, error, warning, info",
				Value:       string(notify.CategoryInfo),
				Destination: &cmd.category,
			},
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "toast title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "toast body",
				Destination: &cmd.description,
			},
			&cli.DurationFlag{
				Name:        "duration",
				Usage:       "override the category display time",
				Destination: &cmd.duration,
			},
			&cli.BoolFlag{
				Name:        "persistent",
				Usage:       "keep the toast until it is dismissed",
				Destination: &cmd.persistent,
			},
			&cli.BoolFlag{
				Name:        "log",
				Usage:       "also add the message to the notification log",
				Destination: &cmd.logEntry,
			},
			&cli.BoolFlag{
				Name:        "interactive",
				Aliases:     []string{"i"},
				Usage:       "describe the toast through a form",
				Destination: &cmd.interactive,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *PushCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.interactive || (cmd.title == "" && cmd.description == "") {
		if err := cmd.runForm(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	if _, err := notify.ParseCategory(cmd.category); err != nil {
		return err
	}

	req := client.ToastRequest{
		Category:    cmd.category,
		Title:       cmd.title,
		Description: cmd.description,
		Persistent:  cmd.persistent,
		Log:         cmd.logEntry,
	}
	if cmd.duration > 0 {
		req.DurationMS = int(cmd.duration.Milliseconds())
	}

	api := client.New(baseURL(cmd.addr, cmd.flags.Config.Server.Addr), client.WithLogger(log.Logger))
	created, err := api.PushToast(ctx, req)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	_, _ = fmt.Fprintf(out, "toast %s\n", created.ID)
	if created.NotificationID != "" {
		_, _ = fmt.Fprintf(out, "notification %s\n", created.NotificationID)
	}
	return nil
}

func (cmd *PushCmd) runForm(ctx context.Context) error {
	options := make([]huh.Option[string], len(notify.Categories))
	for i, cat := range notify.Categories {
		options[i] = huh.NewOption(cat.Label(), string(cat))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Category").
				Options(options...).
				Value(&cmd.category),
			huh.NewInput().
				Title("Title").
				Validate(validateTitle).
				Value(&cmd.title),
			huh.NewText().
				Title("Description").
				Value(&cmd.description),
			huh.NewConfirm().
				Title("Keep until dismissed?").
				Value(&cmd.persistent),
			huh.NewConfirm().
				Title("Add to the notification log?").
				Value(&cmd.logEntry),
		),
	).WithTheme(huh.ThemeCharm()).RunWithContext(ctx)
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// baseURL turns a listen address such as ":7777" into a URL a client can
// dial. flagAddr wins over the configured address.
func baseURL(flagAddr, configAddr string) string {
	addr := flagAddr
	if addr == "" {
		addr = configAddr
	}
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimSuffix(addr, "/")
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}
