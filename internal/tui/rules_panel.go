package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/beacon/internal/core/alerts"
	"github.com/colonyops/beacon/internal/core/styles"
)

// RulesPanel is a read-only modal over the configured alert rules.
type RulesPanel struct {
	rules    []alerts.Rule
	viewport viewport.Model
	help     string
}

// NewRulesPanel creates the panel sized for the terminal.
func NewRulesPanel(rules []alerts.Rule, width, height int, help string) *RulesPanel {
	p := &RulesPanel{rules: rules, help: help, viewport: viewport.New()}
	p.Resize(width, height)
	return p
}

// Resize adapts the panel to a new terminal size.
func (p *RulesPanel) Resize(width, height int) {
	modalWidth := calcCenterWidth(width)
	modalHeight := min(height-centerMargin, centerMaxHeight)
	p.viewport.SetWidth(modalWidth - 4)
	p.viewport.SetHeight(max(modalHeight-centerChrome, 1))
	p.viewport.SetContent(p.content())
}

func (p *RulesPanel) content() string {
	if len(p.rules) == 0 {
		return styles.EmptyStateStyle.Render("No alert rules configured")
	}

	blocks := make([]string, 0, len(p.rules))
	for _, r := range p.rules {
		blocks = append(blocks, formatRule(r))
	}
	return strings.Join(blocks, "\n\n")
}

func formatRule(r alerts.Rule) string {
	state := styles.RuleEnabledStyle.Render(styles.IconUnread + " enabled")
	if !r.IsEnabled() {
		state = styles.RuleOffStyle.Render(styles.IconRead + " disabled")
	}

	lines := []string{
		fmt.Sprintf("%s %s  %s", styles.IconRule, styles.TextForegroundBold.Render(r.Name), state),
		styles.TextMutedStyle.Render("  when " + r.Expression()),
	}

	targets := make([]string, 0, len(r.Actions))
	for _, a := range r.Actions {
		targets = append(targets, fmt.Sprintf("%s:%s (%s)", a.Type, a.Target, a.Priority))
	}
	if len(targets) > 0 {
		lines = append(lines, styles.TextMutedStyle.Render("  then "+strings.Join(targets, ", ")))
	}
	if r.TriggerCount > 0 {
		lines = append(lines, styles.TextMutedStyle.Render(fmt.Sprintf("  triggered %d times", r.TriggerCount)))
	}
	return strings.Join(lines, "\n")
}

// ScrollUp scrolls the panel up.
func (p *RulesPanel) ScrollUp() { p.viewport.ScrollUp(1) }

// ScrollDown scrolls the panel down.
func (p *RulesPanel) ScrollDown() { p.viewport.ScrollDown(1) }

// Overlay renders the panel centered over the background.
func (p *RulesPanel) Overlay(background string, width, height int) string {
	modalWidth := calcCenterWidth(width)
	modalHeight := min(height-centerMargin, centerMaxHeight)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(fmt.Sprintf("Alert Rules (%d)", len(p.rules))),
		styles.DividerStyle.Render(strings.Repeat("─", max(modalWidth-6, 1))),
		p.viewport.View(),
		styles.ModalHelpStyle.Render(p.help),
	)

	modal := styles.ModalStyle.Width(modalWidth).Height(modalHeight).Render(content)
	return centerOverlay(background, modal, width, height)
}
