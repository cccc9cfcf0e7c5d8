// Package tui implements the terminal dashboard: a live activity feed with
// toast overlays, the notification center and the alert rules panel.
package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/beacon/internal/core/alerts"
	"github.com/colonyops/beacon/internal/core/config"
	"github.com/colonyops/beacon/internal/core/eventbus"
	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/styles"
	"github.com/colonyops/beacon/internal/core/toast"
	"github.com/colonyops/beacon/pkg/clock"
)

const keyCtrlC = "ctrl+c"

// UIState is the active screen.
type UIState int

const (
	stateNormal UIState = iota
	stateNotifications
	stateRules
)

// Options are the dependencies of the dashboard.
type Options struct {
	Notes     *notify.Store
	Toasts    *toast.Store
	Generator *live.Generator
	Rules     []alerts.Rule
	Bus       *eventbus.EventBus
	Config    config.Config
	Clock     clock.Clock
	Logger    zerolog.Logger
}

// Model is the main Bubble Tea model.
type Model struct {
	notes     *notify.Store
	toasts    *toast.Store
	generator *live.Generator
	rules     []alerts.Rule
	keys      KeyMap
	cfg       config.TUIConfig
	logger    zerolog.Logger

	signals   *SignalBuffer
	toastView *ToastView
	center    *NotificationCenter
	rulesView *RulesPanel

	state    UIState
	width    int
	height   int
	ticking  bool
	last     *live.Event
	quitting bool
}

// New creates the dashboard model and subscribes it to the bus.
func New(opts Options) Model {
	c := opts.Clock
	if c == nil {
		c = clock.Real()
	}
	keys := NewKeyMap(opts.Config.Keybindings)

	signals := NewSignalBuffer()
	signals.Attach(opts.Bus)

	return Model{
		notes:     opts.Notes,
		toasts:    opts.Toasts,
		generator: opts.Generator,
		rules:     opts.Rules,
		keys:      keys,
		cfg:       opts.Config.TUI,
		logger:    opts.Logger,
		signals:   signals,
		toastView: NewToastView(opts.Toasts, c, opts.Config.TUI.ToastWidth, opts.Config.TUI.MaxOnScreen, keys.KeyFor(config.ActionTrigger)),
	}
}

// Init starts listening for bus activity.
func (m Model) Init() tea.Cmd {
	return m.signals.WaitForSignal()
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.center != nil {
			m.center.Resize(m.width, m.height)
		}
		if m.rulesView != nil {
			m.rulesView.Resize(m.width, m.height)
		}
		return m, nil

	case storeChangedMsg:
		if msg.last != nil {
			m.last = msg.last
		}
		if m.center != nil {
			m.center.Refresh()
		}
		var tick tea.Cmd
		m, tick = m.ensureTicking()
		return m, tea.Batch(m.signals.WaitForSignal(), tick)

	case toastTickMsg:
		if !m.toastView.HasToasts() {
			m.ticking = false
			return m, nil
		}
		return m, scheduleToastTick()

	case tea.KeyPressMsg:
		return m.handleKey(msg.String())
	}

	return m, nil
}

// ensureTicking keeps countdowns moving while toasts are visible.
func (m Model) ensureTicking() (Model, tea.Cmd) {
	if m.ticking || !m.toastView.HasToasts() {
		return m, nil
	}
	m.ticking = true
	return m, scheduleToastTick()
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == keyCtrlC {
		return m.quit()
	}

	action, ok := m.keys.Resolve(key)
	if !ok {
		return m, nil
	}

	switch m.state {
	case stateNotifications:
		return m.handleCenterAction(action)
	case stateRules:
		return m.handleRulesAction(action)
	default:
		return m.handleNormalAction(action)
	}
}

func (m Model) handleNormalAction(action string) (tea.Model, tea.Cmd) {
	switch action {
	case config.ActionQuit:
		return m.quit()
	case config.ActionNotifications:
		m.center = NewNotificationCenter(m.notes, m.dims()[0], m.dims()[1], m.keys.Help(
			config.ActionDown, config.ActionUp, config.ActionMarkRead, config.ActionMarkAllRead,
			config.ActionClearLog, config.ActionClose,
		))
		m.state = stateNotifications
	case config.ActionRules:
		m.rulesView = NewRulesPanel(m.rules, m.dims()[0], m.dims()[1], m.keys.Help(
			config.ActionDown, config.ActionUp, config.ActionClose,
		))
		m.state = stateRules
	case config.ActionMarkAllRead:
		m.notes.MarkAllAsRead()
	case config.ActionEmit:
		if m.generator != nil {
			ev := m.generator.Emit()
			m.last = &ev
		}
	case config.ActionGenerator:
		m.toggleGenerator()
	default:
		return m.handleToastAction(action)
	}
	return m.ensureTicking()
}

func (m Model) handleToastAction(action string) (tea.Model, tea.Cmd) {
	switch action {
	case config.ActionDismiss:
		if list := m.toasts.List(); len(list) > 0 {
			m.toasts.Remove(list[0].ID)
		}
	case config.ActionDismissAll:
		m.toasts.ClearAll()
	case config.ActionTrigger:
		for _, t := range m.toasts.List() {
			if t.Action != nil {
				m.toasts.Trigger(t.ID)
				break
			}
		}
	}
	return m, nil
}

func (m Model) handleCenterAction(action string) (tea.Model, tea.Cmd) {
	switch action {
	case config.ActionQuit:
		return m.quit()
	case config.ActionClose, config.ActionNotifications:
		m.center = nil
		m.state = stateNormal
	case config.ActionUp:
		m.center.Up()
	case config.ActionDown:
		m.center.Down()
	case config.ActionMarkRead:
		m.center.MarkSelectedRead()
	case config.ActionMarkAllRead:
		m.center.MarkAllRead()
	case config.ActionClearLog:
		m.center.Clear()
	default:
		return m.handleToastAction(action)
	}
	return m, nil
}

func (m Model) handleRulesAction(action string) (tea.Model, tea.Cmd) {
	switch action {
	case config.ActionQuit:
		return m.quit()
	case config.ActionClose, config.ActionRules:
		m.rulesView = nil
		m.state = stateNormal
	case config.ActionUp:
		m.rulesView.ScrollUp()
	case config.ActionDown:
		m.rulesView.ScrollDown()
	}
	return m, nil
}

func (m Model) toggleGenerator() {
	if m.generator == nil {
		return
	}
	if m.generator.Running() {
		m.generator.Stop()
		m.logger.Info().Msg("generator paused from dashboard")
		return
	}
	m.generator.Start()
	m.logger.Info().Msg("generator resumed from dashboard")
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// State returns the active screen.
func (m Model) State() UIState {
	return m.state
}

func (m Model) dims() [2]int {
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}
	return [2]int{w, h}
}

// View renders the dashboard.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	d := m.dims()
	w, h := d[0], d[1]

	content := m.renderMain(w, h)
	switch {
	case m.state == stateNotifications && m.center != nil:
		content = m.center.Overlay(content, w, h)
	case m.state == stateRules && m.rulesView != nil:
		content = m.rulesView.Overlay(content, w, h)
	}

	if m.toastView.HasToasts() {
		content = m.toastView.Overlay(content, w, h)
	}
	return content
}

func (m Model) renderMain(w, h int) string {
	header := m.renderHeader(w)
	divider := styles.DividerStyle.Render(strings.Repeat("─", w))

	var help string
	if m.cfg.ShowHelp {
		help = styles.HelpStyle.Render(m.keys.Help(
			config.ActionNotifications, config.ActionMarkAllRead, config.ActionEmit,
			config.ActionGenerator, config.ActionDismiss, config.ActionDismissAll,
			config.ActionTrigger, config.ActionRules, config.ActionQuit,
		))
	}

	chrome := 4
	if help == "" {
		chrome = 3
	}
	body := m.renderActivity(w, max(h-chrome, 1))

	parts := []string{header, divider, body, divider}
	if help != "" {
		parts = append(parts, help)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader(w int) string {
	unread := m.notes.UnreadCount()
	bell := styles.IconBell
	badge := styles.BadgeEmptyStyle.Render("no unread")
	if unread > 0 {
		bell = styles.IconBellAlert
		badge = styles.BadgeStyle.Render(fmt.Sprintf("%d unread", unread))
	}
	left := styles.HeaderStyle.Render(bell+" beacon") + badge

	var right string
	if m.generator != nil {
		stats := m.generator.Stats()
		state := "paused"
		if m.generator.Running() {
			state = "live"
		}
		right = styles.TextMutedStyle.Render(fmt.Sprintf("generator %s · %d events · %d toasts ", state, stats.Total, m.toasts.Len()))
	}

	gap := max(w-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderActivity(w, h int) string {
	lines := make([]string, 0, h)
	if m.last != nil && m.last.Kind == live.KindLottery {
		lines = append(lines, styles.CategoryText(m.last.Category).Bold(true).Render(
			fmt.Sprintf(" %s %s %s", styles.IconTrophy, m.last.Title, m.last.Description),
		))
	}

	items := m.notes.List()
	if len(items) == 0 && len(lines) == 0 {
		lines = append(lines, styles.EmptyStateStyle.Render(" Waiting for live events..."))
	}
	for _, n := range items {
		if len(lines) >= h {
			break
		}
		lines = append(lines, " "+formatNotification(n, w-2))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
