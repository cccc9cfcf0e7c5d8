package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/beacon/internal/core/styles"
	"github.com/colonyops/beacon/internal/core/toast"
	"github.com/colonyops/beacon/pkg/clock"
)

const toastTickInterval = 250 * time.Millisecond

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView renders the toast store and composites it as an overlay.
type ToastView struct {
	store       *toast.Store
	clock       clock.Clock
	width       int
	maxOnScreen int
	actionKey   string
}

// NewToastView creates a view over store. At most maxOnScreen toasts are
// drawn; the store may hold more.
func NewToastView(store *toast.Store, c clock.Clock, width, maxOnScreen int, actionKey string) *ToastView {
	return &ToastView{
		store:       store,
		clock:       c,
		width:       width,
		maxOnScreen: maxOnScreen,
		actionKey:   actionKey,
	}
}

// HasToasts reports whether anything is visible.
func (v *ToastView) HasToasts() bool {
	return v.store != nil && v.store.Len() > 0
}

// View renders the newest toasts stacked vertically, oldest at top and
// newest at the bottom next to the screen edge.
func (v *ToastView) View() string {
	if v.store == nil {
		return ""
	}
	toasts := v.store.List()
	if len(toasts) == 0 {
		return ""
	}
	if v.maxOnScreen > 0 && len(toasts) > v.maxOnScreen {
		toasts = toasts[:v.maxOnScreen]
	}
	slices.Reverse(toasts)

	now := v.clock.Now()
	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, v.renderToast(t, now))
	}
	return strings.Join(rendered, "\n")
}

func (v *ToastView) renderToast(t toast.Toast, now time.Time) string {
	inner := max(v.width-4, 10)

	title := styles.CategoryText(t.Category).Bold(true).Render(styles.CategoryIcon(t.Category) + " " + t.Title)
	var footer string
	switch {
	case t.Action != nil && v.actionKey != "":
		footer = fmt.Sprintf("[%s] %s", v.actionKey, t.Action.Label)
	case !t.Persistent():
		footer = remaining(t.ExpiresAt().Sub(now))
	}

	lines := []string{title}
	if t.Description != "" {
		lines = append(lines, lipgloss.NewStyle().Width(inner).Render(t.Description))
	}
	if footer != "" {
		lines = append(lines, styles.TextMutedStyle.Render(footer))
	}

	return styles.ToastStyle(t.Category).Width(v.width).Render(strings.Join(lines, "\n"))
}

// remaining formats a countdown rounded up to whole seconds.
func remaining(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	secs := (d + time.Second - 1) / time.Second
	return fmt.Sprintf("%ds", secs)
}

// Overlay composites the toast stack over background in the lower-right corner.
func (v *ToastView) Overlay(background string, width, height int) string {
	toastContent := v.View()
	if toastContent == "" {
		return background
	}

	bgLayer := lipgloss.NewLayer(background)
	toastLayer := lipgloss.NewLayer(toastContent)

	toastW := lipgloss.Width(toastContent)
	toastH := lipgloss.Height(toastContent)

	rightX := max(width-toastW-1, 0)
	bottomY := max(height-toastH, 0)

	toastLayer.X(rightX).Y(bottomY).Z(2)

	compositor := lipgloss.NewCompositor(bgLayer, toastLayer)
	return compositor.Render()
}
