package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/styles"
)

const (
	centerWidthPct  = 65
	centerMinWidth  = 60
	centerMaxHeight = 30
	centerMargin    = 4
	centerChrome    = 6 // title + divider + help + spacing
)

// NotificationCenter is the modal listing the notification log with a
// cursor for marking entries read.
type NotificationCenter struct {
	store    *notify.Store
	items    []notify.Notification
	cursor   int
	viewport viewport.Model
	help     string
}

// NewNotificationCenter creates the modal sized for the terminal.
func NewNotificationCenter(store *notify.Store, width, height int, help string) *NotificationCenter {
	c := &NotificationCenter{store: store, help: help}
	c.viewport = viewport.New()
	c.Resize(width, height)
	c.Refresh()
	return c
}

// Resize adapts the viewport to a new terminal size.
func (c *NotificationCenter) Resize(width, height int) {
	modalWidth := calcCenterWidth(width)
	modalHeight := min(height-centerMargin, centerMaxHeight)
	c.viewport.SetWidth(modalWidth - 4)
	c.viewport.SetHeight(max(modalHeight-centerChrome, 1))
}

// Refresh reloads the log and keeps the cursor in range.
func (c *NotificationCenter) Refresh() {
	if c.store != nil {
		c.items = c.store.List()
	}
	if c.cursor >= len(c.items) {
		c.cursor = max(len(c.items)-1, 0)
	}
	c.render()
}

func (c *NotificationCenter) render() {
	if len(c.items) == 0 {
		c.viewport.SetContent(styles.EmptyStateStyle.Render("No notifications"))
		return
	}

	lines := make([]string, len(c.items))
	for i, n := range c.items {
		line := formatNotification(n, c.viewport.Width())
		if i == c.cursor {
			line = styles.ListCursorStyle.Width(c.viewport.Width()).Render(line)
		}
		lines[i] = line
	}
	c.viewport.SetContent(strings.Join(lines, "\n"))
	c.viewport.EnsureVisible(c.cursor, 0, 0)
}

func formatNotification(n notify.Notification, width int) string {
	marker := styles.IconUnread
	titleStyle := styles.ListUnreadStyle
	if n.Read {
		marker = styles.IconRead
		titleStyle = styles.ListReadStyle
	}

	head := fmt.Sprintf("%s %s %s %s",
		styles.CategoryText(n.Category).Render(marker),
		styles.TimestampStyle.Render(n.CreatedAt.Format("15:04:05")),
		styles.CategoryText(n.Category).Render(styles.CategoryIcon(n.Category)),
		titleStyle.Render(n.Title),
	)
	if n.Description == "" {
		return head
	}

	room := width - lipgloss.Width(head) - 3
	if room < 8 {
		return head
	}
	return head + styles.TextMutedStyle.Render(" · "+truncate(n.Description, room))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Up moves the cursor towards newer entries.
func (c *NotificationCenter) Up() {
	if c.cursor > 0 {
		c.cursor--
		c.render()
	}
}

// Down moves the cursor towards older entries.
func (c *NotificationCenter) Down() {
	if c.cursor < len(c.items)-1 {
		c.cursor++
		c.render()
	}
}

// Selected returns the entry under the cursor.
func (c *NotificationCenter) Selected() (notify.Notification, bool) {
	if len(c.items) == 0 {
		return notify.Notification{}, false
	}
	return c.items[c.cursor], true
}

// MarkSelectedRead marks the entry under the cursor as read.
func (c *NotificationCenter) MarkSelectedRead() bool {
	n, ok := c.Selected()
	if !ok || n.Read {
		return false
	}
	changed := c.store.MarkAsRead(n.ID)
	c.Refresh()
	return changed
}

// MarkAllRead marks the whole log as read.
func (c *NotificationCenter) MarkAllRead() {
	c.store.MarkAllAsRead()
	c.Refresh()
}

// Clear empties the log.
func (c *NotificationCenter) Clear() {
	c.store.Clear()
	c.cursor = 0
	c.Refresh()
}

// Overlay renders the modal centered over the background.
func (c *NotificationCenter) Overlay(background string, width, height int) string {
	modalWidth := calcCenterWidth(width)
	modalHeight := min(height-centerMargin, centerMaxHeight)

	title := fmt.Sprintf("Notifications (%d unread)", c.store.UnreadCount())
	if c.viewport.TotalLineCount() > c.viewport.VisibleLineCount() {
		title += styles.TextMutedStyle.Render(fmt.Sprintf(" (%.0f%%)", c.viewport.ScrollPercent()*100))
	}

	divider := styles.DividerStyle.Render(strings.Repeat("─", max(modalWidth-6, 1)))
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(title),
		divider,
		c.viewport.View(),
		styles.ModalHelpStyle.Render(c.help),
	)

	modal := styles.ModalStyle.
		Width(modalWidth).
		Height(modalHeight).
		Render(content)

	return centerOverlay(background, modal, width, height)
}

func calcCenterWidth(termWidth int) int {
	available := max(termWidth-centerMargin, 1)
	target := termWidth * centerWidthPct / 100
	return min(max(target, centerMinWidth), available)
}

func centerOverlay(background, modal string, width, height int) string {
	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)

	modalW := lipgloss.Width(modal)
	modalH := lipgloss.Height(modal)
	modalLayer.X(max((width-modalW)/2, 0)).Y(max((height-modalH)/2, 0)).Z(1)

	return lipgloss.NewCompositor(bgLayer, modalLayer).Render()
}
