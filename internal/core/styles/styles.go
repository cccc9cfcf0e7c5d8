// Package styles provides shared lipgloss v2 styles for CLI and TUI components.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/beacon/internal/core/notify"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

var (
	ColorPrimary    color.Color
	ColorSecondary  color.Color
	ColorForeground color.Color
	ColorMuted      color.Color
	ColorBackground color.Color
	ColorSurface    color.Color
	ColorSuccess    color.Color
	ColorWarning    color.Color
	ColorError      color.Color
	ColorInfo       color.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style

	// TUI shared styles.
	HeaderStyle      lipgloss.Style
	BadgeStyle       lipgloss.Style
	BadgeEmptyStyle  lipgloss.Style
	HelpStyle        lipgloss.Style
	ModalStyle       lipgloss.Style
	ModalTitleStyle  lipgloss.Style
	ModalHelpStyle   lipgloss.Style
	ListCursorStyle  lipgloss.Style
	ListReadStyle    lipgloss.Style
	ListUnreadStyle  lipgloss.Style
	TimestampStyle   lipgloss.Style
	EmptyStateStyle  lipgloss.Style
	RuleEnabledStyle lipgloss.Style
	RuleOffStyle     lipgloss.Style

	TextMutedStyle     lipgloss.Style
	TextForegroundBold lipgloss.Style

	toastStyles map[notify.Category]lipgloss.Style
	textStyles  map[notify.Category]lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error
	ColorInfo = p.Info

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 1)
	BadgeStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorError).
		Bold(true).
		Padding(0, 1)
	BadgeEmptyStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Padding(0, 1)
	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Padding(0, 1)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)

	ListCursorStyle = lipgloss.NewStyle().
		Background(ColorSurface)
	ListReadStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	ListUnreadStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Bold(true)
	TimestampStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	EmptyStateStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)

	RuleEnabledStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	RuleOffStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	TextMutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	TextForegroundBold = lipgloss.NewStyle().Foreground(ColorForeground).Bold(true)

	toastStyles = make(map[notify.Category]lipgloss.Style, len(notify.Categories))
	textStyles = make(map[notify.Category]lipgloss.Style, len(notify.Categories))
	for _, cat := range notify.Categories {
		c := CategoryColor(cat)
		toastStyles[cat] = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c).
			Foreground(ColorForeground).
			Padding(0, 1)
		textStyles[cat] = lipgloss.NewStyle().Foreground(c)
	}
}

// CategoryColor returns the palette color for a category.
func CategoryColor(c notify.Category) color.Color {
	switch c {
	case notify.CategorySuccess:
		return ColorSuccess
	case notify.CategoryWarning:
		return ColorWarning
	case notify.CategoryError:
		return ColorError
	default:
		return ColorInfo
	}
}

// ToastStyle returns the bordered toast style for a category.
func ToastStyle(c notify.Category) lipgloss.Style {
	return toastStyles[c.OrInfo()]
}

// CategoryText returns the foreground style for a category.
func CategoryText(c notify.Category) lipgloss.Style {
	return textStyles[c.OrInfo()]
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
