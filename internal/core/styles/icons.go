package styles

import "github.com/colonyops/beacon/internal/core/notify"

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconBell      = "\U000F009A" // 󰂚
	IconBellAlert = "\U000F009E" // 󰂞
	IconSuccess   = "\uf058"     // 
	IconWarning   = "\uf071"     // 
	IconError     = "\uf057"     // 
	IconInfo      = "\uf05a"     // 
	IconTrophy    = "\U000F0538" // 󰔸
	IconRule      = "\U000F0C41" // 󰱁
	IconUnread    = "●"
	IconRead      = "○"
)

// CategoryIcon returns the icon for a notification category.
func CategoryIcon(c notify.Category) string {
	switch c {
	case notify.CategorySuccess:
		return IconSuccess
	case notify.CategoryWarning:
		return IconWarning
	case notify.CategoryError:
		return IconError
	default:
		return IconInfo
	}
}
