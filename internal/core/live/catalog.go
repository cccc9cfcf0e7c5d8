package live

import (
	"fmt"

	"github.com/colonyops/beacon/internal/core/notify"
)

// Message is a canned title/description pair.
type Message struct {
	Title       string
	Description string
}

// Catalog holds the canned messages per category bucket.
var Catalog = map[notify.Category][]Message{
	notify.CategorySuccess: {
		{"New VIP signup", "A high-value player just joined the VIP programme."},
		{"Campaign completed", "The weekend reload campaign reached all targeted players."},
		{"Deposit milestone", "Daily deposits passed the $1M mark."},
		{"Journey converted", "A welcome journey converted a new depositor."},
		{"Segment synced", "The high-roller segment finished syncing to the ESP."},
	},
	notify.CategoryWarning: {
		{"Churn risk rising", "Twelve VIP players crossed the churn risk threshold."},
		{"Bonus budget at 80%", "The monthly bonus budget is almost exhausted."},
		{"Unusual withdrawal pattern", "Several large withdrawals from a single segment."},
		{"Campaign underperforming", "Open rate for the reactivation email is below 10%."},
	},
	notify.CategoryError: {
		{"Payment gateway timeout", "Deposits through the card gateway are failing."},
		{"SMS delivery failed", "The SMS provider rejected the last campaign batch."},
		{"Segment refresh failed", "The daily segment refresh did not complete."},
		{"Fraud check unavailable", "The KYC provider is not responding."},
	},
	notify.CategoryInfo: {
		{"New customer registered", "A new player completed registration."},
		{"Report ready", "The weekly retention report is ready to download."},
		{"Journey scheduled", "The reactivation journey starts tomorrow at 09:00."},
		{"Segment updated", "The casual players segment gained 240 members."},
		{"Draw scheduled", "Next lottery draw in one hour."},
	},
}

// Winners and Games feed lottery winner events.
var (
	Winners = []string{
		"Maria S.", "James K.", "Aiko T.", "Lucas M.", "Fatima A.",
		"Oliver P.", "Sofia R.", "Noah B.", "Chen W.", "Amara O.",
	}
	Games = []string{
		"Mega Millions", "EuroJackpot", "Daily Pick 3", "Lucky Spin", "Golden Draw",
	}
)

// Tier classifies a lottery prize.
type Tier string

const (
	TierStandard Tier = "standard"
	TierLucky    Tier = "lucky"
	TierBig      Tier = "big"
	TierJackpot  Tier = "jackpot"
)

// Thresholds are the minimum prize amounts, in dollars, for each tier.
type Thresholds struct {
	Lucky   float64 `yaml:"lucky"`
	Big     float64 `yaml:"big"`
	Jackpot float64 `yaml:"jackpot"`
}

// DefaultThresholds are the standard prize bands.
var DefaultThresholds = Thresholds{Lucky: 2_500, Big: 25_000, Jackpot: 100_000}

// Classify returns the tier for a prize amount.
func (t Thresholds) Classify(amount float64) Tier {
	switch {
	case amount >= t.Jackpot:
		return TierJackpot
	case amount >= t.Big:
		return TierBig
	case amount >= t.Lucky:
		return TierLucky
	default:
		return TierStandard
	}
}

// lotteryMessage renders the winner notification for a tier.
func lotteryMessage(tier Tier, winner, game string, amount float64) (notify.Category, Message) {
	prize := formatDollars(amount)
	switch tier {
	case TierJackpot:
		return notify.CategorySuccess, Message{
			Title:       "JACKPOT WINNER!",
			Description: fmt.Sprintf("%s hit the %s jackpot for %s!", winner, game, prize),
		}
	case TierBig:
		return notify.CategorySuccess, Message{
			Title:       "Big Win!",
			Description: fmt.Sprintf("%s won %s on %s.", winner, prize, game),
		}
	case TierLucky:
		return notify.CategoryInfo, Message{
			Title:       "Lucky Winner",
			Description: fmt.Sprintf("%s won %s on %s.", winner, prize, game),
		}
	default:
		return notify.CategoryInfo, Message{
			Title:       "Lottery Winner",
			Description: fmt.Sprintf("%s won %s on %s.", winner, prize, game),
		}
	}
}

// formatDollars renders whole dollars with thousands separators.
func formatDollars(amount float64) string {
	n := int64(amount)
	s := fmt.Sprintf("%d", n)
	out := make([]byte, 0, len(s)+len(s)/3+1)
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return "$" + string(out)
}
