package alerts

import "time"

// Samples returns the built-in rule set shown when no rules are configured.
func Samples() []Rule {
	return []Rule{
		{
			ID:          "high-value-deposit",
			Name:        "High value deposit",
			Description: "Flag single deposits above $10,000 from non-VIP players.",
			Conditions: []Condition{
				{Field: "deposit_amount", Operator: OpGt, Value: "10000"},
				{Field: "vip_tier", Operator: OpEq, Value: "none", Join: JoinAnd},
			},
			Actions: []Action{
				{Type: ActionEmail, Target: "vip-team@example.com", Priority: PriorityHigh},
				{Type: ActionSlack, Target: "#vip-alerts", Priority: PriorityMedium},
			},
			Cooldown:     15 * time.Minute,
			TriggerCount: 42,
		},
		{
			ID:          "churn-risk",
			Name:        "Churn risk spike",
			Description: "Players inactive for two weeks or with a churn score above 0.8.",
			Conditions: []Condition{
				{Field: "days_since_login", Operator: OpGte, Value: "14"},
				{Field: "churn_score", Operator: OpGt, Value: "0.8", Join: JoinOr},
			},
			Actions: []Action{
				{Type: ActionPush, Target: "retention-managers", Priority: PriorityMedium},
			},
			Cooldown:     time.Hour,
			TriggerCount: 128,
		},
		{
			ID:          "jackpot-win",
			Name:        "Jackpot winner",
			Description: "Notify the CRM team about lottery prizes of $100,000 or more.",
			Conditions: []Condition{
				{Field: "prize_amount", Operator: OpGte, Value: "100000"},
			},
			Actions: []Action{
				{Type: ActionSMS, Target: "+15550100", Priority: PriorityCritical},
				{Type: ActionWebhook, Target: "https://hooks.example.com/jackpot", Priority: PriorityHigh},
			},
			TriggerCount: 3,
		},
		{
			ID:          "bonus-abuse",
			Name:        "Bonus abuse pattern",
			Description: "Multiple accounts claiming the same bonus from one device.",
			Enabled:     boolPtr(false),
			Conditions: []Condition{
				{Field: "bonus_claims_per_device", Operator: OpGt, Value: "3"},
				{Field: "campaign", Operator: OpContains, Value: "welcome", Join: JoinAnd},
			},
			Actions: []Action{
				{Type: ActionEmail, Target: "fraud@example.com", Priority: PriorityCritical},
			},
			Cooldown: 24 * time.Hour,
		},
	}
}

func boolPtr(b bool) *bool { return &b }
