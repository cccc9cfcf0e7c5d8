// Package alerts models CRM alert rules as configuration. Rules are listed
// and validated but not evaluated against live data.
package alerts

import (
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
)

// Operator compares a field to a value.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
)

// Join chains a condition to the one before it.
type Join string

const (
	JoinAnd Join = "AND"
	JoinOr  Join = "OR"
)

// ActionType is the delivery channel of a rule action.
type ActionType string

const (
	ActionEmail   ActionType = "email"
	ActionSMS     ActionType = "sms"
	ActionPush    ActionType = "push"
	ActionWebhook ActionType = "webhook"
	ActionSlack   ActionType = "slack"
)

// Priority ranks an action.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Condition is one field/operator/value test. Join is ignored on the first
// condition of a rule and defaults to AND elsewhere.
type Condition struct {
	Field    string   `yaml:"field" json:"field"`
	Operator Operator `yaml:"operator" json:"operator"`
	Value    string   `yaml:"value" json:"value"`
	Join     Join     `yaml:"join,omitempty" json:"join,omitempty"`
}

// Action is a typed delivery target.
type Action struct {
	Type     ActionType `yaml:"type" json:"type"`
	Target   string     `yaml:"target" json:"target"`
	Priority Priority   `yaml:"priority" json:"priority"`
}

// Rule is an alert rule definition.
type Rule struct {
	ID            string        `yaml:"id" json:"id"`
	Name          string        `yaml:"name" json:"name"`
	Description   string        `yaml:"description,omitempty" json:"description,omitempty"`
	Enabled       *bool         `yaml:"enabled,omitempty" json:"enabled,omitempty"` // nil = enabled
	Conditions    []Condition   `yaml:"conditions" json:"conditions"`
	Actions       []Action      `yaml:"actions" json:"actions"`
	Cooldown      time.Duration `yaml:"cooldown" json:"cooldown"`
	TriggerCount  int           `yaml:"trigger_count" json:"trigger_count"`
	LastTriggered *time.Time    `yaml:"last_triggered,omitempty" json:"last_triggered,omitempty"`
}

// IsEnabled reports whether the rule is active.
func (r Rule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Expression renders the condition chain, e.g.
// "deposit_amount gt 10000 AND vip_tier eq gold".
func (r Rule) Expression() string {
	var b strings.Builder
	for i, c := range r.Conditions {
		if i > 0 {
			join := c.Join
			if join == "" {
				join = JoinAnd
			}
			b.WriteString(" " + string(join) + " ")
		}
		fmt.Fprintf(&b, "%s %s %s", c.Field, c.Operator, c.Value)
	}
	return b.String()
}

// Validate checks a single rule.
func (r Rule) Validate() error {
	var errs criterio.FieldErrorsBuilder
	return r.appendErrors("", errs).ToError()
}

// appendErrors adds the rule's problems to errs with field names prefixed by
// prefix.
func (r Rule) appendErrors(prefix string, errs criterio.FieldErrorsBuilder) criterio.FieldErrorsBuilder {
	if strings.TrimSpace(r.ID) == "" {
		errs = errs.Append(prefix+"id", fmt.Errorf("cannot be empty"))
	}
	if strings.TrimSpace(r.Name) == "" {
		errs = errs.Append(prefix+"name", fmt.Errorf("cannot be empty"))
	}
	if len(r.Conditions) == 0 {
		errs = errs.Append(prefix+"conditions", fmt.Errorf("at least one condition is required"))
	}
	if len(r.Actions) == 0 {
		errs = errs.Append(prefix+"actions", fmt.Errorf("at least one action is required"))
	}
	if r.Cooldown < 0 {
		errs = errs.Append(prefix+"cooldown", fmt.Errorf("cannot be negative"))
	}
	if r.TriggerCount < 0 {
		errs = errs.Append(prefix+"trigger_count", fmt.Errorf("cannot be negative"))
	}

	for i, c := range r.Conditions {
		field := fmt.Sprintf("conditions[%d]", i)
		if c.Field == "" {
			errs = errs.Append(prefix+field+".field", fmt.Errorf("cannot be empty"))
		}
		if !validOperator(c.Operator) {
			errs = errs.Append(prefix+field+".operator", fmt.Errorf("unknown operator %q", c.Operator))
		}
		if c.Join != "" && c.Join != JoinAnd && c.Join != JoinOr {
			errs = errs.Append(prefix+field+".join", fmt.Errorf("must be AND or OR, got %q", c.Join))
		}
	}

	for i, a := range r.Actions {
		field := fmt.Sprintf("actions[%d]", i)
		switch a.Type {
		case ActionEmail, ActionSMS, ActionPush, ActionWebhook, ActionSlack:
		default:
			errs = errs.Append(prefix+field+".type", fmt.Errorf("unknown action type %q", a.Type))
		}
		if a.Target == "" {
			errs = errs.Append(prefix+field+".target", fmt.Errorf("cannot be empty"))
		}
		switch a.Priority {
		case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		default:
			errs = errs.Append(prefix+field+".priority", fmt.Errorf("unknown priority %q", a.Priority))
		}
	}

	return errs
}

// ValidateAll checks every rule and rejects duplicate ids. Field names are
// prefixed with alert_rules[i].
func ValidateAll(rules []Rule) error {
	var errs criterio.FieldErrorsBuilder
	seen := make(map[string]bool, len(rules))

	for i, r := range rules {
		prefix := fmt.Sprintf("alert_rules[%d]", i)
		errs = r.appendErrors(prefix+".", errs)
		if r.ID != "" {
			if seen[r.ID] {
				errs = errs.Append(prefix+".id", fmt.Errorf("duplicate id %q", r.ID))
			}
			seen[r.ID] = true
		}
	}

	return errs.ToError()
}

func validOperator(op Operator) bool {
	switch op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpContains:
		return true
	}
	return false
}
