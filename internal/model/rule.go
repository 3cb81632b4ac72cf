package model

import "time"

// RuleField names the transaction field a rule's criteria inspects.
type RuleField string

const (
	FieldDescription RuleField = "description"
	FieldMemo        RuleField = "memo"
	FieldAmount      RuleField = "amount"
)

// MatchType names how a rule's criteria value is compared against the field.
type MatchType string

const (
	MatchContains   MatchType = "contains"
	MatchStartsWith MatchType = "starts_with"
	MatchEquals     MatchType = "equals"
	MatchRegex      MatchType = "regex"
)

// ActionType names what a matching rule does to a transaction.
type ActionType string

const (
	ActionSetCategory ActionType = "set_category"
	ActionSetProperty ActionType = "set_property"
)

// Action is one effect of a matching rule. Rules carry an ordered list of
// actions; most carry exactly one.
type Action struct {
	Type  ActionType `json:"type"`
	Value string     `json:"value"`
}

// Rule is a persisted, user-authored criteria->actions mapping.
// Evaluation order is priority DESC, then id ASC; the first matching active
// rule wins and short-circuits.
type Rule struct {
	ID        int64
	Name      string
	Field     RuleField
	MatchType MatchType
	Value     string
	Actions   []Action
	Priority  int
	IsActive  bool
	CreatedAt time.Time
}
