package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rentroll-dev/rentroll/internal/model"
)

func rule(id int64, name string, priority int, matchType model.MatchType, value string) model.Rule {
	return model.Rule{
		ID:        id,
		Name:      name,
		Field:     model.FieldMemo,
		MatchType: matchType,
		Value:     value,
		Actions:   []model.Action{{Type: model.ActionSetCategory, Value: "hoa"}},
		Priority:  priority,
		IsActive:  true,
	}
}

func TestMatchTypes(t *testing.T) {
	f := Fields{Memo: "Coventry HOA Fee", Amount: decimal.RequireFromString("145.67")}

	cases := []struct {
		name string
		rule model.Rule
		want bool
	}{
		{"contains hit", rule(1, "r", 10, model.MatchContains, "coventry"), true},
		{"contains miss", rule(1, "r", 10, model.MatchContains, "shields"), false},
		{"starts_with hit", rule(1, "r", 10, model.MatchStartsWith, "COVENTRY"), true},
		{"starts_with miss", rule(1, "r", 10, model.MatchStartsWith, "hoa"), false},
		{"equals hit", rule(1, "r", 10, model.MatchEquals, "coventry hoa fee"), true},
		{"equals miss", rule(1, "r", 10, model.MatchEquals, "coventry"), false},
		{"regex hit", rule(1, "r", 10, model.MatchRegex, `hoa\s+fee`), true},
		{"regex invalid is skipped", rule(1, "r", 10, model.MatchRegex, `hoa[`), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(tc.rule, f))
		})
	}
}

func TestAmountField(t *testing.T) {
	r := rule(1, "exact amount", 10, model.MatchEquals, "145.67")
	r.Field = model.FieldAmount

	assert.True(t, Matches(r, Fields{Amount: decimal.RequireFromString("145.67")}))
	assert.False(t, Matches(r, Fields{Amount: decimal.RequireFromString("145.68")}))
}

func TestShortCircuit(t *testing.T) {
	// Both rules match; only the higher-priority rule's actions apply.
	high := rule(2, "high", 50, model.MatchContains, "coventry")
	high.Actions = []model.Action{{Type: model.ActionSetCategory, Value: "hoa"}}
	low := rule(1, "low", 10, model.MatchContains, "coventry")
	low.Actions = []model.Action{{Type: model.ActionSetCategory, Value: "other"}}

	actions, name := EvaluateRules([]model.Rule{high, low}, Fields{Memo: "coventry dues"})
	assert.Equal(t, "high", name)
	assert.Equal(t, "hoa", actions[0].Value)
}

func TestTieBreakLowerIDWins(t *testing.T) {
	// Same priority: the store orders by id ASC, so the earlier rule wins.
	first := rule(1, "first", 50, model.MatchContains, "coventry")
	second := rule(2, "second", 50, model.MatchContains, "coventry")

	_, name := EvaluateRules([]model.Rule{first, second}, Fields{Memo: "coventry dues"})
	assert.Equal(t, "first", name)
}

func TestInactiveRulesSkipped(t *testing.T) {
	r := rule(1, "inactive", 50, model.MatchContains, "coventry")
	r.IsActive = false

	actions, name := EvaluateRules([]model.Rule{r}, Fields{Memo: "coventry dues"})
	assert.Empty(t, actions)
	assert.Empty(t, name)
}

func TestInvalidRegexDoesNotBlockOthers(t *testing.T) {
	bad := rule(1, "bad", 50, model.MatchRegex, `dues[`)
	good := rule(2, "good", 10, model.MatchContains, "dues")

	_, name := EvaluateRules([]model.Rule{bad, good}, Fields{Memo: "coventry dues"})
	assert.Equal(t, "good", name)
}
