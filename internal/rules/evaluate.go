package rules

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rentroll-dev/rentroll/internal/model"
)

// Fields carries the transaction fields a rule's criteria may inspect.
type Fields struct {
	Description string
	Memo        string
	Payee       string
	Amount      decimal.Decimal
}

// value returns the string form of a criteria field. Amount compares against
// its decimal string ("145.67"), matching how rules are authored.
func (f Fields) value(field model.RuleField) string {
	switch field {
	case model.FieldDescription:
		return f.Description
	case model.FieldMemo:
		return f.Memo
	case model.FieldAmount:
		return f.Amount.String()
	default:
		return ""
	}
}

// EvaluateRules runs fields through rules already sorted in evaluation order
// (priority DESC, id ASC) and returns the first matching rule's actions and
// name. No match returns (nil, ""). The evaluator has no side effects;
// callers decide which actions to apply.
func EvaluateRules(ordered []model.Rule, f Fields) ([]model.Action, string) {
	for _, r := range ordered {
		if !r.IsActive {
			continue
		}
		if Matches(r, f) {
			return r.Actions, r.Name
		}
	}
	return nil, ""
}

// Matches reports whether one rule's criteria matches the fields. All match
// types compare case-insensitively. A regex that fails to compile skips the
// rule rather than failing the evaluation.
func Matches(r model.Rule, f Fields) bool {
	fieldValue := strings.ToLower(f.value(r.Field))
	criteria := strings.ToLower(r.Value)

	switch r.MatchType {
	case model.MatchContains:
		return strings.Contains(fieldValue, criteria)
	case model.MatchStartsWith:
		return strings.HasPrefix(fieldValue, criteria)
	case model.MatchEquals:
		return fieldValue == criteria
	case model.MatchRegex:
		re, err := regexp.Compile("(?i)" + r.Value)
		if err != nil {
			return false
		}
		return re.MatchString(fieldValue)
	default:
		return false
	}
}
