// Package categorize assigns spending categories to expense transactions.
//
// Strategies run as an ordered chain, first non-nil match wins: user rules,
// merchant lookup, regex patterns, keyword fallback, amount heuristics. Each
// result carries a confidence score and a human-readable reason so review
// tooling can show why a category was chosen.
package categorize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rentroll-dev/rentroll/internal/model"
	"github.com/rentroll-dev/rentroll/internal/rules"
)

// Match is one categorization outcome.
type Match struct {
	Category   string
	Confidence float64 // [0,1], 1.0 = certain
	Reason     string
}

// Matcher is one strategy in the chain. Text is the lowercased concatenation
// of description, payee, and memo. A nil result means "no opinion".
type Matcher interface {
	TryMatch(text string, amount decimal.Decimal) *Match
}

// RuleEvaluator runs user rules ahead of the built-in strategies.
// *rules.Store satisfies it.
type RuleEvaluator interface {
	Evaluate(f rules.Fields) ([]model.Action, string, error)
}

// defaultMatch is returned when every strategy passes.
var defaultMatch = Match{Category: "other", Confidence: 0.0, Reason: "No matching rule found"}

// Categorizer is the strategy-chain categorization engine.
type Categorizer struct {
	evaluator RuleEvaluator // optional
	merchants *MerchantMatcher
	patterns  *PatternMatcher
	chain     []Matcher
}

// New builds a Categorizer with the built-in tables. The evaluator may be nil
// when no rule store is configured for the run.
func New(evaluator RuleEvaluator) *Categorizer {
	merchants := &MerchantMatcher{entries: defaultMerchants()}
	patterns := mustPatternMatcher(defaultPatterns())

	return &Categorizer{
		evaluator: evaluator,
		merchants: merchants,
		patterns:  patterns,
		chain: []Matcher{
			merchants,
			patterns,
			&KeywordMatcher{entries: defaultKeywords()},
			&AmountMatcher{},
		},
	}
}

// Categorize runs one expense through the chain. Only set_category actions
// from the rule stage are consumed here; set_property actions are the
// caller's concern.
func (c *Categorizer) Categorize(description string, amount decimal.Decimal, payee, memo string) (Match, error) {
	if c.evaluator != nil {
		actions, ruleName, err := c.evaluator.Evaluate(rules.Fields{
			Description: description,
			Memo:        memo,
			Payee:       payee,
			Amount:      amount,
		})
		if err != nil {
			return Match{}, fmt.Errorf("evaluating rules: %w", err)
		}
		for _, a := range actions {
			if a.Type == model.ActionSetCategory {
				return Match{
					Category:   a.Value,
					Confidence: 1.0,
					Reason:     fmt.Sprintf("Matched rule: %s", ruleName),
				}, nil
			}
		}
	}

	text := combinedText(description, payee, memo)
	for _, m := range c.chain {
		if match := m.TryMatch(text, amount); match != nil {
			return *match, nil
		}
	}
	return defaultMatch, nil
}

// AddMerchant registers a merchant substring at runtime. Lookup order places
// it after the built-ins.
func (c *Categorizer) AddMerchant(name, category string) {
	c.merchants.entries = append(c.merchants.entries, merchantEntry{
		Name:     strings.ToLower(name),
		Category: category,
	})
}

// AddPattern registers a regex pattern at runtime.
func (c *Categorizer) AddPattern(pattern, category string, confidence float64, description string) error {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	c.patterns.compiled = append(c.patterns.compiled, compiledPattern{
		re:    re,
		entry: patternEntry{Pattern: pattern, Category: category, Confidence: confidence, Description: description},
	})
	return nil
}

// Statistics reports table sizes, for startup logging.
type Statistics struct {
	Merchants int
	Patterns  int
	Keywords  int
}

func (c *Categorizer) Statistics() Statistics {
	var keywords int
	for _, m := range c.chain {
		if km, ok := m.(*KeywordMatcher); ok {
			keywords = len(km.entries)
		}
	}
	return Statistics{
		Merchants: len(c.merchants.entries),
		Patterns:  len(c.patterns.compiled),
		Keywords:  keywords,
	}
}

func combinedText(description, payee, memo string) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(description)),
		strings.ToLower(strings.TrimSpace(payee)),
		strings.ToLower(strings.TrimSpace(memo)),
	}
	return strings.Join(parts, " ")
}

// MerchantMatcher matches vendor-name substrings at confidence 0.95.
type MerchantMatcher struct {
	entries []merchantEntry
}

func (m *MerchantMatcher) TryMatch(text string, _ decimal.Decimal) *Match {
	for _, e := range m.entries {
		if strings.Contains(text, e.Name) {
			return &Match{
				Category:   e.Category,
				Confidence: 0.95,
				Reason:     fmt.Sprintf("Matched merchant: '%s'", e.Name),
			}
		}
	}
	return nil
}

// PatternMatcher matches ordered regexes, each carrying its own confidence.
type PatternMatcher struct {
	compiled []compiledPattern
}

type compiledPattern struct {
	re    *regexp.Regexp
	entry patternEntry
}

func mustPatternMatcher(entries []patternEntry) *PatternMatcher {
	pm := &PatternMatcher{compiled: make([]compiledPattern, 0, len(entries))}
	for _, e := range entries {
		pm.compiled = append(pm.compiled, compiledPattern{
			re:    regexp.MustCompile("(?i)" + e.Pattern),
			entry: e,
		})
	}
	return pm
}

func (m *PatternMatcher) TryMatch(text string, _ decimal.Decimal) *Match {
	for _, p := range m.compiled {
		if p.re.MatchString(text) {
			return &Match{
				Category:   p.entry.Category,
				Confidence: p.entry.Confidence,
				Reason:     fmt.Sprintf("Matched pattern: %s", p.entry.Description),
			}
		}
	}
	return nil
}

// KeywordMatcher is the single-word fallback with per-keyword confidence.
type KeywordMatcher struct {
	entries []keywordEntry
}

func (m *KeywordMatcher) TryMatch(text string, _ decimal.Decimal) *Match {
	for _, e := range m.entries {
		if strings.Contains(text, e.Keyword) {
			return &Match{
				Category:   e.Category,
				Confidence: e.Confidence,
				Reason:     fmt.Sprintf("Matched keyword: '%s'", e.Keyword),
			}
		}
	}
	return nil
}

// AmountMatcher applies contextual amount heuristics: large regular payments
// look like mortgage, mid-range monthly bills look like utilities.
type AmountMatcher struct{}

var (
	mortgageFloor = decimal.NewFromInt(1000)
	utilityFloor  = decimal.NewFromInt(50)
	utilityCeil   = decimal.NewFromInt(500)
)

func (m *AmountMatcher) TryMatch(text string, amount decimal.Decimal) *Match {
	if !amount.IsPositive() {
		return nil
	}

	if amount.GreaterThan(mortgageFloor) && (strings.Contains(text, "pmt") || strings.Contains(text, "payment")) {
		return &Match{Category: "mortgage_interest", Confidence: 0.60, Reason: "Large regular payment heuristic"}
	}

	if amount.GreaterThan(utilityFloor) && amount.LessThan(utilityCeil) &&
		(strings.Contains(text, "monthly") || strings.Contains(text, "bill")) {
		return &Match{Category: "utilities", Confidence: 0.55, Reason: "Monthly bill amount heuristic"}
	}

	return nil
}
