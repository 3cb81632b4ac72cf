package model

// MappingStatus describes how an income transaction was attributed to a property.
type MappingStatus string

const (
	// StatusMapped means the deposit mapping table matched exactly.
	StatusMapped MappingStatus = "mapped"
	// StatusMappingMissing means no mapping entry matched the memo+amount key.
	StatusMappingMissing MappingStatus = "mapping_missing"
	// StatusManualReview means the mapping resolved to the UNASSIGNED sentinel.
	StatusManualReview MappingStatus = "manual_review"
	// StatusRuleApplied means a user rule supplied the property.
	StatusRuleApplied MappingStatus = "rule_applied"
	// StatusOverridden means a manual override replaced the computed value.
	StatusOverridden MappingStatus = "overridden"
)

// NeedsReview reports whether the status belongs in the income review queue.
func (s MappingStatus) NeedsReview() bool {
	return s != StatusMapped && s != StatusOverridden
}

// MappedIncome is an income transaction joined against the deposit mapping
// table, user rules, and overrides.
type MappedIncome struct {
	Transaction

	PropertyName  string
	MappingStatus MappingStatus
	MappingNotes  string

	// Fuzzy suggestion attached to review-queue rows only.
	SuggestedProperty string
	SuggestedScore    float64
}
