package model

// CategoryStatus tracks whether an expense category is pipeline-computed or
// replaced by a manual override.
type CategoryStatus string

const (
	CategoryOriginal   CategoryStatus = "original"
	CategoryOverridden CategoryStatus = "overridden"
)

// CategorizedExpense is an expense transaction with its assigned spending
// category and the categorizer's confidence in that assignment.
type CategorizedExpense struct {
	Transaction

	Category       string
	Confidence     float64 // [0,1], 1.0 = certain
	MatchReason    string
	CategoryStatus CategoryStatus
	PropertyName   string // optional property attribution, usually via rule or override
}

// NeedsReview reports whether the expense belongs in the category review queue.
func (e CategorizedExpense) NeedsReview() bool {
	if e.CategoryStatus == CategoryOverridden {
		return false
	}
	switch e.Category {
	case "", "other", "uncategorized":
		return true
	}
	return false
}
