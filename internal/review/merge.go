package review

import (
	"sort"

	"github.com/rentroll-dev/rentroll/internal/category"
	"github.com/rentroll-dev/rentroll/internal/model"
)

// MergeIncome applies income overrides onto pipeline-computed rows. An
// override replaces the property and notes wholesale and forces the mapping
// status to overridden. Rows without an override pass through unchanged; the
// input slice is not mutated.
func MergeIncome(rows []model.MappedIncome, overrides []model.IncomeOverride) []model.MappedIncome {
	if len(rows) == 0 || len(overrides) == 0 {
		return rows
	}

	byID := make(map[string]model.IncomeOverride, len(overrides))
	for _, o := range overrides {
		byID[o.TransactionID] = o
	}

	out := make([]model.MappedIncome, len(rows))
	for i, r := range rows {
		if o, ok := byID[r.ID]; ok {
			r.PropertyName = o.PropertyName
			r.MappingNotes = o.MappingNotes
			r.MappingStatus = model.StatusOverridden
		}
		out[i] = r
	}
	return out
}

// MergeExpenses applies expense overrides onto pipeline-computed rows. The
// category is always replaced; the property only when the override carries
// one. Status is forced to overridden either way.
func MergeExpenses(rows []model.CategorizedExpense, overrides []model.ExpenseOverride) []model.CategorizedExpense {
	if len(rows) == 0 || len(overrides) == 0 {
		return rows
	}

	byID := make(map[string]model.ExpenseOverride, len(overrides))
	for _, o := range overrides {
		byID[o.TransactionID] = o
	}

	out := make([]model.CategorizedExpense, len(rows))
	for i, r := range rows {
		if o, ok := byID[r.ID]; ok {
			r.Category = o.Category
			if o.PropertyName != "" {
				r.PropertyName = o.PropertyName
			}
			r.CategoryStatus = model.CategoryOverridden
		}
		out[i] = r
	}
	return out
}

// PropertyOptions returns the sorted distinct property names seen in mapped
// income rows, always including the given base entries.
func PropertyOptions(rows []model.MappedIncome, always ...string) []string {
	seen := make(map[string]struct{})
	for _, name := range always {
		if name != "" {
			seen[name] = struct{}{}
		}
	}
	for _, r := range rows {
		if r.PropertyName != "" && r.PropertyName != model.UnassignedSentinel {
			seen[r.PropertyName] = struct{}{}
		}
	}

	options := make([]string, 0, len(seen))
	for name := range seen {
		options = append(options, name)
	}
	sort.Strings(options)
	return options
}

// CategoryOptions returns the sorted union of the canonical category keys and
// every category seen in categorized expense rows.
func CategoryOptions(rows []model.CategorizedExpense) []string {
	seen := make(map[string]struct{})
	for _, key := range category.Keys() {
		seen[key] = struct{}{}
	}
	for _, r := range rows {
		if r.Category != "" {
			seen[r.Category] = struct{}{}
		}
	}

	options := make([]string, 0, len(seen))
	for key := range seen {
		options = append(options, key)
	}
	sort.Strings(options)
	return options
}
