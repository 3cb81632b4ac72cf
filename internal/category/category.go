// Package category canonicalizes free-form expense category strings.
//
// Reports, rules, overrides, and the categorizer all spell categories
// slightly differently ("Repairs", "REPAIR", "condo fee"). Normalize folds
// them onto one fixed vocabulary so downstream grouping never splits a
// category across spelling variants.
package category

import "strings"

// canonical maps spelling/typo/synonym variants to canonical keys.
// Keys are matched exactly first, then case-insensitively, then with
// spaces and underscores swapped.
var canonical = map[string]string{
	"repairs": "repairs",
	"repair":  "repairs",

	"maintenance": "maintenance",
	"maintance":   "maintenance", // common typo

	"mortgage":          "mortgage_interest",
	"mortgage_interest": "mortgage_interest",
	"mortgage interest": "mortgage_interest",

	"insurance": "insurance",

	"utilities": "utilities",
	"utility":   "utilities",

	"taxes":        "taxes",
	"tax":          "taxes",
	"property_tax": "taxes",
	"property tax": "taxes",

	"hoa":             "hoa",
	"condo_fee":       "hoa",
	"condo fee":       "hoa",
	"association_fee": "hoa",
	"association fee": "hoa",

	"cleaning": "cleaning",

	"landscaping": "landscaping",
	"lawn_care":   "landscaping",
	"lawn care":   "landscaping",

	"legal": "legal",

	"management_fees": "management_fees",
	"management fees": "management_fees",
	"management":      "management_fees",

	"pest_control": "pest_control",
	"pest control": "pest_control",

	"advertising": "advertising",

	"supplies": "supplies",
	"supply":   "supplies",

	"travel":  "travel",
	"mileage": "travel",
	"auto":    "travel",
	"vehicle": "travel",

	"other":         "other",
	"miscellaneous": "other",
}

// displayNames maps canonical keys to report-friendly labels.
var displayNames = map[string]string{
	"repairs":           "Repairs",
	"maintenance":       "Maintenance",
	"mortgage_interest": "Mortgage Interest",
	"insurance":         "Insurance",
	"utilities":         "Utilities",
	"taxes":             "Taxes",
	"hoa":               "HOA/Condo Fee",
	"cleaning":          "Cleaning",
	"landscaping":       "Landscaping",
	"legal":             "Legal",
	"management_fees":   "Management Fees",
	"pest_control":      "Pest Control",
	"advertising":       "Advertising",
	"supplies":          "Supplies",
	"travel":            "Travel/Mileage",
	"other":             "Other",
}

// Normalize returns the canonical key for a category string. Empty or blank
// input normalizes to "other". Unknown categories fall back to
// lowercase-with-underscores; Normalize is idempotent either way.
func Normalize(category string) string {
	key, _ := NormalizeKnown(category)
	return key
}

// NormalizeKnown is Normalize plus a flag reporting whether the input matched
// the known vocabulary. Callers log unknown categories; they are never errors.
func NormalizeKnown(category string) (string, bool) {
	clean := strings.TrimSpace(category)
	if clean == "" {
		return "other", true
	}

	if c, ok := canonical[clean]; ok {
		return c, true
	}

	lower := strings.ToLower(clean)
	if c, ok := canonical[lower]; ok {
		return c, true
	}

	if c, ok := canonical[strings.ReplaceAll(lower, "_", " ")]; ok {
		return c, true
	}
	if c, ok := canonical[strings.ReplaceAll(lower, " ", "_")]; ok {
		return c, true
	}

	return strings.ReplaceAll(lower, " ", "_"), false
}

// DisplayName returns the report label for a category, normalizing first.
// Unknown categories are title-cased with underscores turned into spaces.
func DisplayName(category string) string {
	key := Normalize(category)
	if label, ok := displayNames[key]; ok {
		return label
	}

	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Keys returns the fixed canonical vocabulary, for option lists.
func Keys() []string {
	keys := make([]string, 0, len(displayNames))
	for k := range displayNames {
		keys = append(keys, k)
	}
	return keys
}
