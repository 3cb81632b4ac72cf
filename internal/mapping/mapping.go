// Package mapping attributes income transactions to properties using the
// curated deposit mapping table. The join key is exact: normalized memo plus
// amount rounded to two decimals. The resolver never guesses; a miss is a
// reportable state, not a default.
package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rentroll-dev/rentroll/internal/model"
)

// Required columns in deposit_amount_map.csv.
var requiredColumns = []string{"memo", "credit_amount", "prop_name"}

// ReadFile loads the deposit mapping table from disk. Callers treat a missing
// file as "mapping disabled", so os.IsNotExist on the returned error matters.
func ReadFile(path string) ([]model.PropertyMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading deposit mapping %s: %w", path, err)
	}
	return entries, nil
}

// Read parses the deposit mapping table.
func Read(r io.Reader) ([]model.PropertyMapping, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading mapping CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("deposit mapping missing required columns: %s", strings.Join(requiredColumns, ", "))
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		if _, seen := cols[key]; !seen {
			cols[key] = i
		}
	}

	var missing []string
	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("deposit mapping missing required columns: %s", strings.Join(missing, ", "))
	}

	var entries []model.PropertyMapping
	for _, rec := range records[1:] {
		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}

		amount, err := decimal.NewFromString(strings.ReplaceAll(get("credit_amount"), ",", ""))
		if err != nil {
			amount = decimal.Zero
		}

		entries = append(entries, model.PropertyMapping{
			Memo:         get("memo"),
			CreditAmount: amount,
			PropertyName: get("prop_name"),
			Notes:        get("notes"),
		})
	}
	return entries, nil
}

// NormalizeMemo produces the comparison key for a memo: trimmed, lowercased,
// empty for blank input.
func NormalizeMemo(memo string) string {
	return strings.ToLower(strings.TrimSpace(memo))
}

// Resolver joins income transactions against the mapping table.
type Resolver struct {
	byKey      map[string]model.PropertyMapping
	properties []string
}

// NewResolver indexes mapping entries by (normalized memo, rounded amount).
// The first entry wins on duplicate keys.
func NewResolver(entries []model.PropertyMapping) *Resolver {
	byKey := make(map[string]model.PropertyMapping, len(entries))
	seen := make(map[string]bool)
	var properties []string

	for _, e := range entries {
		k := key(e.Memo, e.CreditAmount)
		if _, dup := byKey[k]; !dup {
			byKey[k] = e
		}

		name := strings.TrimSpace(e.PropertyName)
		if name == "" || isUnassigned(name) || seen[name] {
			continue
		}
		seen[name] = true
		properties = append(properties, name)
	}

	return &Resolver{byKey: byKey, properties: properties}
}

// Properties returns the distinct property names in the table, excluding the
// UNASSIGNED sentinel. Used for fuzzy review-queue suggestions.
func (r *Resolver) Properties() []string {
	return r.properties
}

// Resolve maps income transactions to properties. Unmatched rows get
// mapping_missing; rows resolving to the UNASSIGNED sentinel get
// manual_review; everything else is mapped.
func (r *Resolver) Resolve(txns []model.Transaction) []model.MappedIncome {
	rows := make([]model.MappedIncome, 0, len(txns))
	for _, t := range txns {
		row := model.MappedIncome{Transaction: t, MappingStatus: model.StatusMappingMissing}

		if entry, ok := r.byKey[key(t.Memo, t.Amount)]; ok {
			row.PropertyName = entry.PropertyName
			row.MappingNotes = entry.Notes
			if isUnassigned(entry.PropertyName) {
				row.MappingStatus = model.StatusManualReview
			} else {
				row.MappingStatus = model.StatusMapped
			}
		}

		rows = append(rows, row)
	}
	return rows
}

func key(memo string, amount decimal.Decimal) string {
	return NormalizeMemo(memo) + "|" + amount.Round(2).StringFixed(2)
}

func isUnassigned(property string) bool {
	return strings.EqualFold(strings.TrimSpace(property), model.UnassignedSentinel)
}
