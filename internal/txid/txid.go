// Package txid mints and parses deterministic transaction identifiers.
//
// An ID is derived from the row's date, its ordinal position in the input
// file, and its classified kind: "20250105_00012_income". IDs are unique
// within a run and stable across re-runs of the same file; re-exports that
// reorder or add rows mint different IDs.
package txid

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rentroll-dev/rentroll/internal/model"
)

const dateFormat = "20060102"

// Format returns a transaction ID like "20250105_00012_income".
func Format(date time.Time, ordinal int, kind model.Kind) string {
	return fmt.Sprintf("%s_%05d_%s", date.Format(dateFormat), ordinal, kind)
}

// Parse splits a transaction ID into its date, ordinal, and kind.
func Parse(id string) (date time.Time, ordinal int, kind model.Kind, err error) {
	parts := strings.SplitN(id, "_", 3)
	if len(parts) != 3 {
		return time.Time{}, 0, "", fmt.Errorf("invalid transaction ID format: %q", id)
	}

	date, err = time.Parse(dateFormat, parts[0])
	if err != nil {
		return time.Time{}, 0, "", fmt.Errorf("invalid date in transaction ID %q: %w", id, err)
	}

	ordinal, err = strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, 0, "", fmt.Errorf("invalid ordinal in transaction ID %q: %w", id, err)
	}

	switch k := model.Kind(parts[2]); k {
	case model.KindIncome, model.KindExpense, model.KindMixed, model.KindNeutral:
		kind = k
	default:
		return time.Time{}, 0, "", fmt.Errorf("invalid kind in transaction ID %q", id)
	}

	return date, ordinal, kind, nil
}
