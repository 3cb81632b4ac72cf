// Package ingest parses a bank transaction export and classifies each row as
// income, expense, mixed, or neutral. The transform is pure: persistence of
// the classified rows belongs to the pipeline.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentroll-dev/rentroll/internal/model"
	"github.com/rentroll-dev/rentroll/internal/txid"
)

// Required export columns. Anything else is optional passthrough.
const (
	colDate   = "date"
	colCredit = "credit_amount"
	colDebit  = "debit_amount"
)

// Optional passthrough columns recognized by name.
const (
	colMemo        = "memo"
	colDescription = "description"
	colReference   = "reference"
	colPayee       = "payee"
	colAccount     = "account_number"
)

// dateLayouts are tried in order when parsing the date column. Rows whose
// date parses with none of them are dropped, not erred.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01-02-2006",
}

// SchemaError reports required columns missing from the export header.
// It is fatal for the run.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("bank report missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ReadFile parses and classifies a bank export on disk.
func ReadFile(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bank report: %w", err)
	}
	defer f.Close()

	txns, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading bank report %s: %w", path, err)
	}
	return txns, nil
}

// Read parses and classifies a bank export. Rows with unparsable dates are
// dropped; unparsable amounts default to zero. Ordinals (and therefore
// transaction IDs) are assigned over the kept rows in file order.
func Read(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // bank exports pad rows inconsistently

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bank CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, &SchemaError{Missing: []string{colDate, colCredit, colDebit}}
	}

	cols := headerIndex(records[0])
	if missing := missingRequired(cols); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	var txns []model.Transaction
	for _, rec := range records[1:] {
		date, ok := parseDate(field(rec, cols, colDate))
		if !ok {
			continue
		}

		raw := model.RawTransaction{
			Date:        date,
			Credit:      parseAmount(field(rec, cols, colCredit)),
			Debit:       parseAmount(field(rec, cols, colDebit)),
			Memo:        field(rec, cols, colMemo),
			Description: field(rec, cols, colDescription),
			Reference:   field(rec, cols, colReference),
			Payee:       field(rec, cols, colPayee),
			Account:     field(rec, cols, colAccount),
		}

		kind := Classify(raw.Credit, raw.Debit)
		ordinal := len(txns)

		txns = append(txns, model.Transaction{
			RawTransaction: raw,
			ID:             txid.Format(date, ordinal, kind),
			Ordinal:        ordinal,
			Kind:           kind,
			Amount:         deriveAmount(kind, raw.Credit, raw.Debit),
		})
	}

	return txns, nil
}

// Classify decides a transaction's kind. Credit and debit are already
// absolute values at this point, so the check is presence, not sign.
func Classify(credit, debit decimal.Decimal) model.Kind {
	creditSet := credit.IsPositive()
	debitSet := debit.IsPositive()

	switch {
	case creditSet && !debitSet:
		return model.KindIncome
	case debitSet && !creditSet:
		return model.KindExpense
	case !creditSet && !debitSet:
		return model.KindNeutral
	default:
		return model.KindMixed
	}
}

// Split partitions classified transactions into income, expense, and
// unresolved (mixed/neutral) buckets, preserving order.
func Split(txns []model.Transaction) (income, expense, unresolved []model.Transaction) {
	for _, t := range txns {
		switch t.Kind {
		case model.KindIncome:
			income = append(income, t)
		case model.KindExpense:
			expense = append(expense, t)
		default:
			unresolved = append(unresolved, t)
		}
	}
	return income, expense, unresolved
}

func deriveAmount(kind model.Kind, credit, debit decimal.Decimal) decimal.Decimal {
	switch kind {
	case model.KindIncome:
		return credit
	case model.KindExpense:
		return debit
	default:
		return decimal.Zero
	}
}

// headerIndex normalizes header names to snake_case and maps them to their
// column positions. First occurrence wins on duplicates.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := normalizeColumn(name)
		if _, seen := cols[key]; !seen {
			cols[key] = i
		}
	}
	return cols
}

func normalizeColumn(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, r := range []string{" ", "/", "-"} {
		key = strings.ReplaceAll(key, r, "_")
	}
	return key
}

func missingRequired(cols map[string]int) []string {
	var missing []string
	for _, req := range []string{colDate, colCredit, colDebit} {
		if _, ok := cols[req]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}

func field(rec []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseAmount coerces a raw amount cell to a non-negative decimal.
// Unparsable values default to zero; parenthesized negatives and currency
// formatting are tolerated.
func parseAmount(value string) decimal.Decimal {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return decimal.Zero
	}

	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = clean[1 : len(clean)-1]
	}
	clean = strings.ReplaceAll(clean, "$", "")
	clean = strings.ReplaceAll(clean, ",", "")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}
