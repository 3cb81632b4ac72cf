package pipeline

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentroll-dev/rentroll/internal/model"
	"github.com/rentroll-dev/rentroll/internal/review"
	"github.com/rentroll-dev/rentroll/internal/rules"
)

const sampleExport = `Date,Credit Amount,Debit Amount,Memo,Description,Payee
2025-01-05,1200.00,,RENT 41 26TH,DEPOSIT,
2025-01-06,950.00,,ZELLE JOHN,DEPOSIT,
2025-01-10,,85.50,,HOME DEPOT #4521,
2025-01-11,,60.00,,ZZZZ MYSTERY,
2025-01-12,,,,STATEMENT,
`

const sampleMapping = `memo,credit_amount,prop_name,notes
RENT 41 26TH,1200.00,41 26th St,rent check
`

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	p := New(t.TempDir(), slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	require.NoError(t, p.EnsureDirs())
	return p
}

func writeRaw(t *testing.T, p *Processor, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(p.dataDir, "raw", name), []byte(content), 0o644))
}

func readCSV(t *testing.T, path string) (header []string, rows [][]string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	return records[0], records[1:]
}

func column(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func TestRunFullPipeline(t *testing.T) {
	p := newTestProcessor(t)
	writeRaw(t, p, "transaction_report.csv", sampleExport)
	writeRaw(t, p, "deposit_amount_map.csv", sampleMapping)

	result, err := p.Run(Options{})
	require.NoError(t, err)

	assert.True(t, result.MappingEnabled)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 5, result.Transactions)
	assert.Equal(t, 2, result.Income)
	assert.Equal(t, 2, result.Expenses)
	assert.Equal(t, 1, result.Unresolved)
	assert.Equal(t, 1, result.IncomeReview)
	assert.Equal(t, 1, result.ExpenseReview)

	processed := filepath.Join(p.dataDir, "processed")

	header, rows := readCSV(t, filepath.Join(processed, "processed_income.csv"))
	require.Len(t, rows, 2)
	status := column(header, "mapping_status")
	property := column(header, "property_name")
	assert.Equal(t, "mapped", rows[0][status])
	assert.Equal(t, "41 26th St", rows[0][property])
	assert.Equal(t, "mapping_missing", rows[1][status])

	header, rows = readCSV(t, filepath.Join(processed, "processed_expenses.csv"))
	require.Len(t, rows, 2)
	cat := column(header, "category")
	reason := column(header, "match_reason")
	assert.Equal(t, "repairs", rows[0][cat])
	assert.Equal(t, "Matched merchant: 'home depot'", rows[0][reason])
	assert.Equal(t, "other", rows[1][cat])

	_, rows = readCSV(t, filepath.Join(processed, "unresolved_bank_transactions.csv"))
	require.Len(t, rows, 1)

	header, rows = readCSV(t, filepath.Join(processed, "income_mapping_review.csv"))
	require.Len(t, rows, 1)
	assert.Equal(t, "20250106_00001_income", rows[0][column(header, "transaction_id")])

	_, rows = readCSV(t, filepath.Join(processed, "expense_category_review.csv"))
	require.Len(t, rows, 1)

	// Warehouse holds the run stamp.
	w, err := OpenWarehouse(p.WarehousePath())
	require.NoError(t, err)
	defer w.Close()

	audit, err := w.ExportAudit()
	require.NoError(t, err)
	require.Len(t, audit, 2)
	assert.Equal(t, result.RunID, audit[0].RunID)
	assert.Equal(t, result.RunID, audit[1].RunID)
}

func TestRunWithoutMappingFile(t *testing.T) {
	p := newTestProcessor(t)
	writeRaw(t, p, "transaction_report.csv", sampleExport)

	result, err := p.Run(Options{})
	require.NoError(t, err)

	assert.False(t, result.MappingEnabled)
	// Every income row needs review when attribution is disabled.
	assert.Equal(t, 2, result.IncomeReview)
}

func TestRunMissingInputFails(t *testing.T) {
	p := newTestProcessor(t)

	_, err := p.Run(Options{})
	require.Error(t, err)

	// No partial output.
	_, statErr := os.Stat(filepath.Join(p.dataDir, "processed", "bank_transactions_normalized.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunYearFilter(t *testing.T) {
	p := newTestProcessor(t)
	writeRaw(t, p, "transaction_report.csv", sampleExport)

	result, err := p.Run(Options{Year: 2024})
	require.NoError(t, err)
	assert.Zero(t, result.Transactions)
}

func TestOverridesSurviveReruns(t *testing.T) {
	p := newTestProcessor(t)
	writeRaw(t, p, "transaction_report.csv", sampleExport)
	writeRaw(t, p, "deposit_amount_map.csv", sampleMapping)

	_, err := p.Run(Options{})
	require.NoError(t, err)

	s, err := review.Open(p.OverridesDBPath())
	require.NoError(t, err)
	require.NoError(t, s.RecordIncomeOverride(model.IncomeOverride{
		TransactionID: "20250106_00001_income",
		PropertyName:  "966 Kinsbury Court",
		ModifiedBy:    "alice",
	}))
	require.NoError(t, s.RecordExpenseOverride(model.ExpenseOverride{
		TransactionID: "20250111_00003_expense",
		Category:      "legal",
		ModifiedBy:    "alice",
	}))
	require.NoError(t, s.Close())

	result, err := p.Run(Options{})
	require.NoError(t, err)

	// Both review queues drained by the overrides.
	assert.Zero(t, result.IncomeReview)
	assert.Zero(t, result.ExpenseReview)

	processed := filepath.Join(p.dataDir, "processed")
	_, err = os.Stat(filepath.Join(processed, "income_mapping_review.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(processed, "expense_category_review.csv"))
	assert.True(t, os.IsNotExist(err))

	header, rows := readCSV(t, filepath.Join(processed, "processed_income.csv"))
	assert.Equal(t, "966 Kinsbury Court", rows[1][column(header, "property_name")])
	assert.Equal(t, "overridden", rows[1][column(header, "mapping_status")])

	header, rows = readCSV(t, filepath.Join(processed, "processed_expenses.csv"))
	assert.Equal(t, "legal", rows[1][column(header, "category")])
	assert.Equal(t, "overridden", rows[1][column(header, "category_status")])
}

func TestPropertyRuleFillsUnmappedIncome(t *testing.T) {
	p := newTestProcessor(t)
	writeRaw(t, p, "transaction_report.csv", sampleExport)
	writeRaw(t, p, "deposit_amount_map.csv", sampleMapping)

	rs, err := rules.Open(p.RulesDBPath())
	require.NoError(t, err)
	_, err = rs.Add(model.Rule{
		Name:      "Zelle deposits",
		Field:     model.FieldMemo,
		MatchType: model.MatchContains,
		Value:     "zelle",
		Actions:   []model.Action{{Type: model.ActionSetProperty, Value: "118 W Shields St"}},
		IsActive:  true,
		Priority:  10,
	})
	require.NoError(t, err)
	require.NoError(t, rs.Close())

	_, err = p.Run(Options{})
	require.NoError(t, err)

	header, rows := readCSV(t, filepath.Join(p.dataDir, "processed", "processed_income.csv"))
	assert.Equal(t, "118 W Shields St", rows[1][column(header, "property_name")])
	assert.Equal(t, "rule_applied", rows[1][column(header, "mapping_status")])
	assert.Equal(t, "Matched rule: Zelle deposits", rows[1][column(header, "mapping_notes")])
}

func TestUnassignedMappingGoesToManualReview(t *testing.T) {
	p := newTestProcessor(t)
	writeRaw(t, p, "transaction_report.csv", sampleExport)
	writeRaw(t, p, "deposit_amount_map.csv",
		"memo,credit_amount,prop_name\nRENT 41 26TH,1200.00,UNASSIGNED\n")

	result, err := p.Run(Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.IncomeReview)

	header, rows := readCSV(t, filepath.Join(p.dataDir, "processed", "processed_income.csv"))
	assert.Equal(t, "manual_review", rows[0][column(header, "mapping_status")])
}
