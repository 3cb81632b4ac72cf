package ingest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rentroll-dev/rentroll/internal/model"
)

// largeAmount is the advisory threshold for amount anomaly warnings.
var largeAmount = decimal.NewFromInt(50000)

// Validate runs pre-flight checks over classified transactions and returns an
// advisory report. Validation never blocks a run; it exists so a stale or
// doubled-up export is noticed before its rows land in the review queues.
// A non-zero year flags rows dated outside that year.
func Validate(txns []model.Transaction, year int) model.ValidationReport {
	var issues []model.ValidationIssue

	issues = append(issues, checkDuplicates(txns)...)
	issues = append(issues, checkDates(txns, year)...)
	issues = append(issues, checkAmounts(txns)...)
	issues = append(issues, checkMissingData(txns)...)

	report := model.ValidationReport{Issues: issues}
	for _, issue := range issues {
		switch issue.Severity {
		case model.SeverityError:
			report.Errors++
		case model.SeverityWarning:
			report.Warnings++
		default:
			report.Infos++
		}
	}
	report.Valid = report.Errors == 0
	return report
}

// checkDuplicates flags rows sharing date, amount, and memo. Bank exports
// re-downloaded with overlapping ranges produce exactly this shape.
func checkDuplicates(txns []model.Transaction) []model.ValidationIssue {
	var issues []model.ValidationIssue

	seen := make(map[string]string, len(txns))
	for _, t := range txns {
		key := fmt.Sprintf("%s|%s|%s", t.Date.Format("2006-01-02"), t.Amount.StringFixed(2), t.Memo)
		if firstID, dup := seen[key]; dup {
			issues = append(issues, model.ValidationIssue{
				Severity:      model.SeverityWarning,
				Category:      "duplicate",
				Message:       fmt.Sprintf("possible duplicate of %s (same date, amount, memo)", firstID),
				TransactionID: t.ID,
				RowNumber:     t.Ordinal + 1,
			})
			continue
		}
		seen[key] = t.ID
	}
	return issues
}

func checkDates(txns []model.Transaction, year int) []model.ValidationIssue {
	if year == 0 {
		return nil
	}

	var issues []model.ValidationIssue
	for _, t := range txns {
		if t.Date.Year() != year {
			issues = append(issues, model.ValidationIssue{
				Severity:      model.SeverityWarning,
				Category:      "date",
				Message:       fmt.Sprintf("transaction dated %s outside expected year %d", t.Date.Format("2006-01-02"), year),
				TransactionID: t.ID,
				RowNumber:     t.Ordinal + 1,
			})
		}
	}
	return issues
}

func checkAmounts(txns []model.Transaction) []model.ValidationIssue {
	var issues []model.ValidationIssue
	for _, t := range txns {
		if t.Amount.GreaterThan(largeAmount) {
			issues = append(issues, model.ValidationIssue{
				Severity:      model.SeverityWarning,
				Category:      "amount",
				Message:       fmt.Sprintf("unusually large amount %s", t.Amount.StringFixed(2)),
				TransactionID: t.ID,
				RowNumber:     t.Ordinal + 1,
			})
		}
		if t.Kind == model.KindMixed {
			issues = append(issues, model.ValidationIssue{
				Severity:      model.SeverityWarning,
				Category:      "amount",
				Message:       "both credit and debit populated; row will be unresolved",
				TransactionID: t.ID,
				RowNumber:     t.Ordinal + 1,
			})
		}
	}
	return issues
}

func checkMissingData(txns []model.Transaction) []model.ValidationIssue {
	var issues []model.ValidationIssue
	for _, t := range txns {
		if t.Kind == model.KindIncome && t.Memo == "" {
			issues = append(issues, model.ValidationIssue{
				Severity:      model.SeverityInfo,
				Category:      "missing",
				Message:       "income row has no memo; deposit mapping will miss",
				TransactionID: t.ID,
				RowNumber:     t.Ordinal + 1,
			})
		}
		if t.Kind == model.KindNeutral {
			issues = append(issues, model.ValidationIssue{
				Severity:      model.SeverityInfo,
				Category:      "amount",
				Message:       "zero-amount row; will be unresolved",
				TransactionID: t.ID,
				RowNumber:     t.Ordinal + 1,
			})
		}
	}
	return issues
}
