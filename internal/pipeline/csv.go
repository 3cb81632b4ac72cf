package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rentroll-dev/rentroll/internal/model"
)

const dateLayout = "2006-01-02"

// Output file names under <data>/processed.
const (
	fileNormalized    = "bank_transactions_normalized.csv"
	fileIncome        = "processed_income.csv"
	fileExpenses      = "processed_expenses.csv"
	fileUnresolved    = "unresolved_bank_transactions.csv"
	fileIncomeReview  = "income_mapping_review.csv"
	fileExpenseReview = "expense_category_review.csv"
)

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

var transactionHeader = []string{
	"transaction_id", "date", "credit_amount", "debit_amount",
	"transaction_type", "amount", "memo", "description", "reference",
	"payee", "account_number",
}

func transactionRow(t model.Transaction) []string {
	return []string{
		t.ID, t.Date.Format(dateLayout),
		t.Credit.StringFixed(2), t.Debit.StringFixed(2),
		string(t.Kind), t.Amount.StringFixed(2),
		t.Memo, t.Description, t.Reference, t.Payee, t.Account,
	}
}

func writeTransactions(path string, txns []model.Transaction) error {
	rows := make([][]string, len(txns))
	for i, t := range txns {
		rows[i] = transactionRow(t)
	}
	return writeCSV(path, transactionHeader, rows)
}

var incomeHeader = []string{
	"transaction_id", "date", "amount", "memo", "description", "payee",
	"property_name", "mapping_status", "mapping_notes",
}

func incomeRow(r model.MappedIncome) []string {
	return []string{
		r.ID, r.Date.Format(dateLayout), r.Amount.StringFixed(2),
		r.Memo, r.Description, r.Payee,
		r.PropertyName, string(r.MappingStatus), r.MappingNotes,
	}
}

func writeIncome(path string, rows []model.MappedIncome) error {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = incomeRow(r)
	}
	return writeCSV(path, incomeHeader, out)
}

var incomeReviewHeader = append(append([]string{}, incomeHeader...),
	"suggested_property", "suggested_score")

func writeIncomeReview(path string, rows []model.MappedIncome) error {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append(incomeRow(r),
			r.SuggestedProperty, strconv.FormatFloat(r.SuggestedScore, 'f', 2, 64))
	}
	return writeCSV(path, incomeReviewHeader, out)
}

var expenseHeader = []string{
	"transaction_id", "date", "amount", "memo", "description", "payee",
	"category", "confidence", "match_reason", "category_status", "property_name",
}

func expenseRow(e model.CategorizedExpense) []string {
	return []string{
		e.ID, e.Date.Format(dateLayout), e.Amount.StringFixed(2),
		e.Memo, e.Description, e.Payee,
		e.Category, strconv.FormatFloat(e.Confidence, 'f', 2, 64),
		e.MatchReason, string(e.CategoryStatus), e.PropertyName,
	}
}

func writeExpenses(path string, rows []model.CategorizedExpense) error {
	out := make([][]string, len(rows))
	for i, e := range rows {
		out[i] = expenseRow(e)
	}
	return writeCSV(path, expenseHeader, out)
}

// removeIfExists drops a stale review file once its queue empties.
func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}
