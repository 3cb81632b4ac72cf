package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a bank transaction by which side of the export is populated.
type Kind string

const (
	KindIncome  Kind = "income"  // credit > 0, debit == 0
	KindExpense Kind = "expense" // debit > 0, credit == 0
	KindNeutral Kind = "neutral" // both zero
	KindMixed   Kind = "mixed"   // both positive; needs human triage
)

// RawTransaction is one row of the bank export as parsed from disk.
// Optional columns absent from the file are empty strings.
type RawTransaction struct {
	Date        time.Time
	Credit      decimal.Decimal
	Debit       decimal.Decimal
	Memo        string
	Description string
	Reference   string
	Payee       string
	Account     string
}

// Transaction is a classified bank transaction with a stable per-run identity.
type Transaction struct {
	RawTransaction

	ID      string // "YYYYMMDD_NNNNN_kind", see internal/txid
	Ordinal int    // zero-based row position within the run's input
	Kind    Kind
	Amount  decimal.Decimal // positive value of the relevant side; zero for mixed/neutral
}

// Resolved reports whether the transaction kind carries an amount
// (income or expense). Mixed and neutral rows go to the unresolved bucket.
func (t Transaction) Resolved() bool {
	return t.Kind == KindIncome || t.Kind == KindExpense
}
