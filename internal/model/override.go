package model

import "time"

// IncomeOverride is a manual property reassignment for one income transaction.
// One row per transaction; an upsert always wins over pipeline-computed values.
type IncomeOverride struct {
	TransactionID string
	PropertyName  string
	MappingNotes  string
	ModifiedBy    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ExpenseOverride is a manual category (and optionally property) reassignment
// for one expense transaction.
type ExpenseOverride struct {
	TransactionID string
	Category      string
	PropertyName  string // empty = leave pipeline value
	ModifiedBy    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OverrideType distinguishes the two override tables in the audit log.
type OverrideType string

const (
	OverrideIncome  OverrideType = "income"
	OverrideExpense OverrideType = "expense"
)

// AuditEntry is one append-only audit row: a single field change on a single
// override write. Audit rows are never mutated or deleted.
type AuditEntry struct {
	ID            int64
	TransactionID string
	OverrideType  OverrideType
	FieldName     string
	OldValue      string
	OldValueNull  bool // true when the write created the override
	NewValue      string
	ModifiedBy    string
	ModifiedAt    time.Time
}
