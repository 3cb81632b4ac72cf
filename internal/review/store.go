// Package review persists manual overrides for income and expense
// transactions and reconciles them onto pipeline output. Overrides are
// upserts keyed by transaction id; every write appends one audit row per
// changed field to override_history, which is never mutated or deleted.
package review

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/rentroll-dev/rentroll/internal/model"
	"github.com/rentroll-dev/rentroll/internal/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when no override exists for a transaction id.
var ErrNotFound = errors.New("override not found")

const defaultModifiedBy = "system"

// Store is the SQLite-backed override store.
type Store struct {
	db *sql.DB
}

// Open opens (creating and migrating if needed) the override store at path.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening override store: %w", err)
	}
	if err := sqlite.Migrate(db, migrations, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating override store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordIncomeOverride upserts a property assignment for one income
// transaction. Changed fields (and creation, with a NULL old value) land in
// the audit log within the same database transaction as the write.
func (s *Store) RecordIncomeOverride(o model.IncomeOverride) error {
	if o.TransactionID == "" {
		return errors.New("income override requires a transaction id")
	}
	if o.PropertyName == "" {
		return errors.New("income override requires a property name")
	}
	if o.ModifiedBy == "" {
		o.ModifiedBy = defaultModifiedBy
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("recording income override: %w", err)
	}
	defer tx.Rollback()

	var (
		oldProperty string
		oldNotes    sql.NullString
	)
	err = tx.QueryRow(
		"SELECT property_name, mapping_notes FROM income_overrides WHERE transaction_id = ?",
		o.TransactionID,
	).Scan(&oldProperty, &oldNotes)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.Exec(
			`INSERT INTO income_overrides
			 (transaction_id, property_name, mapping_notes, created_at, updated_at, modified_by)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			o.TransactionID, o.PropertyName, nullable(o.MappingNotes), now, now, o.ModifiedBy,
		)
		if err != nil {
			return fmt.Errorf("recording income override: %w", err)
		}
		if err := appendAudit(tx, o.TransactionID, model.OverrideIncome, "property_name",
			sql.NullString{}, o.PropertyName, o.ModifiedBy, now); err != nil {
			return err
		}

	case err != nil:
		return fmt.Errorf("recording income override: %w", err)

	default:
		if oldProperty != o.PropertyName {
			if err := appendAudit(tx, o.TransactionID, model.OverrideIncome, "property_name",
				sql.NullString{String: oldProperty, Valid: true}, o.PropertyName, o.ModifiedBy, now); err != nil {
				return err
			}
		}
		if oldNotes.String != o.MappingNotes {
			if err := appendAudit(tx, o.TransactionID, model.OverrideIncome, "mapping_notes",
				oldNotes, o.MappingNotes, o.ModifiedBy, now); err != nil {
				return err
			}
		}
		_, err = tx.Exec(
			`UPDATE income_overrides
			 SET property_name = ?, mapping_notes = ?, updated_at = ?, modified_by = ?
			 WHERE transaction_id = ?`,
			o.PropertyName, nullable(o.MappingNotes), now, o.ModifiedBy, o.TransactionID,
		)
		if err != nil {
			return fmt.Errorf("recording income override: %w", err)
		}
	}

	return tx.Commit()
}

// RecordExpenseOverride upserts a category (and optionally property)
// assignment for one expense transaction. An empty PropertyName leaves the
// pipeline-computed property in place at merge time.
func (s *Store) RecordExpenseOverride(o model.ExpenseOverride) error {
	if o.TransactionID == "" {
		return errors.New("expense override requires a transaction id")
	}
	if o.Category == "" {
		return errors.New("expense override requires a category")
	}
	if o.ModifiedBy == "" {
		o.ModifiedBy = defaultModifiedBy
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("recording expense override: %w", err)
	}
	defer tx.Rollback()

	var (
		oldCategory string
		oldProperty sql.NullString
	)
	err = tx.QueryRow(
		"SELECT category, property_name FROM expense_overrides WHERE transaction_id = ?",
		o.TransactionID,
	).Scan(&oldCategory, &oldProperty)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.Exec(
			`INSERT INTO expense_overrides
			 (transaction_id, category, property_name, created_at, updated_at, modified_by)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			o.TransactionID, o.Category, nullable(o.PropertyName), now, now, o.ModifiedBy,
		)
		if err != nil {
			return fmt.Errorf("recording expense override: %w", err)
		}
		if err := appendAudit(tx, o.TransactionID, model.OverrideExpense, "category",
			sql.NullString{}, o.Category, o.ModifiedBy, now); err != nil {
			return err
		}

	case err != nil:
		return fmt.Errorf("recording expense override: %w", err)

	default:
		if oldCategory != o.Category {
			if err := appendAudit(tx, o.TransactionID, model.OverrideExpense, "category",
				sql.NullString{String: oldCategory, Valid: true}, o.Category, o.ModifiedBy, now); err != nil {
				return err
			}
		}
		if oldProperty.String != o.PropertyName {
			if err := appendAudit(tx, o.TransactionID, model.OverrideExpense, "property_name",
				oldProperty, o.PropertyName, o.ModifiedBy, now); err != nil {
				return err
			}
		}
		_, err = tx.Exec(
			`UPDATE expense_overrides
			 SET category = ?, property_name = ?, updated_at = ?, modified_by = ?
			 WHERE transaction_id = ?`,
			o.Category, nullable(o.PropertyName), now, o.ModifiedBy, o.TransactionID,
		)
		if err != nil {
			return fmt.Errorf("recording expense override: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteIncomeOverride removes the income override for a transaction.
// Deleting an absent override returns ErrNotFound. The removal is audited.
func (s *Store) DeleteIncomeOverride(transactionID, modifiedBy string) error {
	return s.deleteOverride("income_overrides", "property_name", model.OverrideIncome, transactionID, modifiedBy)
}

// DeleteExpenseOverride removes the expense override for a transaction.
func (s *Store) DeleteExpenseOverride(transactionID, modifiedBy string) error {
	return s.deleteOverride("expense_overrides", "category", model.OverrideExpense, transactionID, modifiedBy)
}

func (s *Store) deleteOverride(table, field string, overrideType model.OverrideType, transactionID, modifiedBy string) error {
	if modifiedBy == "" {
		modifiedBy = defaultModifiedBy
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("deleting override %s: %w", transactionID, err)
	}
	defer tx.Rollback()

	var oldValue string
	err = tx.QueryRow(
		fmt.Sprintf("SELECT %s FROM %s WHERE transaction_id = ?", field, table),
		transactionID,
	).Scan(&oldValue)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting override %s: %w", transactionID, err)
	}

	if _, err := tx.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE transaction_id = ?", table),
		transactionID,
	); err != nil {
		return fmt.Errorf("deleting override %s: %w", transactionID, err)
	}
	if err := appendAudit(tx, transactionID, overrideType, field,
		sql.NullString{String: oldValue, Valid: true}, "", modifiedBy, now); err != nil {
		return err
	}

	return tx.Commit()
}

// IncomeOverrides returns all income overrides keyed for merging.
func (s *Store) IncomeOverrides() ([]model.IncomeOverride, error) {
	rows, err := s.db.Query(
		`SELECT transaction_id, property_name, mapping_notes, created_at, updated_at, modified_by
		 FROM income_overrides ORDER BY transaction_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading income overrides: %w", err)
	}
	defer rows.Close()

	var result []model.IncomeOverride
	for rows.Next() {
		var (
			o                    model.IncomeOverride
			notes                sql.NullString
			created, updated, by sql.NullString
		)
		if err := rows.Scan(&o.TransactionID, &o.PropertyName, &notes, &created, &updated, &by); err != nil {
			return nil, fmt.Errorf("loading income overrides: %w", err)
		}
		o.MappingNotes = notes.String
		o.ModifiedBy = by.String
		o.CreatedAt = parseTimestamp(created.String)
		o.UpdatedAt = parseTimestamp(updated.String)
		result = append(result, o)
	}
	return result, rows.Err()
}

// ExpenseOverrides returns all expense overrides keyed for merging.
func (s *Store) ExpenseOverrides() ([]model.ExpenseOverride, error) {
	rows, err := s.db.Query(
		`SELECT transaction_id, category, property_name, created_at, updated_at, modified_by
		 FROM expense_overrides ORDER BY transaction_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading expense overrides: %w", err)
	}
	defer rows.Close()

	var result []model.ExpenseOverride
	for rows.Next() {
		var (
			o                    model.ExpenseOverride
			property             sql.NullString
			created, updated, by sql.NullString
		)
		if err := rows.Scan(&o.TransactionID, &o.Category, &property, &created, &updated, &by); err != nil {
			return nil, fmt.Errorf("loading expense overrides: %w", err)
		}
		o.PropertyName = property.String
		o.ModifiedBy = by.String
		o.CreatedAt = parseTimestamp(created.String)
		o.UpdatedAt = parseTimestamp(updated.String)
		result = append(result, o)
	}
	return result, rows.Err()
}

// History returns the audit trail for one transaction, oldest first.
func (s *Store) History(transactionID string) ([]model.AuditEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, transaction_id, override_type, field_name, old_value, new_value, modified_by, modified_at
		 FROM override_history WHERE transaction_id = ? ORDER BY id ASC`,
		transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading override history: %w", err)
	}
	defer rows.Close()

	var result []model.AuditEntry
	for rows.Next() {
		var (
			e            model.AuditEntry
			overrideType string
			oldValue     sql.NullString
			newValue     sql.NullString
			modifiedAt   string
		)
		if err := rows.Scan(&e.ID, &e.TransactionID, &overrideType, &e.FieldName, &oldValue, &newValue, &e.ModifiedBy, &modifiedAt); err != nil {
			return nil, fmt.Errorf("loading override history: %w", err)
		}
		e.OverrideType = model.OverrideType(overrideType)
		e.OldValue = oldValue.String
		e.OldValueNull = !oldValue.Valid
		e.NewValue = newValue.String
		e.ModifiedAt = parseTimestamp(modifiedAt)
		result = append(result, e)
	}
	return result, rows.Err()
}

func appendAudit(tx *sql.Tx, transactionID string, overrideType model.OverrideType, field string, oldValue sql.NullString, newValue, modifiedBy, modifiedAt string) error {
	_, err := tx.Exec(
		`INSERT INTO override_history
		 (transaction_id, override_type, field_name, old_value, new_value, modified_by, modified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		transactionID, string(overrideType), field, oldValue, newValue, modifiedBy, modifiedAt,
	)
	if err != nil {
		return fmt.Errorf("appending audit entry for %s: %w", transactionID, err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
