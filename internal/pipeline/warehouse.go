package pipeline

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/rentroll-dev/rentroll/internal/model"
	"github.com/rentroll-dev/rentroll/internal/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Warehouse is the processed.db SQLite store. The processed tables are
// replaced wholesale on every run; the export audit and property registry
// persist across runs.
type Warehouse struct {
	db *sql.DB
}

// OpenWarehouse opens (creating and migrating if needed) processed.db at path.
func OpenWarehouse(path string) (*Warehouse, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening warehouse: %w", err)
	}
	if err := sqlite.Migrate(db, migrations, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating warehouse: %w", err)
	}
	return &Warehouse{db: db}, nil
}

// Close releases the underlying database handle.
func (w *Warehouse) Close() error {
	return w.db.Close()
}

// Properties returns active property names in registry order.
func (w *Warehouse) Properties() ([]string, error) {
	rows, err := w.db.Query(
		"SELECT property_name FROM properties WHERE is_active = 1 ORDER BY sort_order, property_name",
	)
	if err != nil {
		return nil, fmt.Errorf("loading properties: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("loading properties: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AddProperty registers a property. Re-adding an existing name is a no-op.
func (w *Warehouse) AddProperty(name, propertyType, address string) error {
	if propertyType == "" {
		propertyType = "rental"
	}
	_, err := w.db.Exec(
		`INSERT INTO properties (property_name, property_type, address)
		 VALUES (?, ?, ?) ON CONFLICT(property_name) DO NOTHING`,
		name, propertyType, nullable(address),
	)
	if err != nil {
		return fmt.Errorf("adding property %q: %w", name, err)
	}
	return nil
}

// ReplaceProcessed swaps in the run's income and expense rows and stamps the
// export audit, all in one transaction. Prior rows for the two tables are
// removed first so the tables always reflect exactly one run.
func (w *Warehouse) ReplaceProcessed(runID string, income []model.MappedIncome, expenses []model.CategorizedExpense) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("replacing processed tables: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"processed_income", "processed_expenses"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("replacing %s: %w", table, err)
		}
	}

	incomeStmt, err := tx.Prepare(
		`INSERT INTO processed_income
		 (transaction_id, date, amount, memo, description, payee, property_name, mapping_status, mapping_notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("replacing processed_income: %w", err)
	}
	defer incomeStmt.Close()

	for _, r := range income {
		_, err := incomeStmt.Exec(
			r.ID, r.Date.Format(dateLayout), r.Amount.StringFixed(2),
			r.Memo, r.Description, r.Payee,
			nullable(r.PropertyName), string(r.MappingStatus), nullable(r.MappingNotes),
		)
		if err != nil {
			return fmt.Errorf("replacing processed_income row %s: %w", r.ID, err)
		}
	}

	expenseStmt, err := tx.Prepare(
		`INSERT INTO processed_expenses
		 (transaction_id, date, amount, memo, description, payee, category, confidence, match_reason, category_status, property_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("replacing processed_expenses: %w", err)
	}
	defer expenseStmt.Close()

	for _, e := range expenses {
		_, err := expenseStmt.Exec(
			e.ID, e.Date.Format(dateLayout), e.Amount.StringFixed(2),
			e.Memo, e.Description, e.Payee,
			e.Category, e.Confidence, e.MatchReason,
			string(e.CategoryStatus), nullable(e.PropertyName),
		)
		if err != nil {
			return fmt.Errorf("replacing processed_expenses row %s: %w", e.ID, err)
		}
	}

	if _, err := tx.Exec(
		"DELETE FROM export_audit WHERE table_name IN (?, ?)",
		"processed_income", "processed_expenses",
	); err != nil {
		return fmt.Errorf("stamping export audit: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for table, count := range map[string]int{
		"processed_income":   len(income),
		"processed_expenses": len(expenses),
	} {
		if _, err := tx.Exec(
			"INSERT INTO export_audit (run_id, table_name, row_count, exported_at) VALUES (?, ?, ?, ?)",
			runID, table, count, now,
		); err != nil {
			return fmt.Errorf("stamping export audit: %w", err)
		}
	}

	return tx.Commit()
}

// ExportRecord is one export audit row.
type ExportRecord struct {
	RunID      string
	TableName  string
	RowCount   int
	ExportedAt time.Time
}

// ExportAudit returns the current audit rows, newest first.
func (w *Warehouse) ExportAudit() ([]ExportRecord, error) {
	rows, err := w.db.Query(
		"SELECT run_id, table_name, row_count, exported_at FROM export_audit ORDER BY id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("loading export audit: %w", err)
	}
	defer rows.Close()

	var result []ExportRecord
	for rows.Next() {
		var (
			r          ExportRecord
			exportedAt string
		)
		if err := rows.Scan(&r.RunID, &r.TableName, &r.RowCount, &exportedAt); err != nil {
			return nil, fmt.Errorf("loading export audit: %w", err)
		}
		r.ExportedAt = parseTimestamp(exportedAt)
		result = append(result, r)
	}
	return result, rows.Err()
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
