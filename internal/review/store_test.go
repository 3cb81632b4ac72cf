package review

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentroll-dev/rentroll/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "overrides.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordIncomeOverrideRoundTrip(t *testing.T) {
	s := openTestStore(t)

	err := s.RecordIncomeOverride(model.IncomeOverride{
		TransactionID: "20250105_00012_income",
		PropertyName:  "41 26th St",
		MappingNotes:  "tenant switched banks",
		ModifiedBy:    "alice",
	})
	require.NoError(t, err)

	overrides, err := s.IncomeOverrides()
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, "20250105_00012_income", overrides[0].TransactionID)
	assert.Equal(t, "41 26th St", overrides[0].PropertyName)
	assert.Equal(t, "tenant switched banks", overrides[0].MappingNotes)
	assert.Equal(t, "alice", overrides[0].ModifiedBy)
	assert.False(t, overrides[0].CreatedAt.IsZero())
}

func TestRecordIncomeOverrideUpsert(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RecordIncomeOverride(model.IncomeOverride{
		TransactionID: "20250105_00001_income",
		PropertyName:  "41 26th St",
	}))
	require.NoError(t, s.RecordIncomeOverride(model.IncomeOverride{
		TransactionID: "20250105_00001_income",
		PropertyName:  "966 Kinsbury Court",
	}))

	overrides, err := s.IncomeOverrides()
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, "966 Kinsbury Court", overrides[0].PropertyName)
}

func TestCreationAuditsNullOldValue(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RecordIncomeOverride(model.IncomeOverride{
		TransactionID: "20250105_00001_income",
		PropertyName:  "41 26th St",
		ModifiedBy:    "alice",
	}))

	history, err := s.History("20250105_00001_income")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.OverrideIncome, history[0].OverrideType)
	assert.Equal(t, "property_name", history[0].FieldName)
	assert.True(t, history[0].OldValueNull)
	assert.Equal(t, "41 26th St", history[0].NewValue)
	assert.Equal(t, "alice", history[0].ModifiedBy)
	assert.False(t, history[0].ModifiedAt.IsZero())
}

func TestUpdateAuditsOneRowPerChangedField(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RecordIncomeOverride(model.IncomeOverride{
		TransactionID: "20250105_00001_income",
		PropertyName:  "41 26th St",
		MappingNotes:  "first pass",
	}))
	// Both fields change: two audit rows. Then a no-op write: zero rows.
	require.NoError(t, s.RecordIncomeOverride(model.IncomeOverride{
		TransactionID: "20250105_00001_income",
		PropertyName:  "966 Kinsbury Court",
		MappingNotes:  "second pass",
	}))
	require.NoError(t, s.RecordIncomeOverride(model.IncomeOverride{
		TransactionID: "20250105_00001_income",
		PropertyName:  "966 Kinsbury Court",
		MappingNotes:  "second pass",
	}))

	history, err := s.History("20250105_00001_income")
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, "property_name", history[1].FieldName)
	assert.Equal(t, "41 26th St", history[1].OldValue)
	assert.False(t, history[1].OldValueNull)
	assert.Equal(t, "966 Kinsbury Court", history[1].NewValue)

	assert.Equal(t, "mapping_notes", history[2].FieldName)
	assert.Equal(t, "first pass", history[2].OldValue)
	assert.Equal(t, "second pass", history[2].NewValue)
}

func TestRecordExpenseOverride(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RecordExpenseOverride(model.ExpenseOverride{
		TransactionID: "20250110_00004_expense",
		Category:      "repairs",
	}))

	overrides, err := s.ExpenseOverrides()
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, "repairs", overrides[0].Category)
	assert.Empty(t, overrides[0].PropertyName)
	assert.Equal(t, "system", overrides[0].ModifiedBy)

	// Second write attaches a property; category unchanged, so only the
	// property change is audited.
	require.NoError(t, s.RecordExpenseOverride(model.ExpenseOverride{
		TransactionID: "20250110_00004_expense",
		Category:      "repairs",
		PropertyName:  "118 W Shields St",
	}))

	overrides, err = s.ExpenseOverrides()
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, "118 W Shields St", overrides[0].PropertyName)

	history, err := s.History("20250110_00004_expense")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.OverrideExpense, history[1].OverrideType)
	assert.Equal(t, "property_name", history[1].FieldName)
	assert.Equal(t, "118 W Shields St", history[1].NewValue)
}

func TestRecordRequiresFields(t *testing.T) {
	s := openTestStore(t)

	assert.Error(t, s.RecordIncomeOverride(model.IncomeOverride{PropertyName: "41 26th St"}))
	assert.Error(t, s.RecordIncomeOverride(model.IncomeOverride{TransactionID: "x"}))
	assert.Error(t, s.RecordExpenseOverride(model.ExpenseOverride{Category: "repairs"}))
	assert.Error(t, s.RecordExpenseOverride(model.ExpenseOverride{TransactionID: "x"}))
}

func TestDeleteOverride(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RecordIncomeOverride(model.IncomeOverride{
		TransactionID: "20250105_00001_income",
		PropertyName:  "41 26th St",
	}))
	require.NoError(t, s.DeleteIncomeOverride("20250105_00001_income", "alice"))

	overrides, err := s.IncomeOverrides()
	require.NoError(t, err)
	assert.Empty(t, overrides)

	// Deletion is audited; the creation row survives it.
	history, err := s.History("20250105_00001_income")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "41 26th St", history[1].OldValue)
	assert.Empty(t, history[1].NewValue)

	assert.ErrorIs(t, s.DeleteIncomeOverride("20250105_00001_income", "alice"), ErrNotFound)
	assert.ErrorIs(t, s.DeleteExpenseOverride("nope", ""), ErrNotFound)
}
