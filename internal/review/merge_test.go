package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rentroll-dev/rentroll/internal/model"
)

func income(id, property string, status model.MappingStatus) model.MappedIncome {
	m := model.MappedIncome{PropertyName: property, MappingStatus: status}
	m.ID = id
	return m
}

func expense(id, cat string, status model.CategoryStatus) model.CategorizedExpense {
	e := model.CategorizedExpense{Category: cat, CategoryStatus: status}
	e.ID = id
	return e
}

func TestMergeIncome(t *testing.T) {
	rows := []model.MappedIncome{
		income("a", "41 26th St", model.StatusMapped),
		income("b", "", model.StatusMappingMissing),
	}
	overrides := []model.IncomeOverride{
		{TransactionID: "b", PropertyName: "966 Kinsbury Court", MappingNotes: "confirmed by tenant"},
	}

	merged := MergeIncome(rows, overrides)

	assert.Equal(t, model.StatusMapped, merged[0].MappingStatus)
	assert.Equal(t, "966 Kinsbury Court", merged[1].PropertyName)
	assert.Equal(t, "confirmed by tenant", merged[1].MappingNotes)
	assert.Equal(t, model.StatusOverridden, merged[1].MappingStatus)

	// Input untouched.
	assert.Equal(t, model.StatusMappingMissing, rows[1].MappingStatus)
}

func TestMergeIncomeOverrideBeatsMapping(t *testing.T) {
	// An override wins even when the pipeline already mapped the row.
	rows := []model.MappedIncome{income("a", "41 26th St", model.StatusMapped)}
	overrides := []model.IncomeOverride{{TransactionID: "a", PropertyName: "118 W Shields St"}}

	merged := MergeIncome(rows, overrides)
	assert.Equal(t, "118 W Shields St", merged[0].PropertyName)
	assert.Equal(t, model.StatusOverridden, merged[0].MappingStatus)
}

func TestMergeExpenses(t *testing.T) {
	rows := []model.CategorizedExpense{
		expense("a", "other", model.CategoryOriginal),
		expense("b", "utilities", model.CategoryOriginal),
	}
	rows[1].PropertyName = "41 26th St"

	overrides := []model.ExpenseOverride{
		{TransactionID: "a", Category: "repairs", PropertyName: "118 W Shields St"},
		{TransactionID: "b", Category: "insurance"},
	}

	merged := MergeExpenses(rows, overrides)

	assert.Equal(t, "repairs", merged[0].Category)
	assert.Equal(t, "118 W Shields St", merged[0].PropertyName)
	assert.Equal(t, model.CategoryOverridden, merged[0].CategoryStatus)

	// Empty override property leaves the pipeline value alone.
	assert.Equal(t, "insurance", merged[1].Category)
	assert.Equal(t, "41 26th St", merged[1].PropertyName)
	assert.Equal(t, model.CategoryOverridden, merged[1].CategoryStatus)
}

func TestMergeNoOverrides(t *testing.T) {
	rows := []model.MappedIncome{income("a", "41 26th St", model.StatusMapped)}
	assert.Equal(t, rows, MergeIncome(rows, nil))

	exp := []model.CategorizedExpense{expense("a", "other", model.CategoryOriginal)}
	assert.Equal(t, exp, MergeExpenses(exp, nil))
}

func TestPropertyOptions(t *testing.T) {
	rows := []model.MappedIncome{
		income("a", "41 26th St", model.StatusMapped),
		income("b", "41 26th St", model.StatusMapped),
		income("c", "", model.StatusMappingMissing),
		income("d", model.UnassignedSentinel, model.StatusManualReview),
	}

	options := PropertyOptions(rows, "Lust Rentals LLC")
	assert.Equal(t, []string{"41 26th St", "Lust Rentals LLC"}, options)
}

func TestCategoryOptions(t *testing.T) {
	rows := []model.CategorizedExpense{
		expense("a", "repairs", model.CategoryOriginal),
		expense("b", "one_off_custom", model.CategoryOverridden),
	}

	options := CategoryOptions(rows)
	assert.Contains(t, options, "repairs")
	assert.Contains(t, options, "one_off_custom")
	assert.Contains(t, options, "utilities")
	assert.IsIncreasing(t, options)
}
