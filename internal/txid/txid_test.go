package txid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentroll-dev/rentroll/internal/model"
)

func TestFormat(t *testing.T) {
	d := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "20250105_00000_income", Format(d, 0, model.KindIncome))
	assert.Equal(t, "20250105_00012_expense", Format(d, 12, model.KindExpense))
	assert.Equal(t, "20250105_99999_neutral", Format(d, 99999, model.KindNeutral))
}

func TestParseRoundTrip(t *testing.T) {
	d := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	id := Format(d, 42, model.KindMixed)

	date, ordinal, kind, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, d, date)
	assert.Equal(t, 42, ordinal)
	assert.Equal(t, model.KindMixed, kind)
}

func TestParseInvalid(t *testing.T) {
	cases := []string{
		"",
		"20250105",
		"20250105_00001",
		"notadate_00001_income",
		"20250105_abc_income",
		"20250105_00001_deposit",
	}
	for _, id := range cases {
		_, _, _, err := Parse(id)
		assert.Error(t, err, "id %q", id)
	}
}
