package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentroll-dev/rentroll/internal/config"
)

const sampleExport = `Date,Credit Amount,Debit Amount,Memo,Description
2025-01-05,1200.00,,RENT 41 26TH,DEPOSIT
2025-01-10,,85.50,,HOME DEPOT #4521
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// initProject scaffolds a project and returns its config path.
func initProject(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	_, err := run(t, "init", dir, "--name", "Test Rentals")
	require.NoError(t, err)
	return dir, filepath.Join(dir, "rentroll.yaml")
}

func TestInitCreatesStructure(t *testing.T) {
	dir, configPath := initProject(t)

	for _, d := range []string{"raw", "processed", "overrides"} {
		info, err := os.Stat(filepath.Join(dir, "data", d))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "Test Rentals", cfg.Business.Name)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataDir)
}

func TestProcessReportsCounts(t *testing.T) {
	dir, configPath := initProject(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "data", "raw", "transaction_report.csv"),
		[]byte(sampleExport), 0o644))

	out, err := run(t, "process", "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, out, "transactions: 2")
	assert.Contains(t, out, "income:       1")
	assert.Contains(t, out, "expenses:     1")
	assert.Contains(t, out, "deposit mapping disabled")

	_, err = os.Stat(filepath.Join(dir, "data", "processed", "processed_income.csv"))
	assert.NoError(t, err)
}

func TestProcessMissingInputFails(t *testing.T) {
	_, configPath := initProject(t)

	_, err := run(t, "process", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bank transaction report not found")
}

func TestRulesAddListDelete(t *testing.T) {
	_, configPath := initProject(t)

	out, err := run(t, "rules", "add", "--config", configPath,
		"--name", "Depot as supplies",
		"--match", "contains", "--value", "home depot",
		"--category", "Supplies", "--priority", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Added rule 1")

	out, err = run(t, "rules", "list", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Depot as supplies")
	assert.Contains(t, out, "set_category=supplies")

	out, err = run(t, "rules", "delete", "1", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted rule 1")

	out, err = run(t, "rules", "list", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no rules defined")
}

func TestReviewRoundTrip(t *testing.T) {
	_, configPath := initProject(t)

	_, err := run(t, "review", "income", "20250105_00000_income",
		"--config", configPath,
		"--property", "41 26th St", "--by", "alice")
	require.NoError(t, err)

	_, err = run(t, "review", "expense", "20250110_00001_expense",
		"--config", configPath,
		"--category", "Maintance")
	require.NoError(t, err)

	out, err := run(t, "review", "history", "20250105_00000_income", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "property_name")
	assert.Contains(t, out, "41 26th St")
	assert.Contains(t, out, "alice")

	// Misspelled category was normalized before storage.
	out, err = run(t, "review", "history", "20250110_00001_expense", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"maintenance"`)
}
