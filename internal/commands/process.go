package commands

import (
	"github.com/spf13/cobra"

	"github.com/rentroll-dev/rentroll/internal/logger"
	"github.com/rentroll-dev/rentroll/internal/pipeline"
)

func newProcessCommand() *cobra.Command {
	var (
		year        int
		file        string
		mappingFile string
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a bank export into income and expense datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			p := pipeline.New(cfg.DataDir, logger.New(cfg.LogLevel))
			result, err := p.Run(pipeline.Options{
				InputFile:   file,
				MappingFile: mappingFile,
				Year:        year,
			})
			if err != nil {
				return err
			}

			printRunReport(cmd, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "keep only transactions from this year")
	cmd.Flags().StringVar(&file, "file", "", "bank export path (default: search data/raw)")
	cmd.Flags().StringVar(&mappingFile, "mapping", "", "deposit mapping path (default: search data/raw)")

	return cmd
}

func printRunReport(cmd *cobra.Command, r pipeline.Result) {
	cmd.Printf("Run %s\n", r.RunID)
	cmd.Printf("  transactions: %d\n", r.Transactions)
	cmd.Printf("  income:       %d\n", r.Income)
	cmd.Printf("  expenses:     %d\n", r.Expenses)
	if r.Unresolved > 0 {
		cmd.Printf("  unresolved:   %d (see unresolved_bank_transactions.csv)\n", r.Unresolved)
	}
	if !r.MappingEnabled {
		cmd.Println("  deposit mapping disabled: no mapping file found")
	}
	if r.IncomeReview > 0 {
		cmd.Printf("  income rows needing review:  %d (see income_mapping_review.csv)\n", r.IncomeReview)
	}
	if r.ExpenseReview > 0 {
		cmd.Printf("  expense rows needing review: %d (see expense_category_review.csv)\n", r.ExpenseReview)
	}
	if r.Validation.Warnings > 0 || r.Validation.Errors > 0 {
		cmd.Printf("  validation: %s\n", r.Validation.Recommendation())
	}
}
