package commands

import (
	"github.com/spf13/cobra"

	"github.com/rentroll-dev/rentroll/internal/category"
	"github.com/rentroll-dev/rentroll/internal/model"
	"github.com/rentroll-dev/rentroll/internal/pipeline"
	"github.com/rentroll-dev/rentroll/internal/review"
)

func newReviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Record manual overrides for reviewed transactions",
		Long: "Record manual overrides for reviewed transactions.\n\n" +
			"Overrides persist across processing runs and always win over\n" +
			"mapping and categorization. Re-run process after recording to\n" +
			"refresh the output files.",
	}

	cmd.AddCommand(newReviewIncomeCommand())
	cmd.AddCommand(newReviewExpenseCommand())
	cmd.AddCommand(newReviewHistoryCommand())

	return cmd
}

func openOverrideStore(cmd *cobra.Command) (*review.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return review.Open(pipeline.New(cfg.DataDir, nil).OverridesDBPath())
}

func newReviewIncomeCommand() *cobra.Command {
	var (
		property string
		notes    string
		by       string
	)

	cmd := &cobra.Command{
		Use:   "income <transaction-id>",
		Short: "Assign an income transaction to a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openOverrideStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			err = store.RecordIncomeOverride(model.IncomeOverride{
				TransactionID: args[0],
				PropertyName:  property,
				MappingNotes:  notes,
				ModifiedBy:    by,
			})
			if err != nil {
				return err
			}
			cmd.Printf("Recorded income override for %s -> %s\n", args[0], property)
			return nil
		},
	}

	cmd.Flags().StringVar(&property, "property", "", "property name (required)")
	_ = cmd.MarkFlagRequired("property")
	cmd.Flags().StringVar(&notes, "notes", "", "mapping notes")
	cmd.Flags().StringVar(&by, "by", "", "who made the change")

	return cmd
}

func newReviewExpenseCommand() *cobra.Command {
	var (
		cat      string
		property string
		by       string
	)

	cmd := &cobra.Command{
		Use:   "expense <transaction-id>",
		Short: "Assign an expense transaction to a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openOverrideStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			err = store.RecordExpenseOverride(model.ExpenseOverride{
				TransactionID: args[0],
				Category:      category.Normalize(cat),
				PropertyName:  property,
				ModifiedBy:    by,
			})
			if err != nil {
				return err
			}
			cmd.Printf("Recorded expense override for %s -> %s\n", args[0], category.Normalize(cat))
			return nil
		},
	}

	cmd.Flags().StringVar(&cat, "category", "", "expense category (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().StringVar(&property, "property", "", "optional property attribution")
	cmd.Flags().StringVar(&by, "by", "", "who made the change")

	return cmd
}

func newReviewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <transaction-id>",
		Short: "Show the override audit trail for a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openOverrideStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			history, err := store.History(args[0])
			if err != nil {
				return err
			}
			if len(history) == 0 {
				cmd.Println("no override history")
				return nil
			}

			for _, e := range history {
				old := e.OldValue
				if e.OldValueNull {
					old = "(none)"
				}
				cmd.Printf("%s  %-7s %-13s %q -> %q  by %s\n",
					e.ModifiedAt.Format("2006-01-02 15:04:05"),
					e.OverrideType, e.FieldName, old, e.NewValue, e.ModifiedBy)
			}
			return nil
		},
	}

	return cmd
}
