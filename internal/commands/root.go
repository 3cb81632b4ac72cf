// Package commands wires the rentroll CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rentroll-dev/rentroll/internal/buildinfo"
	"github.com/rentroll-dev/rentroll/internal/config"
)

const defaultBusinessName = "Lust Rentals LLC"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "rentroll",
		Short:   "Rental property bookkeeping from bank exports",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "rentroll.yaml", "path to rentroll.yaml")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newReviewCommand())

	return rootCmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.LoadOrDefault(path, defaultBusinessName)
}
