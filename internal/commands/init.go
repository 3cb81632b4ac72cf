package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rentroll-dev/rentroll/internal/config"
	"github.com/rentroll-dev/rentroll/internal/pipeline"
)

func newInitCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new rentroll project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", defaultBusinessName, "business name")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name string) error {
	cfg := config.Default(name)
	cfg.DataDir = filepath.Join(dir, "data")

	if err := pipeline.New(cfg.DataDir, nil).EnsureDirs(); err != nil {
		return err
	}

	if err := config.Save(filepath.Join(dir, "rentroll.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	cmd.Printf("Initialized rentroll project at %s\n", dir)
	cmd.Printf("Place bank exports in %s\n", filepath.Join(cfg.DataDir, "raw"))
	return nil
}
