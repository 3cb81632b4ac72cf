package commands

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rentroll-dev/rentroll/internal/category"
	"github.com/rentroll-dev/rentroll/internal/model"
	"github.com/rentroll-dev/rentroll/internal/pipeline"
	"github.com/rentroll-dev/rentroll/internal/rules"
)

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
	}

	cmd.AddCommand(newRulesListCommand())
	cmd.AddCommand(newRulesAddCommand())
	cmd.AddCommand(newRulesDeleteCommand())

	return cmd
}

func openRuleStore(cmd *cobra.Command) (*rules.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return rules.Open(pipeline.New(cfg.DataDir, nil).RulesDBPath())
}

func newRulesListCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openRuleStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(!all)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				cmd.Println("no rules defined")
				return nil
			}

			for _, r := range list {
				state := "active"
				if !r.IsActive {
					state = "inactive"
				}
				actions := make([]string, len(r.Actions))
				for i, a := range r.Actions {
					actions[i] = string(a.Type) + "=" + a.Value
				}
				cmd.Printf("%4d  p%-3d %-8s %s %s %q -> %s  (%s)\n",
					r.ID, r.Priority, state, r.Field, r.MatchType, r.Value,
					strings.Join(actions, ", "), r.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include inactive rules")

	return cmd
}

func newRulesAddCommand() *cobra.Command {
	var (
		name        string
		field       string
		matchType   string
		value       string
		setCategory string
		setProperty string
		priority    int
		inactive    bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a categorization rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var actions []model.Action
			if setCategory != "" {
				actions = append(actions, model.Action{
					Type:  model.ActionSetCategory,
					Value: category.Normalize(setCategory),
				})
			}
			if setProperty != "" {
				actions = append(actions, model.Action{
					Type:  model.ActionSetProperty,
					Value: setProperty,
				})
			}
			if len(actions) == 0 {
				return errors.New("at least one of --category or --property is required")
			}

			store, err := openRuleStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := store.Add(model.Rule{
				Name:      name,
				Field:     model.RuleField(field),
				MatchType: model.MatchType(matchType),
				Value:     value,
				Actions:   actions,
				Priority:  priority,
				IsActive:  !inactive,
			})
			if err != nil {
				return err
			}

			cmd.Printf("Added rule %d: %s\n", r.ID, r.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "rule name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&field, "field", "description", "field to match: description, memo, or amount")
	cmd.Flags().StringVar(&matchType, "match", "contains", "match type: contains, starts_with, equals, or regex")
	cmd.Flags().StringVar(&value, "value", "", "criteria value (required)")
	_ = cmd.MarkFlagRequired("value")
	cmd.Flags().StringVar(&setCategory, "category", "", "category to assign on match")
	cmd.Flags().StringVar(&setProperty, "property", "", "property to assign on match")
	cmd.Flags().IntVar(&priority, "priority", 0, "evaluation priority, higher first")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the rule disabled")

	return cmd
}

func newRulesDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.New("rule id must be an integer")
			}

			store, err := openRuleStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(id); err != nil {
				return err
			}
			cmd.Printf("Deleted rule %d\n", id)
			return nil
		},
	}

	return cmd
}
