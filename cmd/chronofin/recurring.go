package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chronofin/chronofin/internal/cli"
	"github.com/chronofin/chronofin/internal/model"
	"github.com/chronofin/chronofin/internal/recurrence"
	"github.com/chronofin/chronofin/internal/service"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurrence rules",
	}

	cmd.AddCommand(recurringAddCmd())
	cmd.AddCommand(recurringListCmd())
	cmd.AddCommand(recurringNextCmd())
	cmd.AddCommand(recurringCountCmd())

	return cmd
}

func recurringAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a recurrence rule",
		Long: `Add a recurrence rule. --until and --count are mutually exclusive:
a rule ends either at a date or after a number of occurrences, never
both.`,
		Args: cobra.ExactArgs(1),
		RunE: runRecurringAdd,
	}

	cmd.Flags().String("frequency", "monthly", "frequency (daily, weekly, biweekly, monthly, yearly)")
	cmd.Flags().String("start", "", "start date (default: now)")
	cmd.Flags().String("until", "", "end date")
	cmd.Flags().Int("count", 0, "maximum number of occurrences")

	return cmd
}

func runRecurringAdd(cmd *cobra.Command, args []string) error {
	freqStr, _ := cmd.Flags().GetString("frequency")
	freq, err := model.ParseFrequency(freqStr)
	if err != nil {
		return err
	}

	start := time.Now()
	if s, _ := cmd.Flags().GetString("start"); s != "" {
		if start, err = parseDate(s); err != nil {
			return err
		}
	}

	var endDate *time.Time
	if s, _ := cmd.Flags().GetString("until"); s != "" {
		end, err := parseDate(s)
		if err != nil {
			return err
		}
		endDate = &end
	}
	var count *int
	if c, _ := cmd.Flags().GetInt("count"); c > 0 {
		count = &c
	}

	ruleString, err := recurrence.BuildRRuleString(freq, start, endDate, count)
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	rule := model.RecurringRule{
		ID:         uuid.NewString(),
		Name:       args[0],
		Frequency:  freq,
		StartDate:  start,
		EndDate:    endDate,
		Count:      count,
		RuleString: ruleString,
	}
	if err := store.SaveRecurringRule(ctx, &rule); err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}

	fmt.Printf("%s %s  %s (%s)\n", cli.SuccessStyle.Render("Added"), rule.ID, rule.Name, rule.Frequency)
	return nil
}

func recurringListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recurrence rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			rules, err := store.GetRecurringRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}
			if len(rules) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No recurrence rules."))
				return nil
			}

			for _, rule := range rules {
				bound := "open-ended"
				if rule.EndDate != nil {
					bound = "until " + rule.EndDate.Format("2006-01-02")
				} else if rule.Count != nil {
					bound = fmt.Sprintf("%d occurrence(s)", *rule.Count)
				}
				fmt.Printf("%s  %s  %s from %s, %s\n",
					cli.SubtleStyle.Render(rule.ID),
					cli.BoldStyle.Render(rule.Name),
					rule.Frequency,
					rule.StartDate.Format("2006-01-02"),
					bound)
			}
			return nil
		},
	}
}

func recurringNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next <rule-id>",
		Short: "Show the next occurrence of a rule within a range",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecurringNext,
	}

	cmd.Flags().String("after", "", "anchor instant; occurrences at or before it are skipped (default: now)")
	cmd.Flags().String("from", "", "range start (default: now)")
	cmd.Flags().String("to", "", "range end (default: one year out)")

	return cmd
}

func runRecurringNext(cmd *cobra.Command, args []string) error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	rule, err := store.GetRecurringRule(ctx, args[0])
	if err != nil {
		return err
	}

	now := time.Now()
	anchor := now
	if s, _ := cmd.Flags().GetString("after"); s != "" {
		if anchor, err = parseDate(s); err != nil {
			return err
		}
	}
	rng := service.DateRange{Start: now, End: now.AddDate(1, 0, 0)}
	if s, _ := cmd.Flags().GetString("from"); s != "" {
		if rng.Start, err = parseDate(s); err != nil {
			return err
		}
	}
	if s, _ := cmd.Flags().GetString("to"); s != "" {
		if rng.End, err = parseDate(s); err != nil {
			return err
		}
	}

	next, err := recurrence.NextAbsoluteOccurrence([]string{rule.RuleString}, rng, anchor)
	if err != nil {
		return fmt.Errorf("failed to evaluate rule: %w", err)
	}
	if next == nil {
		fmt.Println(cli.SubtleStyle.Render("No occurrence in range."))
		return nil
	}

	fmt.Println(cli.BoldStyle.Render(next.Format(time.RFC3339)))
	return nil
}

func recurringCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count occurrences of a frequency in a date range",
		RunE:  runRecurringCount,
	}

	cmd.Flags().String("frequency", "monthly", "frequency (daily, weekly, biweekly, monthly, yearly)")
	cmd.Flags().String("from", "", "range start (required)")
	cmd.Flags().String("to", "", "range end (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runRecurringCount(cmd *cobra.Command, _ []string) error {
	freqStr, _ := cmd.Flags().GetString("frequency")
	freq, err := model.ParseFrequency(freqStr)
	if err != nil {
		return err
	}

	fromStr, _ := cmd.Flags().GetString("from")
	from, err := parseDate(fromStr)
	if err != nil {
		return err
	}
	toStr, _ := cmd.Flags().GetString("to")
	to, err := parseDate(toStr)
	if err != nil {
		return err
	}

	count, err := recurrence.CountOccurrencesBetween(from, to, freq)
	if err != nil {
		return err
	}

	fmt.Printf("%d occurrence(s)\n", count)
	return nil
}
