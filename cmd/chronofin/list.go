package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chronofin/chronofin/internal/aggregate"
	"github.com/chronofin/chronofin/internal/cli"
	"github.com/chronofin/chronofin/internal/clock"
	"github.com/chronofin/chronofin/internal/model"
	"github.com/chronofin/chronofin/internal/service"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions grouped into time sections",
		Long: `List settled transactions as time-bucketed sections with
per-currency totals. Grouping, transfer layout, and filters compose:
the storage query applies the structural filters, then the sections are
built from its result set.`,
		RunE: runList,
	}

	cmd.Flags().String("group-by", "", "bucket granularity (hour, day, week, month, year, allTime; default from preferences)")
	cmd.Flags().String("layout", "", "transfer layout (combine, separate; default from preferences)")
	cmd.Flags().String("from", "", "start date")
	cmd.Flags().String("to", "", "end date")
	cmd.Flags().StringSlice("accounts", nil, "filter by account ids")
	cmd.Flags().StringSlice("categories", nil, "filter by category ids")
	cmd.Flags().StringSlice("tags", nil, "filter by tags")
	cmd.Flags().StringSlice("types", nil, "filter by transaction types")
	cmd.Flags().String("search", "", "search text")
	cmd.Flags().String("match", "contains", "search match mode (contains, exact, prefix)")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	prefs, err := store.GetPreferences(ctx)
	if err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	groupBy := prefs.GroupBy
	if s, _ := cmd.Flags().GetString("group-by"); s != "" {
		if groupBy, err = model.ParseGroupBy(s); err != nil {
			return err
		}
	}
	layout := prefs.TransferLayout
	if s, _ := cmd.Flags().GetString("layout"); s != "" {
		if layout, err = model.ParseTransferLayout(s); err != nil {
			return err
		}
	}

	filter, err := buildFilter(cmd)
	if err != nil {
		return err
	}

	rows, err := store.GetTransactions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to query transactions: %w", err)
	}

	// Render time derives from the minute ticker bucket, not a direct
	// clock read, so repeated renders within a minute agree.
	ticker := clock.NewMinuteTicker()
	minute := ticker.Current()
	now := time.Unix(minute*60, 0)

	_, settled := aggregate.SplitUpcoming(rows, minute)
	settled = aggregate.ApplyTransferLayout(settled, layout)
	sections := aggregate.BuildSectionsWithTotals(settled, groupBy, now,
		aggregate.TotalsOptions{IncludeTransfers: prefs.IncludeTransfersInTotals})

	printSections(sections)
	return nil
}

func printSections(sections []model.TransactionSection) {
	for _, section := range sections {
		fmt.Println(cli.SectionTitleStyle.Render(section.Title))
		for currency, total := range section.Totals {
			fmt.Println(cli.TotalStyle.Render("  total ") + cli.RenderAmount(total, currency))
		}
		for _, txn := range section.Data {
			marker := " "
			if txn.Pending {
				marker = cli.PendingStyle.Render("~")
			}
			fmt.Printf("  %s %s  %s  %s\n",
				marker,
				cli.SubtleStyle.Render(txn.Date.Format("2006-01-02 15:04")),
				txn.Name,
				cli.RenderAmount(displayAmount(txn), txn.Currency))
		}
		fmt.Println()
	}
}

func buildFilter(cmd *cobra.Command) (service.TransactionFilter, error) {
	var filter service.TransactionFilter

	if s, _ := cmd.Flags().GetString("from"); s != "" {
		from, err := parseDate(s)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &from
	}
	if s, _ := cmd.Flags().GetString("to"); s != "" {
		to, err := parseDate(s)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &to
	}

	filter.AccountIDs, _ = cmd.Flags().GetStringSlice("accounts")
	filter.CategoryIDs, _ = cmd.Flags().GetStringSlice("categories")
	filter.Tags, _ = cmd.Flags().GetStringSlice("tags")

	typeStrs, _ := cmd.Flags().GetStringSlice("types")
	for _, s := range typeStrs {
		txnType, err := model.ParseTransactionType(s)
		if err != nil {
			return filter, err
		}
		filter.Types = append(filter.Types, txnType)
	}

	filter.Search, _ = cmd.Flags().GetString("search")
	if s, _ := cmd.Flags().GetString("match"); s != "" {
		filter.SearchMode = service.SearchMatchMode(s)
	}

	return filter, nil
}
