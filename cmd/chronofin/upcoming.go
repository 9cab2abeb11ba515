package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chronofin/chronofin/internal/aggregate"
	"github.com/chronofin/chronofin/internal/cli"
	"github.com/chronofin/chronofin/internal/clock"
	"github.com/chronofin/chronofin/internal/service"
)

func upcomingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upcoming",
		Short: "Show effectively-pending transactions",
		Long: `Show transactions that are still pending or dated in the future,
regardless of the stored pending flag.`,
		RunE: runUpcoming,
	}
}

func runUpcoming(cmd *cobra.Command, _ []string) error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	rows, err := store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("failed to query transactions: %w", err)
	}

	minute := clock.NewMinuteTicker().Current()
	upcoming, _ := aggregate.SplitUpcoming(rows, minute)

	if len(upcoming) == 0 {
		fmt.Println(cli.SubtleStyle.Render("Nothing upcoming."))
		return nil
	}

	fmt.Println(cli.SectionTitleStyle.Render("Upcoming"))
	for _, txn := range upcoming {
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
	return nil
}
