package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chronofin/chronofin/internal/autoconfirm"
	"github.com/chronofin/chronofin/internal/cli"
	"github.com/chronofin/chronofin/internal/clock"
	"github.com/chronofin/chronofin/internal/common"
	"github.com/chronofin/chronofin/internal/service"
)

func confirmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confirm [id]",
		Short: "Confirm a pending transaction, or sweep all past-due ones",
		Long: `Confirm a single pending transaction by id, or with --past-due run
the same sweep the scheduler performs on resume: every pre-approved
pending transaction whose due instant has passed is confirmed
immediately.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfirm,
	}

	cmd.Flags().Bool("past-due", false, "confirm all past-due pre-approved transactions")
	cmd.Flags().Bool("update-date", false, "bump the transaction date to now on confirmation")

	return cmd
}

func runConfirm(cmd *cobra.Command, args []string) error {
	pastDue, _ := cmd.Flags().GetBool("past-due")
	if !pastDue && len(args) == 0 {
		return common.NewUserError("provide a transaction id or --past-due", nil)
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

	if pastDue {
		scheduler := autoconfirm.New(store, clock.NewTimestampWatcher())
		confirmed := 0
		unsub := scheduler.OnConfirmed(func(string) { confirmed++ })
		defer unsub()

		rows, err := store.GetPendingTransactions(ctx)
		if err != nil {
			return fmt.Errorf("failed to load pending transactions: %w", err)
		}
		scheduler.ConfirmPastDue(ctx, rows)

		fmt.Printf("%s %d past-due transaction(s)\n", cli.SuccessStyle.Render("Confirmed"), confirmed)
		return nil
	}

	updateDate, _ := cmd.Flags().GetBool("update-date")
	id := args[0]
	if err := store.ConfirmTransaction(ctx, id, service.ConfirmOptions{
		UpdateTransactionDate: updateDate,
	}); err != nil {
		return fmt.Errorf("failed to confirm %s: %w", id, err)
	}

	fmt.Println(cli.SuccessStyle.Render("Confirmed ") + id)
	return nil
}
