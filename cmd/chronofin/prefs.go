package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chronofin/chronofin/internal/cli"
	"github.com/chronofin/chronofin/internal/service"
)

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
	}

	cmd.AddCommand(prefsShowCmd())
	cmd.AddCommand(prefsSetCmd())

	return cmd
}

func prefsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective preferences",
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

			prefs, err := store.GetPreferences(ctx)
			if err != nil {
				return fmt.Errorf("failed to read preferences: %w", err)
			}

			fmt.Printf("%s %v\n", cli.SubtleStyle.Render(service.PrefRequireConfirmation), prefs.RequireConfirmation)
			fmt.Printf("%s %v\n", cli.SubtleStyle.Render(service.PrefUpdateDateOnConfirm), prefs.UpdateDateOnConfirm)
			fmt.Printf("%s %s\n", cli.SubtleStyle.Render(service.PrefTransferLayout), prefs.TransferLayout)
			fmt.Printf("%s %s\n", cli.SubtleStyle.Render(service.PrefGroupBy), prefs.GroupBy)
			fmt.Printf("%s %v\n", cli.SubtleStyle.Render(service.PrefIncludeTransfersInTotals), prefs.IncludeTransfersInTotals)
			return nil
		},
	}
}

func prefsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			if err := store.SetPreference(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to set preference: %w", err)
			}

			fmt.Printf("%s %s = %s\n", cli.SuccessStyle.Render("Set"), args[0], args[1])
			return nil
		},
	}
}
