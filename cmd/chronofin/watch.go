package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/chronofin/chronofin/internal/autoconfirm"
	"github.com/chronofin/chronofin/internal/clock"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the auto-confirmation scheduler until interrupted",
		Long: `Run the auto-confirmation scheduler against the live store. Every
pre-approved pending transaction gets exactly one timer armed for its
due instant; a periodic resume sweep compensates for timers that could
not fire while the process was suspended.`,
		RunE: runWatch,
	}

	cmd.Flags().Duration("resume-interval", 5*time.Minute, "how often to run the past-due compensation sweep")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	resumeInterval, _ := cmd.Flags().GetDuration("resume-interval")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	scheduler := autoconfirm.New(store, clock.NewTimestampWatcher())
	unsub := scheduler.OnConfirmed(func(id string) {
		slog.Info("Confirmed", "id", id)
	})
	defer unsub()

	scheduler.Start(ctx)
	defer scheduler.Stop()

	ticker := time.NewTicker(resumeInterval)
	defer ticker.Stop()

	slog.Info("Watching for due transactions", "resume_interval", resumeInterval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			scheduler.Resume(ctx)
		}
	}
}
