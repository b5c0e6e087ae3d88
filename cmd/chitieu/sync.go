package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phamvy/chitieu/internal/cli"
	"github.com/phamvy/chitieu/internal/connectivity"
	"github.com/phamvy/chitieu/internal/model"
	"github.com/phamvy/chitieu/internal/service"
	"github.com/phamvy/chitieu/internal/syncqueue"
)

func syncCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push queued mutations to the backend",
		Long: `Drain the offline mutation queue against the backend, oldest first.
With --watch, keep running and drain whenever connectivity returns.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			remoteStore, err := createRemoteClient()
			if err != nil {
				return err
			}

			if watch {
				return watchSync(ctx, store, remoteStore)
			}
			return drainOnce(ctx, store, remoteStore)
		},
	}

	cmd.AddCommand(syncStatusCmd())
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and sync on connectivity changes")

	return cmd
}

func drainOnce(ctx context.Context, store service.LocalStore, remoteStore service.RemoteStore) error {
	// Entries stranded in-flight by a previous crash drain again.
	if err := store.RequeueInFlight(ctx); err != nil {
		return fmt.Errorf("failed to requeue in-flight entries: %w", err)
	}

	before, err := store.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending entries: %w", err)
	}
	if before == 0 {
		fmt.Println(cli.InfoStyle.Render("Nothing to sync."))
		return nil
	}

	conn := probeRemote(ctx, remoteStore)
	if !conn.Online() {
		return fmt.Errorf("backend unreachable: %d mutation(s) remain queued", before)
	}

	queue := newSyncQueue(store, remoteStore, conn)

	bar := drainProgressBar(before)
	stopPolling := pollProgress(ctx, store, bar, before)
	err = queue.Drain(ctx)
	stopPolling()
	_ = bar.Finish()

	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	remaining, countErr := store.PendingCount(ctx)
	if countErr != nil {
		return countErr
	}
	if remaining > 0 {
		fmt.Println(cli.WarningStyle.Render(fmt.Sprintf(
			"%d mutation(s) could not be applied and remain queued.", remaining)))
		return nil
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Synced %d mutation(s)", before)))
	return nil
}

// watchSync runs the background drain loop until interrupted, reporting
// queue state transitions as they happen.
func watchSync(ctx context.Context, store service.LocalStore, remoteStore service.RemoteStore) error {
	interval := viper.GetDuration("remote.probe_interval")
	monitor := connectivity.NewMonitor(remoteStore.Health, interval)
	go monitor.Run(ctx)

	queue := newSyncQueue(store, remoteStore, monitor)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case state := <-queue.Events():
				switch state {
				case syncqueue.StateSyncing:
					fmt.Println(cli.InfoStyle.Render("Syncing..."))
				case syncqueue.StateSynced:
					fmt.Println(cli.SuccessStyle.Render("✓ All changes synced"))
				case syncqueue.StateIdle:
				}
			}
		}
	}()

	fmt.Println(cli.InfoStyle.Render("Watching for changes. Ctrl-C to stop."))
	queue.Run(ctx)
	return nil
}

func syncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pending mutations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.PendingEntries(ctx)
			if err != nil {
				return fmt.Errorf("failed to read queue: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println(cli.SuccessStyle.Render("✓ Queue empty, everything synced."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d pending mutation(s)", len(entries))))
			for _, entry := range entries {
				desc := entry.Expense.Description
				if entry.Op == model.OpDelete {
					desc = cli.SubtleStyle.Render("(delete)")
				}
				fmt.Printf("  #%d  %-6s  %s  %s\n",
					entry.Seq, entry.Op, entry.ExpenseID, desc)
			}
			return nil
		},
	}
}

func drainProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Syncing mutations...[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

// pollProgress advances the bar as the queue shrinks. The drain is a single
// call, so progress comes from watching the pending count.
func pollProgress(ctx context.Context, store service.LocalStore, bar *progressbar.ProgressBar, before int) func() {
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				current, err := store.PendingCount(ctx)
				if err != nil {
					continue
				}
				_ = bar.Set(before - current)
			}
		}
	}()
	return func() {
		close(done)
		<-stopped
	}
}
