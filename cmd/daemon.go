package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var daemonRunAt string

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the daily publication on a schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(interrupt)

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.wirePosting(ctx); err != nil {
			return err
		}

		runAt := a.cfg.Posting.DailyRunAt
		if daemonRunAt != "" {
			runAt = daemonRunAt
		}
		schedule, err := time.Parse("15:04", runAt)
		if err != nil {
			return fmt.Errorf("invalid run time %q, want HH:MM", runAt)
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			select {
			case sig := <-interrupt:
				a.log.WithField("signal", sig.String()).Info("Shutting down")
				cancel()
				return nil
			case <-ctx.Done():
				return nil
			}
		})

		g.Go(func() error {
			for {
				next := nextRun(time.Now(), schedule.Hour(), schedule.Minute())
				a.log.WithField("at", next.Format(time.RFC3339)).Info("Next run scheduled")

				timer := time.NewTimer(time.Until(next))
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil
				case <-timer.C:
				}

				stats := a.posts.RunDailyPost(ctx, next)
				if stats.Errors > 0 {
					a.log.WithField("errors", stats.Errors).Warn("Run finished with errors")
				}
			}
		})

		return g.Wait()
	},
}

// nextRun returns the next occurrence of hour:minute strictly after now.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func init() {
	daemonCmd.Flags().StringVar(&daemonRunAt, "at", "", "daily run time as HH:MM (default from config)")
	rootCmd.AddCommand(daemonCmd)
}
