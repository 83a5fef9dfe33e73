package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var postDate string

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Run the daily publication for all due work items",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		date := time.Now()
		if postDate != "" {
			parsed, err := time.Parse("2006-01-02", postDate)
			if err != nil {
				return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", postDate)
			}
			date = parsed
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.wirePosting(ctx); err != nil {
			return err
		}

		stats := a.posts.RunDailyPost(ctx, date)
		fmt.Printf("processed: %d, instagram: %d, x: %d, errors: %d\n",
			stats.Processed, stats.InstagramSuccess, stats.XSuccess, stats.Errors)
		if stats.Errors > 0 {
			return fmt.Errorf("run completed with %d errors", stats.Errors)
		}
		return nil
	},
}

func init() {
	postCmd.Flags().StringVar(&postDate, "date", "", "publication date as YYYY-MM-DD (default: today)")
	rootCmd.AddCommand(postCmd)
}
