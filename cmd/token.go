package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refreshTokenCmd = &cobra.Command{
	Use:   "refresh-token",
	Short: "Exchange the Instagram token for a fresh long-lived one now",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.tokens.ForceRefresh(ctx)
		if err != nil {
			return err
		}
		if rec.ExpiresAt != nil {
			if days, ok := rec.RemainingDays(rec.UpdatedAt); ok {
				fmt.Printf("token refreshed, expires %s (%.0f days)\n",
					rec.ExpiresAt.Format("2006-01-02"), days)
				return nil
			}
		}
		fmt.Println("token refreshed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshTokenCmd)
}
