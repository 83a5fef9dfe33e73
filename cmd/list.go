package cmd

import (
	"fmt"
	"strings"

	"auto-post/domain/model"

	"github.com/spf13/cobra"
)

var (
	listStudent  string
	listUnposted bool
)

var listWorksCmd = &cobra.Command{
	Use:   "list-works",
	Short: "List ledger work items",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.ledger.List(ctx, model.WorkItemFilter{
			StudentName:  listStudent,
			OnlyUnposted: listUnposted,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%-12s %-20s %-12s %-8s %-4s %-4s %s\n",
			"ID", "WORK", "SCHEDULED", "IMAGES", "IG", "X", "STUDENT")
		for _, item := range items {
			scheduled := "-"
			if item.ScheduledDate != nil {
				scheduled = item.ScheduledDate.Format("2006-01-02")
			}
			student := "-"
			if item.StudentName != nil {
				student = *item.StudentName
			}
			fmt.Printf("%-12s %-20s %-12s %-8d %-4s %-4s %s\n",
				item.ID, item.WorkName, scheduled, item.ImageCount,
				mark(item.IGPosted), mark(item.XPosted), student)
			if item.ErrorLog != nil && *item.ErrorLog != "" {
				lines := strings.Split(*item.ErrorLog, "\n")
				fmt.Printf("  last error: %s\n", lines[len(lines)-1])
			}
		}
		fmt.Printf("%d items\n", len(items))
		return nil
	},
}

func mark(posted bool) string {
	if posted {
		return "ok"
	}
	return "-"
}

func init() {
	listWorksCmd.Flags().StringVar(&listStudent, "student", "", "filter by student name")
	listWorksCmd.Flags().BoolVar(&listUnposted, "unposted", false, "only items not yet posted everywhere")
	rootCmd.AddCommand(listWorksCmd)
}
