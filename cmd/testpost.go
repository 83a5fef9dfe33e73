package cmd

import (
	"fmt"

	"auto-post/domain/model"

	"github.com/spf13/cobra"
)

var testPostPlatform string

var testPostCmd = &cobra.Command{
	Use:   "test-post <item-id>",
	Short: "Publish a single work item without touching its ledger status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var platforms []model.Platform
		switch testPostPlatform {
		case "instagram":
			platforms = []model.Platform{model.PlatformInstagram}
		case "x":
			platforms = []model.Platform{model.PlatformX}
		case "both":
			platforms = []model.Platform{model.PlatformInstagram, model.PlatformX}
		default:
			return fmt.Errorf("invalid --platform %q, want instagram, x or both", testPostPlatform)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.wirePosting(ctx); err != nil {
			return err
		}

		results, err := a.posts.TestPost(ctx, args[0], platforms)
		for _, res := range results {
			if res.Success {
				fmt.Printf("%s: ok (post id %s)\n", res.Platform, res.PostID)
			} else {
				fmt.Printf("%s: failed (%s)\n", res.Platform, res.Detail)
			}
		}
		return err
	},
}

func init() {
	testPostCmd.Flags().StringVar(&testPostPlatform, "platform", "both", "target platform: instagram, x or both")
	rootCmd.AddCommand(testPostCmd)
}
