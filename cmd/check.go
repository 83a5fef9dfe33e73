package cmd

import (
	"context"
	"fmt"
	"time"

	"auto-post/domain/repository"
	"auto-post/infrastructure/clients/googledrive"
	"auto-post/infrastructure/clients/instagram"
	"auto-post/infrastructure/storage"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration, ledger connectivity and token health",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		failed := 0
		report := func(name string, err error) {
			if err != nil {
				failed++
				fmt.Printf("NG %-16s %v\n", name, err)
				return
			}
			fmt.Printf("OK %s\n", name)
		}

		report("database", a.db.PingContext(ctx))

		items, err := a.ledger.ListDue(ctx, time.Now())
		report("ledger", err)
		if err == nil {
			fmt.Printf("   %d items due today\n", len(items))
		}

		if a.cfg.Drive.FolderID == "" {
			report("drive", fmt.Errorf("GOOGLE_DRIVE_FOLDER_ID not set"))
		} else {
			assets, err := googledrive.NewClient(ctx, a.cfg.Drive.CredentialsPath, a.log)
			if err == nil {
				_, err = assets.ListAssetRefs(ctx, a.cfg.Drive.FolderID)
			}
			report("drive", err)
		}

		if a.cfg.Instagram.AccessToken == "" {
			report("token", fmt.Errorf("INSTAGRAM_ACCESS_TOKEN not set"))
		} else {
			igClient := instagram.NewClient(a.cfg.Instagram, a.log)
			expiry, err := igClient.Introspect(ctx, a.tokens.GetValidToken(ctx))
			report("token", err)
			switch {
			case err != nil:
			case expiry == nil:
				fmt.Println("   expiry unknown")
			case expiry.IsZero():
				fmt.Println("   token never expires")
			default:
				fmt.Printf("   expires %s (%.1f days)\n",
					expiry.Format("2006-01-02"), time.Until(*expiry).Hours()/24)
			}
		}

		if a.cfg.Staging.Bucket == "" {
			report("staging", fmt.Errorf("STAGING_BUCKET not set"))
		} else {
			staging, err := storage.NewStagingStore(ctx, a.cfg.Drive.CredentialsPath, a.cfg.Staging.Bucket, a.log)
			if err == nil {
				err = probeStaging(ctx, staging)
			}
			report("staging", err)
		}

		if failed > 0 {
			return fmt.Errorf("%d checks failed", failed)
		}
		return nil
	},
}

// probeStaging round-trips a tiny object through the bucket so the check
// reports real connectivity, not just configuration presence.
func probeStaging(ctx context.Context, staging repository.IStagingStore) error {
	key, _, err := staging.Put(ctx, []byte("ok"), "healthcheck.txt", "text/plain")
	if err != nil {
		return err
	}
	return staging.Delete(ctx, key)
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
