package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"

	"auto-post/domain/repository"
	"auto-post/infrastructure/cache"
	"auto-post/infrastructure/clients/googledrive"
	"auto-post/infrastructure/clients/instagram"
	xclient "auto-post/infrastructure/clients/x"
	"auto-post/infrastructure/configuration"
	"auto-post/infrastructure/logger"
	"auto-post/infrastructure/persistence"
	runpubsub "auto-post/infrastructure/pubsub"
	"auto-post/infrastructure/storage"
	"auto-post/usecase"

	gcppubsub "cloud.google.com/go/pubsub"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "auto-post",
	Short:         "Daily publication of photo work items to Instagram and X",
	Long:          "auto-post reads a ledger of photo work items, fetches their images from Google Drive and publishes the items scheduled for the day to Instagram and X, recording the outcome per platform.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the wired dependency graph shared by the subcommands. Posting
// collaborators are attached on demand because the read-only commands don't
// need platform credentials.
type app struct {
	cfg    *configuration.Config
	log    *log.Logger
	db     *sql.DB
	ledger repository.ILedger
	creds  repository.ICredentialStore
	tokens *usecase.TokenUsecase
	posts  usecase.IPostUsecase

	closers []func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := configuration.Load()
	if err != nil {
		return nil, err
	}
	appLog := logger.New(cfg.Logger)

	a := &app{cfg: cfg, log: appLog}

	if err := a.wireStorage(ctx); err != nil {
		a.Close()
		return nil, err
	}

	igClient := instagram.NewClient(cfg.Instagram, appLog)
	a.tokens = usecase.NewTokenUsecase(a.creds, a.credentialCache(ctx), igClient, cfg.Instagram.AccessToken, appLog)
	return a, nil
}

// wireStorage opens the ledger database. SQL Server carries production, any
// other environment runs on PostgreSQL.
func (a *app) wireStorage(_ context.Context) error {
	if os.Getenv("ENV") == "prod" {
		db, err := persistence.NewMSSQLDB(a.cfg.Database.Mssql)
		if err != nil {
			return fmt.Errorf("open mssql: %w", err)
		}
		a.db = db
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := persistence.EnsureLedgerSchemaMSSQL(db); err != nil {
			return err
		}
		if err := persistence.EnsureCredentialSchemaMSSQL(db); err != nil {
			return err
		}
		a.ledger = persistence.NewLedgerRepositoryMSSQL(db, a.cfg.Posting.ErrorLogMaxRunes)
		a.creds = persistence.NewCredentialRepositoryMSSQL(db)
		return nil
	}

	db, err := persistence.NewPostgreSQLDB(a.cfg.Database.Psql)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, func() { _ = db.Close() })
	if err := persistence.EnsureLedgerSchema(db); err != nil {
		return err
	}
	if err := persistence.EnsureCredentialSchema(db); err != nil {
		return err
	}
	a.ledger = persistence.NewLedgerRepository(db, a.cfg.Posting.ErrorLogMaxRunes)
	a.creds = persistence.NewCredentialRepository(db)
	return nil
}

// credentialCache connects to redis when configured. Cache trouble is never
// fatal; the token flow falls back to the database.
func (a *app) credentialCache(ctx context.Context) repository.ICredentialCache {
	if a.cfg.RedisClient.Host == "" {
		return nil
	}
	addr := net.JoinHostPort(a.cfg.RedisClient.Host, a.cfg.RedisClient.Port)
	client, err := cache.NewRedisClient(ctx, addr, a.cfg.RedisClient.Username, a.cfg.RedisClient.Password)
	if err != nil {
		a.log.WithField("error", err).Warn("Redis unavailable, credential cache disabled")
		return nil
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	return cache.NewCredentialCache(client)
}

// wirePosting attaches everything a publish run needs: media source, staging
// bucket, both platform publishers and the optional run notifier.
func (a *app) wirePosting(ctx context.Context) error {
	if a.posts != nil {
		return nil
	}

	assets, err := googledrive.NewClient(ctx, a.cfg.Drive.CredentialsPath, a.log)
	if err != nil {
		return err
	}
	media := usecase.NewMediaUsecase(assets, a.log)

	staging, err := storage.NewStagingStore(ctx, a.cfg.Drive.CredentialsPath, a.cfg.Staging.Bucket, a.log)
	if err != nil {
		return err
	}

	mediaDelay := a.cfg.Posting.MediaDelay()
	igPublisher := instagram.NewPublisher(
		instagram.NewClient(a.cfg.Instagram, a.log),
		staging,
		a.tokens,
		mediaDelay,
		a.log,
	)
	xPublisher := xclient.NewPublisher(
		xclient.NewClient(ctx, a.cfg.X, a.log),
		mediaDelay,
		a.log,
	)

	var notifier repository.IRunNotifier
	if a.cfg.Pubsub.ProjectID != "" && a.cfg.Pubsub.Topic != "" {
		client, err := gcppubsub.NewClient(ctx, a.cfg.Pubsub.ProjectID)
		if err != nil {
			a.log.WithField("error", err).Warn("Pub/Sub unavailable, run notifications disabled")
		} else {
			a.closers = append(a.closers, func() { _ = client.Close() })
			notifier = runpubsub.NewRunNotifier(client, a.cfg.Pubsub.Topic, a.log)
		}
	}

	a.posts = usecase.NewPostUsecase(
		a.ledger,
		media,
		[]repository.IPublisher{igPublisher, xPublisher},
		notifier,
		a.cfg.Posting.DefaultTags,
		a.cfg.Posting.ItemDelay(),
		a.log,
	)
	return nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
