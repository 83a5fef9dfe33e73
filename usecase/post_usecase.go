package usecase

import (
	"context"
	"fmt"
	"time"

	"auto-post/domain/model"
	"auto-post/domain/repository"

	log "github.com/sirupsen/logrus"
)

// IPostUsecase drives the daily publication run.
type IPostUsecase interface {
	RunDailyPost(ctx context.Context, date time.Time) model.RunStatistics
	TestPost(ctx context.Context, itemID string, platforms []model.Platform) ([]model.PublishResult, error)
}

// PostUsecase is the daily publish orchestrator. Items are processed strictly
// in ledger order, platform legs within an item are fully independent, and no
// single item failure ever aborts the run.
type PostUsecase struct {
	ledger      repository.ILedger
	media       IMediaUsecase
	publishers  []repository.IPublisher
	notifier    repository.IRunNotifier // optional
	defaultTags string
	itemDelay   time.Duration
	log         *log.Logger
	sleep       func(time.Duration)
}

func NewPostUsecase(
	ledger repository.ILedger,
	media IMediaUsecase,
	publishers []repository.IPublisher,
	notifier repository.IRunNotifier,
	defaultTags string,
	itemDelay time.Duration,
	logger *log.Logger,
) *PostUsecase {
	return &PostUsecase{
		ledger:      ledger,
		media:       media,
		publishers:  publishers,
		notifier:    notifier,
		defaultTags: defaultTags,
		itemDelay:   itemDelay,
		log:         logger,
		sleep:       time.Sleep,
	}
}

// WithSleep overrides the pacing delay implementation, for tests.
func (u *PostUsecase) WithSleep(sleep func(time.Duration)) *PostUsecase {
	u.sleep = sleep
	return u
}

// RunDailyPost publishes every item due on the given date and returns the
// aggregate counts. The run always completes; callers inspect stats.Errors to
// decide the process exit signal.
func (u *PostUsecase) RunDailyPost(ctx context.Context, date time.Time) model.RunStatistics {
	u.log.WithField("date", date.Format("2006-01-02")).Info("Starting daily post run")

	stats := model.RunStatistics{}
	items, err := u.ledger.ListDue(ctx, date)
	if err != nil {
		u.log.WithField("error", err).Error("Failed to list due items")
		stats.Errors++
		return stats
	}
	u.log.WithField("count", len(items)).Info("Found due items")

	for i := range items {
		if i > 0 {
			u.sleep(u.itemDelay)
		}
		if u.processItem(ctx, &items[i], &stats) {
			stats.Processed++
		}
	}

	u.log.WithFields(log.Fields{
		"processed": stats.Processed,
		"ig":        stats.InstagramSuccess,
		"x":         stats.XSuccess,
		"errors":    stats.Errors,
	}).Info("Daily post run complete")

	if u.notifier != nil {
		if err := u.notifier.Notify(ctx, date, stats); err != nil {
			u.log.WithField("error", err).Warn("Run notification failed")
		}
	}
	return stats
}

// processItem runs both platform legs for one item. It reports whether the
// item completed without an item-level fatal error. Panics are contained at
// this boundary and recorded like any other item failure.
func (u *PostUsecase) processItem(ctx context.Context, item *model.WorkItem, stats *model.RunStatistics) (ok bool) {
	itemLog := u.log.WithField("item", item.WorkName)

	defer func() {
		if r := recover(); r != nil {
			ok = false
			stats.Errors++
			itemLog.WithField("panic", r).Error("Item processing panicked")
			u.recordError(ctx, item.ID, fmt.Sprintf("Processing error: %v", r))
		}
	}()

	itemLog.Info("Processing item")

	caption := GenerateCaption(item.WorkName, item.CaptionText(), item.TagsText(), u.defaultTags)

	assets, err := u.media.Fetch(ctx, item.FolderID)
	if err != nil {
		stats.Errors++
		itemLog.WithField("error", err).Error("Media acquisition failed")
		u.recordError(ctx, item.ID, fmt.Sprintf("Media: %v", err))
		return false
	}

	for _, pub := range u.publishers {
		if item.PostedOn(pub.Platform()) {
			continue
		}
		result := u.publishLeg(ctx, pub, item, assets, caption)
		switch {
		case result.Success && result.Platform == model.PlatformInstagram:
			stats.InstagramSuccess++
		case result.Success && result.Platform == model.PlatformX:
			stats.XSuccess++
		default:
			stats.Errors++
		}
	}
	return true
}

// publishLeg runs one platform attempt and its status bookkeeping. A failure
// here never prevents the next leg.
func (u *PostUsecase) publishLeg(ctx context.Context, pub repository.IPublisher, item *model.WorkItem, assets []model.MediaAsset, caption string) model.PublishResult {
	platform := pub.Platform()
	legLog := u.log.WithFields(log.Fields{"item": item.WorkName, "platform": platform})

	postID, err := pub.Publish(ctx, assets, caption)
	if err != nil {
		legLog.WithField("error", err).Error("Publish failed")
		u.recordError(ctx, item.ID, fmt.Sprintf("%s: %v", platform, err))
		return model.PublishResult{Platform: platform, Detail: err.Error()}
	}

	legLog.WithField("postId", postID).Info("Published")
	if err := u.ledger.RecordSuccess(ctx, item.ID, platform, postID); err != nil {
		// The remote post exists but is not marked; a re-run may duplicate it.
		legLog.WithField("error", &model.LedgerWriteError{ItemID: item.ID, Err: err}).
			Error("Failed to record publish success")
	}
	return model.PublishResult{Platform: platform, Success: true, PostID: postID}
}

func (u *PostUsecase) recordError(ctx context.Context, itemID, message string) {
	if err := u.ledger.RecordError(ctx, itemID, message); err != nil {
		u.log.WithField("error", &model.LedgerWriteError{ItemID: itemID, Err: err}).
			Error("Failed to append ledger error log")
	}
}

// TestPost publishes a single work item to the selected platforms without any
// ledger status writes. Operator tooling only.
func (u *PostUsecase) TestPost(ctx context.Context, itemID string, platforms []model.Platform) ([]model.PublishResult, error) {
	item, err := u.ledger.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &model.NotFoundError{Kind: "work item", Ref: itemID}
	}

	assets, err := u.media.Fetch(ctx, item.FolderID)
	if err != nil {
		return nil, err
	}
	caption := GenerateCaption(item.WorkName, item.CaptionText(), item.TagsText(), u.defaultTags)

	wanted := make(map[model.Platform]bool, len(platforms))
	for _, p := range platforms {
		wanted[p] = true
	}

	var results []model.PublishResult
	var firstErr error
	for _, pub := range u.publishers {
		if !wanted[pub.Platform()] {
			continue
		}
		postID, err := pub.Publish(ctx, assets, caption)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			results = append(results, model.PublishResult{Platform: pub.Platform(), Detail: err.Error()})
			continue
		}
		results = append(results, model.PublishResult{Platform: pub.Platform(), Success: true, PostID: postID})
	}
	return results, firstErr
}
