package x

import (
	"context"
	"time"

	"auto-post/domain/model"

	log "github.com/sirupsen/logrus"
)

// MaxMediaItems is the X ceiling for images attached to one tweet.
const MaxMediaItems = 4

// Publisher posts work item images to X as a single tweet with attached
// media.
type Publisher struct {
	client     *Client
	log        *log.Logger
	mediaDelay time.Duration
	sleep      func(time.Duration)
}

func NewPublisher(client *Client, mediaDelay time.Duration, logger *log.Logger) *Publisher {
	return &Publisher{
		client:     client,
		log:        logger,
		mediaDelay: mediaDelay,
		sleep:      time.Sleep,
	}
}

// WithSleep replaces the pacing sleep, for tests.
func (p *Publisher) WithSleep(sleep func(time.Duration)) *Publisher {
	p.sleep = sleep
	return p
}

func (p *Publisher) Platform() model.Platform {
	return model.PlatformX
}

func (p *Publisher) Publish(ctx context.Context, assets []model.MediaAsset, caption string) (string, error) {
	if len(assets) > MaxMediaItems {
		p.log.WithFields(log.Fields{
			"have":  len(assets),
			"limit": MaxMediaItems,
		}).Warn("Truncating media set for X post")
		assets = assets[:MaxMediaItems]
	}

	mediaIDs := make([]string, 0, len(assets))
	for i, asset := range assets {
		if i > 0 {
			p.sleep(p.mediaDelay)
		}
		id, err := p.client.UploadMedia(ctx, asset.Content, asset.Filename)
		if err != nil {
			return "", &model.PublishError{Platform: model.PlatformX, Err: err}
		}
		mediaIDs = append(mediaIDs, id)
	}

	postID, err := p.client.CreateTweet(ctx, caption, mediaIDs)
	if err != nil {
		return "", &model.PublishError{Platform: model.PlatformX, Err: err}
	}

	p.log.WithField("post_id", postID).Info("Published to X")
	return postID, nil
}
