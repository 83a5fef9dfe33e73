package instagram

import (
	"context"
	"time"

	"auto-post/domain/model"
	"auto-post/domain/repository"

	log "github.com/sirupsen/logrus"
)

// MaxCarouselItems is the Graph API ceiling for images in one carousel.
const MaxCarouselItems = 10

// TokenSource yields the access token to use for the next publish.
type TokenSource interface {
	GetValidToken(ctx context.Context) string
}

// Publisher posts work item images to Instagram. Images are staged on a
// public bucket first because the Graph API only accepts media by URL; the
// staged objects are removed again once the publish attempt finishes.
type Publisher struct {
	client     *Client
	staging    repository.IStagingStore
	tokens     TokenSource
	log        *log.Logger
	mediaDelay time.Duration
	sleep      func(time.Duration)
}

func NewPublisher(client *Client, staging repository.IStagingStore, tokens TokenSource, mediaDelay time.Duration, logger *log.Logger) *Publisher {
	return &Publisher{
		client:     client,
		staging:    staging,
		tokens:     tokens,
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
	return model.PlatformInstagram
}

func (p *Publisher) Publish(ctx context.Context, assets []model.MediaAsset, caption string) (string, error) {
	if len(assets) > MaxCarouselItems {
		p.log.WithFields(log.Fields{
			"have":  len(assets),
			"limit": MaxCarouselItems,
		}).Warn("Truncating media set for Instagram carousel")
		assets = assets[:MaxCarouselItems]
	}

	token := p.tokens.GetValidToken(ctx)

	var keys []string
	defer func() {
		for _, key := range keys {
			if err := p.staging.Delete(context.Background(), key); err != nil {
				p.log.WithField("key", key).WithError(err).Warn("Failed to remove staged object")
			}
		}
	}()

	urls := make([]string, 0, len(assets))
	for _, asset := range assets {
		key, publicURL, err := p.staging.Put(ctx, asset.Content, asset.Filename, asset.MimeType)
		if err != nil {
			return "", &model.PublishError{Platform: model.PlatformInstagram, Err: err}
		}
		keys = append(keys, key)
		urls = append(urls, publicURL)
	}

	containerID, err := p.createContainer(ctx, token, urls, caption)
	if err != nil {
		return "", &model.PublishError{Platform: model.PlatformInstagram, Err: err}
	}

	postID, err := p.client.PublishContainer(ctx, token, containerID)
	if err != nil {
		return "", &model.PublishError{Platform: model.PlatformInstagram, Err: err}
	}

	p.log.WithField("post_id", postID).Info("Published to Instagram")
	return postID, nil
}

func (p *Publisher) createContainer(ctx context.Context, token string, urls []string, caption string) (string, error) {
	if len(urls) == 1 {
		return p.client.CreateImageContainer(ctx, token, urls[0], caption)
	}

	childIDs := make([]string, 0, len(urls))
	for i, u := range urls {
		if i > 0 {
			p.sleep(p.mediaDelay)
		}
		id, err := p.client.CreateCarouselChild(ctx, token, u)
		if err != nil {
			return "", err
		}
		childIDs = append(childIDs, id)
	}
	return p.client.CreateCarouselContainer(ctx, token, childIDs, caption)
}
