package repository

import (
	"context"

	"auto-post/domain/model"
)

// IPublisher posts one work item's media and caption to a single platform.
// Implementations enforce their platform's media-count ceiling by truncating
// to the first N assets and logging a warning. No retry on failure.
type IPublisher interface {
	Platform() model.Platform
	Publish(ctx context.Context, assets []model.MediaAsset, caption string) (postID string, err error)
}
