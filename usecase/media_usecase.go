package usecase

import (
	"context"
	"fmt"

	"auto-post/domain/model"
	"auto-post/domain/repository"

	log "github.com/sirupsen/logrus"
)

// IMediaUsecase fetches all media for a work item.
type IMediaUsecase interface {
	Fetch(ctx context.Context, folderID string) ([]model.MediaAsset, error)
}

// MediaUsecase downloads every image behind a work item's folder, preserving
// the order the assets were registered in.
type MediaUsecase struct {
	assets repository.IAssetStorage
	log    *log.Logger
}

func NewMediaUsecase(assets repository.IAssetStorage, logger *log.Logger) IMediaUsecase {
	return &MediaUsecase{assets: assets, log: logger}
}

func (u *MediaUsecase) Fetch(ctx context.Context, folderID string) ([]model.MediaAsset, error) {
	refs, err := u.assets.ListAssetRefs(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	if len(refs) == 0 {
		return nil, &model.EmptyMediaError{Ref: folderID}
	}

	out := make([]model.MediaAsset, 0, len(refs))
	for _, ref := range refs {
		content, mimeType, err := u.assets.FetchBytes(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", ref.Name, err)
		}
		u.log.WithFields(log.Fields{"file": ref.Name, "bytes": len(content)}).Debug("Downloaded asset")
		out = append(out, model.MediaAsset{Content: content, Filename: ref.Name, MimeType: mimeType})
	}
	return out, nil
}
