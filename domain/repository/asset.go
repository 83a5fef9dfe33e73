package repository

import (
	"context"

	"auto-post/domain/model"
)

// IAssetStorage lists and downloads the media files behind a work item.
type IAssetStorage interface {
	// ListAssetRefs returns the item's media references in stable name order.
	ListAssetRefs(ctx context.Context, folderID string) ([]model.AssetRef, error)
	FetchBytes(ctx context.Context, ref model.AssetRef) ([]byte, string, error)
}
