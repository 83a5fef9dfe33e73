package googledrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"auto-post/domain/model"
	"auto-post/domain/repository"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client reads work item images from Google Drive folders using a service
// account.
type Client struct {
	service *drive.Service
	log     *log.Logger
}

func NewClient(ctx context.Context, credentialsPath string, logger *log.Logger) (repository.IAssetStorage, error) {
	service, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Client{service: service, log: logger}, nil
}

// ListAssetRefs returns the image files directly under folderID, ordered by
// file name so publish order is stable.
func (c *Client) ListAssetRefs(ctx context.Context, folderID string) ([]model.AssetRef, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType contains 'image/' and trashed = false", folderID)
	var refs []model.AssetRef
	pageToken := ""
	for {
		call := c.service.Files.List().
			Q(q).
			OrderBy("name").
			Fields("nextPageToken, files(id, name, mimeType)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			if isNotFound(err) {
				return nil, &model.NotFoundError{Kind: "folder", Ref: folderID}
			}
			return nil, fmt.Errorf("failed to list folder %s: %w", folderID, err)
		}
		for _, f := range res.Files {
			refs = append(refs, model.AssetRef{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
		}
		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}
	return refs, nil
}

// FetchBytes downloads one file's content.
func (c *Client) FetchBytes(ctx context.Context, ref model.AssetRef) ([]byte, string, error) {
	res, err := c.service.Files.Get(ref.ID).Context(ctx).Download()
	if err != nil {
		if isNotFound(err) {
			return nil, "", &model.NotFoundError{Kind: "file", Ref: ref.ID}
		}
		return nil, "", fmt.Errorf("failed to download %s: %w", ref.Name, err)
	}
	defer res.Body.Close()

	content, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", ref.Name, err)
	}
	return content, ref.MimeType, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
