package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"auto-post/domain/repository"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

// StagingStore holds images on a public Cloud Storage bucket for the short
// window between upload and publish. Objects staged here must be removed by
// the caller once the publish attempt is over.
type StagingStore struct {
	service *gcs.Service
	bucket  string
	log     *log.Logger
	now     func() time.Time
}

func NewStagingStore(ctx context.Context, credentialsPath, bucket string, logger *log.Logger) (repository.IStagingStore, error) {
	service, err := gcs.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}
	return &StagingStore{
		service: service,
		bucket:  bucket,
		log:     logger,
		now:     time.Now,
	}, nil
}

// Put uploads content under a collision-free key and returns the key plus
// the object's public URL.
func (s *StagingStore) Put(ctx context.Context, content []byte, filename, mimeType string) (string, string, error) {
	key := fmt.Sprintf("staging/%d_%s", s.now().UnixNano(), filename)
	object := &gcs.Object{Name: key, ContentType: mimeType}

	_, err := s.service.Objects.Insert(s.bucket, object).
		Media(bytes.NewReader(content)).
		Context(ctx).
		Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to stage %s: %w", filename, err)
	}

	publicURL := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
	s.log.WithField("key", key).Debug("Staged object")
	return key, publicURL, nil
}

func (s *StagingStore) Delete(ctx context.Context, key string) error {
	if err := s.service.Objects.Delete(s.bucket, key).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete staged object %s: %w", key, err)
	}
	return nil
}
