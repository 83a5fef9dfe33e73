package repository

import "context"

// IStagingStore holds media temporarily in a URL-addressable object store for
// platforms that fetch content by URL instead of accepting direct uploads.
type IStagingStore interface {
	Put(ctx context.Context, content []byte, filename, mimeType string) (key string, url string, err error)
	Delete(ctx context.Context, key string) error
}
