package repository

import (
	"context"
	"time"

	"auto-post/domain/model"
)

// ICredentialStore persists token generations. Save always inserts; older
// records stay behind as history.
type ICredentialStore interface {
	// Latest returns the most recent record for the platform, or (nil, nil)
	// when none exists yet.
	Latest(ctx context.Context, platform model.Platform) (*model.CredentialRecord, error)
	Save(ctx context.Context, rec *model.CredentialRecord) error
}

// ICredentialCache is a read-through cache in front of the credential store.
// A nil, nil result means cache miss.
type ICredentialCache interface {
	Get(ctx context.Context, platform model.Platform) (*model.CredentialRecord, error)
	Set(ctx context.Context, rec *model.CredentialRecord) error
}

// ICredentialTransport talks to the platform's token introspection and
// exchange endpoints.
type ICredentialTransport interface {
	// Introspect returns the token's expiry, or nil when the remote reports
	// no expiry information.
	Introspect(ctx context.Context, token string) (*time.Time, error)
	// Exchange trades the current token for a fresh long-lived one.
	Exchange(ctx context.Context, token string) (newToken string, expiresIn time.Duration, err error)
}
