package usecase

import (
	"context"
	"time"

	"auto-post/domain/model"
	"auto-post/domain/repository"

	log "github.com/sirupsen/logrus"
)

// ExpiryThresholdDays is the remaining lifetime below which a token is
// proactively refreshed.
const ExpiryThresholdDays = 20.0

// nonExpiringDays stands in for tokens the platform reports as never expiring.
const nonExpiringDays = 999.0

// ITokenUsecase maintains the validity of the long-lived platform credential.
type ITokenUsecase interface {
	// GetValidToken always returns a usable token, degraded or not.
	GetValidToken(ctx context.Context) string
	// ForceRefresh performs an operator-triggered exchange.
	ForceRefresh(ctx context.Context) (*model.CredentialRecord, error)
}

// TokenUsecase tracks the Instagram access token's expiry and exchanges it
// before it lapses. The persisted record survives restarts; every refresh and
// every successful remote expiry lookup inserts a new generation.
type TokenUsecase struct {
	store     repository.ICredentialStore
	cache     repository.ICredentialCache // optional
	transport repository.ICredentialTransport
	platform  model.Platform
	envToken  string
	log       *log.Logger
	now       func() time.Time
}

func NewTokenUsecase(
	store repository.ICredentialStore,
	cache repository.ICredentialCache,
	transport repository.ICredentialTransport,
	envToken string,
	logger *log.Logger,
) *TokenUsecase {
	return &TokenUsecase{
		store:     store,
		cache:     cache,
		transport: transport,
		platform:  model.PlatformInstagram,
		envToken:  envToken,
		log:       logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (u *TokenUsecase) WithClock(now func() time.Time) *TokenUsecase {
	u.now = now
	return u
}

func (u *TokenUsecase) GetValidToken(ctx context.Context) string {
	token := u.envToken
	var expiresAt *time.Time

	if rec := u.load(ctx); rec != nil {
		if rec.AccessToken != "" {
			token = rec.AccessToken
		}
		expiresAt = rec.ExpiresAt
		u.log.Debug("Loaded stored credential")
	}

	remaining, known := u.remainingDays(ctx, token, expiresAt)
	if !known || remaining >= ExpiryThresholdDays {
		return token
	}

	u.log.WithField("remainingDays", remaining).Warn("Token nearing expiry, refreshing")
	newToken, expiresIn, err := u.transport.Exchange(ctx, token)
	if err != nil {
		u.log.WithField("error", &model.TokenRefreshError{Err: err}).Error("Token refresh failed, using current token")
		return token
	}
	u.persist(ctx, newToken, expiresIn)
	return newToken
}

func (u *TokenUsecase) ForceRefresh(ctx context.Context) (*model.CredentialRecord, error) {
	token := u.GetValidToken(ctx)
	newToken, expiresIn, err := u.transport.Exchange(ctx, token)
	if err != nil {
		return nil, &model.TokenRefreshError{Err: err}
	}
	return u.persist(ctx, newToken, expiresIn), nil
}

// load reads the latest credential, cache first. Any lookup failure degrades
// to a nil record rather than surfacing.
func (u *TokenUsecase) load(ctx context.Context) *model.CredentialRecord {
	if u.cache != nil {
		rec, err := u.cache.Get(ctx, u.platform)
		if err != nil {
			u.log.WithField("error", err).Warn("Credential cache read failed")
		} else if rec != nil {
			return rec
		}
	}
	rec, err := u.store.Latest(ctx, u.platform)
	if err != nil {
		u.log.WithField("error", err).Warn("Credential store read failed")
		return nil
	}
	if rec != nil && u.cache != nil {
		if err := u.cache.Set(ctx, rec); err != nil {
			u.log.WithField("error", err).Warn("Credential cache write failed")
		}
	}
	return rec
}

// remainingDays computes the days until expiry. When the expiry is unknown it
// queries the introspection endpoint and opportunistically persists the result
// so later calls skip the remote lookup.
func (u *TokenUsecase) remainingDays(ctx context.Context, token string, expiresAt *time.Time) (float64, bool) {
	if expiresAt != nil {
		return expiresAt.Sub(u.now()).Hours() / 24, true
	}

	remoteExpiry, err := u.transport.Introspect(ctx, token)
	if err != nil {
		u.log.WithField("error", err).Warn("Token expiry lookup failed")
		return 0, false
	}
	if remoteExpiry == nil {
		// Remote reports no expiry information: stay in the unknown state and
		// use the configured token as-is.
		return 0, false
	}
	if remoteExpiry.IsZero() {
		return nonExpiringDays, true
	}
	u.persist(ctx, token, remoteExpiry.Sub(u.now()))
	return remoteExpiry.Sub(u.now()).Hours() / 24, true
}

func (u *TokenUsecase) persist(ctx context.Context, token string, expiresIn time.Duration) *model.CredentialRecord {
	now := u.now()
	expiresAt := now.Add(expiresIn)
	rec := &model.CredentialRecord{
		Platform:    u.platform,
		AccessToken: token,
		ExpiresAt:   &expiresAt,
		UpdatedAt:   now,
	}
	if err := u.store.Save(ctx, rec); err != nil {
		u.log.WithField("error", err).Error("Failed to persist credential")
	} else {
		u.log.WithField("expiresAt", expiresAt.Format(time.RFC3339)).Info("Credential saved")
	}
	if u.cache != nil {
		if err := u.cache.Set(ctx, rec); err != nil {
			u.log.WithField("error", err).Warn("Credential cache write failed")
		}
	}
	return rec
}
