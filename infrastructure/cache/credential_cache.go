package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"auto-post/domain/model"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to redis. Callers treat a nil client as "cache
// disabled" and fall back to the credential store alone.
func NewRedisClient(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// defaultCredentialTTL bounds cache entries whose token has no known expiry.
const defaultCredentialTTL = 24 * time.Hour

// CredentialCache keeps the latest credential record in redis so the token
// manager can skip a ledger-database read on most calls.
type CredentialCache struct {
	client *redis.Client
}

func NewCredentialCache(client *redis.Client) *CredentialCache {
	return &CredentialCache{client: client}
}

func credentialKey(platform model.Platform) string {
	return fmt.Sprintf("credential:%s", platform)
}

func (c *CredentialCache) Get(ctx context.Context, platform model.Platform) (*model.CredentialRecord, error) {
	payload, err := c.client.Get(ctx, credentialKey(platform)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec := &model.CredentialRecord{}
	if err := json.Unmarshal(payload, rec); err != nil {
		return nil, fmt.Errorf("decode cached credential: %w", err)
	}
	return rec, nil
}

func (c *CredentialCache) Set(ctx context.Context, rec *model.CredentialRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ttl := defaultCredentialTTL
	if rec.ExpiresAt != nil {
		if until := time.Until(*rec.ExpiresAt); until > 0 && until < ttl {
			ttl = until
		}
	}
	return c.client.Set(ctx, credentialKey(rec.Platform), payload, ttl).Err()
}
