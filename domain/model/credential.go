package model

import "time"

// CredentialRecord is one persisted generation of a platform access token.
// Records are superseded, never edited in place: every refresh and every
// successful remote expiry lookup inserts a new record.
type CredentialRecord struct {
	ID          int64      `json:"id"`
	Platform    Platform   `json:"platform"`
	AccessToken string     `json:"access_token"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RemainingDays returns the days until expiry, or false when the expiry is unknown.
func (c *CredentialRecord) RemainingDays(now time.Time) (float64, bool) {
	if c == nil || c.ExpiresAt == nil {
		return 0, false
	}
	return c.ExpiresAt.Sub(now).Hours() / 24, true
}
