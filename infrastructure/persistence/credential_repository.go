package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"auto-post/domain/model"
)

// CredentialRepository persists platform token generations on PostgreSQL.
// Every save inserts a new row; older generations are kept as history and
// Latest picks the newest one.
type CredentialRepository struct{ db *sql.DB }

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// EnsureCredentialSchema creates the platform_credentials table if it does not exist.
func EnsureCredentialSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS platform_credentials (
		id BIGSERIAL PRIMARY KEY,
		platform TEXT NOT NULL,
		access_token TEXT NOT NULL,
		expires_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create platform_credentials: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS ix_platform_credentials_platform ON platform_credentials (platform, updated_at DESC)`); err != nil {
		return fmt.Errorf("create platform_credentials index: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Latest(ctx context.Context, platform model.Platform) (*model.CredentialRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, platform, access_token, expires_at, updated_at
		 FROM platform_credentials
		 WHERE platform = $1
		 ORDER BY updated_at DESC, id DESC
		 LIMIT 1`, string(platform))

	rec := &model.CredentialRecord{}
	var exp sql.NullTime
	if err := row.Scan(&rec.ID, &rec.Platform, &rec.AccessToken, &exp, &rec.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if exp.Valid {
		rec.ExpiresAt = &exp.Time
	}
	return rec, nil
}

func (r *CredentialRepository) Save(ctx context.Context, rec *model.CredentialRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	var exp sql.NullTime
	if rec.ExpiresAt != nil {
		exp.Valid = true
		exp.Time = *rec.ExpiresAt
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO platform_credentials (platform, access_token, expires_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		string(rec.Platform), rec.AccessToken, exp, rec.UpdatedAt,
	).Scan(&rec.ID)
}
