package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"auto-post/domain/model"
)

// CredentialRepositoryMSSQL is the SQL Server variant of the credential store.
type CredentialRepositoryMSSQL struct{ db *sql.DB }

func NewCredentialRepositoryMSSQL(db *sql.DB) *CredentialRepositoryMSSQL {
	return &CredentialRepositoryMSSQL{db: db}
}

// EnsureCredentialSchemaMSSQL creates the platform_credentials table for SQL Server.
func EnsureCredentialSchemaMSSQL(db *sql.DB) error {
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.platform_credentials') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[platform_credentials] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        platform NVARCHAR(64) NOT NULL,
        access_token NVARCHAR(MAX) NOT NULL,
        expires_at DATETIME2 NULL,
        updated_at DATETIME2 NOT NULL
    );
    CREATE INDEX IX_platform_credentials_platform ON dbo.[platform_credentials](platform, updated_at DESC);
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create platform_credentials (mssql): %w", err)
	}
	return nil
}

func (r *CredentialRepositoryMSSQL) Latest(ctx context.Context, platform model.Platform) (*model.CredentialRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT TOP 1 id, platform, access_token, expires_at, updated_at
		 FROM dbo.[platform_credentials]
		 WHERE platform = @p1
		 ORDER BY updated_at DESC, id DESC`, string(platform))

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

func (r *CredentialRepositoryMSSQL) Save(ctx context.Context, rec *model.CredentialRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	var exp sql.NullTime
	if rec.ExpiresAt != nil {
		exp.Valid = true
		exp.Time = *rec.ExpiresAt
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dbo.[platform_credentials] (platform, access_token, expires_at, updated_at)
		 VALUES (@p1, @p2, @p3, @p4)`,
		string(rec.Platform), rec.AccessToken, exp, rec.UpdatedAt)
	return err
}
