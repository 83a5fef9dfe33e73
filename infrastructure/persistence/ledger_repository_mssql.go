package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"auto-post/domain/model"
)

// LedgerRepositoryMSSQL is the SQL Server variant of the work-item ledger,
// used in production deployments running against Azure SQL.
type LedgerRepositoryMSSQL struct {
	db          *sql.DB
	errorLogCap int
}

func NewLedgerRepositoryMSSQL(db *sql.DB, errorLogCap int) *LedgerRepositoryMSSQL {
	if errorLogCap <= 0 {
		errorLogCap = 2000
	}
	return &LedgerRepositoryMSSQL{db: db, errorLogCap: errorLogCap}
}

// EnsureLedgerSchemaMSSQL creates the work_items table for SQL Server if it does not exist.
func EnsureLedgerSchemaMSSQL(db *sql.DB) error {
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.work_items') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[work_items] (
        id NVARCHAR(128) PRIMARY KEY,
        work_name NVARCHAR(255) NOT NULL DEFAULT '',
        student_name NVARCHAR(255) NULL,
        folder_id NVARCHAR(128) NOT NULL,
        image_count INT NOT NULL DEFAULT 0,
        scheduled_date DATE NULL,
        skip BIT NOT NULL DEFAULT 0,
        caption NVARCHAR(MAX) NULL,
        tags NVARCHAR(MAX) NULL,
        ig_posted BIT NOT NULL DEFAULT 0,
        ig_post_id NVARCHAR(128) NULL,
        x_posted BIT NOT NULL DEFAULT 0,
        x_post_id NVARCHAR(128) NULL,
        error_log NVARCHAR(MAX) NULL,
        created_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME(),
        updated_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME()
    );
    CREATE INDEX IX_work_items_scheduled_date ON dbo.[work_items](scheduled_date);
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create work_items (mssql): %w", err)
	}
	return nil
}

func (r *LedgerRepositoryMSSQL) ListDue(ctx context.Context, date time.Time) ([]model.WorkItem, error) {
	q := `SELECT ` + workItemColumns + `
	FROM dbo.[work_items]
	WHERE scheduled_date = @p1
	  AND skip = 0
	  AND NOT (ig_posted = 1 AND x_posted = 1)
	ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func (r *LedgerRepositoryMSSQL) List(ctx context.Context, filter model.WorkItemFilter) ([]model.WorkItem, error) {
	q := `SELECT ` + workItemColumns + ` FROM dbo.[work_items]`
	var conds []string
	var args []interface{}
	if filter.StudentName != "" {
		args = append(args, filter.StudentName)
		conds = append(conds, fmt.Sprintf("student_name = @p%d", len(args)))
	}
	if filter.OnlyUnposted {
		conds = append(conds, "NOT (ig_posted = 1 AND x_posted = 1)")
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func (r *LedgerRepositoryMSSQL) GetByID(ctx context.Context, id string) (*model.WorkItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+workItemColumns+` FROM dbo.[work_items] WHERE id = @p1`, id)
	item, err := scanWorkItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *LedgerRepositoryMSSQL) RecordSuccess(ctx context.Context, itemID string, platform model.Platform, postID string) error {
	var q string
	switch platform {
	case model.PlatformInstagram:
		q = `UPDATE dbo.[work_items] SET ig_posted = 1, ig_post_id = @p2, updated_at = @p3 WHERE id = @p1`
	case model.PlatformX:
		q = `UPDATE dbo.[work_items] SET x_posted = 1, x_post_id = @p2, updated_at = @p3 WHERE id = @p1`
	default:
		return fmt.Errorf("unknown platform: %s", platform)
	}
	if _, err := r.db.ExecContext(ctx, q, itemID, postID, time.Now().UTC()); err != nil {
		return &model.LedgerWriteError{ItemID: itemID, Err: err}
	}
	return nil
}

func (r *LedgerRepositoryMSSQL) RecordError(ctx context.Context, itemID string, message string) error {
	var current sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT error_log FROM dbo.[work_items] WHERE id = @p1`, itemID).Scan(&current)
	if err == sql.ErrNoRows {
		return &model.LedgerWriteError{ItemID: itemID, Err: fmt.Errorf("no such item")}
	}
	if err != nil {
		return &model.LedgerWriteError{ItemID: itemID, Err: err}
	}

	entry := fmt.Sprintf("%s | %s", time.Now().Format("2006-01-02 15:04"), message)
	updated := entry
	if current.Valid && current.String != "" {
		updated = current.String + "\n" + entry
	}
	if runes := []rune(updated); len(runes) > r.errorLogCap {
		updated = string(runes[:r.errorLogCap])
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE dbo.[work_items] SET error_log = @p2, updated_at = @p3 WHERE id = @p1`,
		itemID, updated, time.Now().UTC()); err != nil {
		return &model.LedgerWriteError{ItemID: itemID, Err: err}
	}
	return nil
}
