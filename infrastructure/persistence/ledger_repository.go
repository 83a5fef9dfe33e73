package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"auto-post/domain/model"
)

const workItemColumns = `id, work_name, student_name, folder_id, image_count, scheduled_date, skip, caption, tags, ig_posted, ig_post_id, x_posted, x_post_id, error_log, created_at, updated_at`

// LedgerRepository implements the work-item ledger on PostgreSQL using native sql.DB.
// Writes are per-field and non-transactional by design: each update is
// independently idempotent, and the duplicate-publish window this leaves open
// is documented rather than hidden.
type LedgerRepository struct {
	db          *sql.DB
	errorLogCap int
}

func NewLedgerRepository(db *sql.DB, errorLogCap int) *LedgerRepository {
	if errorLogCap <= 0 {
		errorLogCap = 2000
	}
	return &LedgerRepository{db: db, errorLogCap: errorLogCap}
}

// EnsureLedgerSchema creates the work_items table if it does not exist.
// Safe to call at startup.
func EnsureLedgerSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS work_items (
		id TEXT PRIMARY KEY,
		work_name TEXT NOT NULL DEFAULT '',
		student_name TEXT,
		folder_id TEXT NOT NULL,
		image_count INTEGER NOT NULL DEFAULT 0,
		scheduled_date DATE,
		skip BOOLEAN NOT NULL DEFAULT FALSE,
		caption TEXT,
		tags TEXT,
		ig_posted BOOLEAN NOT NULL DEFAULT FALSE,
		ig_post_id TEXT,
		x_posted BOOLEAN NOT NULL DEFAULT FALSE,
		x_post_id TEXT,
		error_log TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create work_items: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS ix_work_items_scheduled_date ON work_items (scheduled_date)`); err != nil {
		return fmt.Errorf("create work_items index: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ListDue(ctx context.Context, date time.Time) ([]model.WorkItem, error) {
	q := `SELECT ` + workItemColumns + `
	FROM work_items
	WHERE scheduled_date = $1
	  AND skip = FALSE
	  AND NOT (ig_posted AND x_posted)
	ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func (r *LedgerRepository) List(ctx context.Context, filter model.WorkItemFilter) ([]model.WorkItem, error) {
	q := `SELECT ` + workItemColumns + ` FROM work_items`
	var conds []string
	var args []interface{}
	if filter.StudentName != "" {
		args = append(args, filter.StudentName)
		conds = append(conds, fmt.Sprintf("student_name = $%d", len(args)))
	}
	if filter.OnlyUnposted {
		conds = append(conds, "NOT (ig_posted AND x_posted)")
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

func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*model.WorkItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+workItemColumns+` FROM work_items WHERE id = $1`, id)
	item, err := scanWorkItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *LedgerRepository) RecordSuccess(ctx context.Context, itemID string, platform model.Platform, postID string) error {
	var q string
	switch platform {
	case model.PlatformInstagram:
		q = `UPDATE work_items SET ig_posted = TRUE, ig_post_id = $2, updated_at = $3 WHERE id = $1`
	case model.PlatformX:
		q = `UPDATE work_items SET x_posted = TRUE, x_post_id = $2, updated_at = $3 WHERE id = $1`
	default:
		return fmt.Errorf("unknown platform: %s", platform)
	}
	if _, err := r.db.ExecContext(ctx, q, itemID, postID, time.Now().UTC()); err != nil {
		return &model.LedgerWriteError{ItemID: itemID, Err: err}
	}
	return nil
}

// RecordError appends a timestamped line to the item's error log. The log is
// append-only from the core's point of view; it is truncated at the ledger's
// stored-field capacity, keeping the oldest entries.
func (r *LedgerRepository) RecordError(ctx context.Context, itemID string, message string) error {
	var current sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT error_log FROM work_items WHERE id = $1`, itemID).Scan(&current)
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
		`UPDATE work_items SET error_log = $2, updated_at = $3 WHERE id = $1`,
		itemID, updated, time.Now().UTC()); err != nil {
		return &model.LedgerWriteError{ItemID: itemID, Err: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkItem(row rowScanner) (*model.WorkItem, error) {
	item := &model.WorkItem{}
	var studentName, caption, tags, igPostID, xPostID, errorLog sql.NullString
	var scheduledDate sql.NullTime
	err := row.Scan(
		&item.ID, &item.WorkName, &studentName, &item.FolderID, &item.ImageCount,
		&scheduledDate, &item.Skip, &caption, &tags,
		&item.IGPosted, &igPostID, &item.XPosted, &xPostID,
		&errorLog, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if studentName.Valid {
		v := studentName.String
		item.StudentName = &v
	}
	if scheduledDate.Valid {
		v := scheduledDate.Time
		item.ScheduledDate = &v
	}
	if caption.Valid {
		v := caption.String
		item.Caption = &v
	}
	if tags.Valid {
		v := tags.String
		item.Tags = &v
	}
	if igPostID.Valid {
		v := igPostID.String
		item.IGPostID = &v
	}
	if xPostID.Valid {
		v := xPostID.String
		item.XPostID = &v
	}
	if errorLog.Valid {
		v := errorLog.String
		item.ErrorLog = &v
	}
	return item, nil
}

func scanWorkItems(rows *sql.Rows) ([]model.WorkItem, error) {
	var items []model.WorkItem
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
