package repository

import (
	"context"
	"time"

	"auto-post/domain/model"
)

// ILedger defines the work-item ledger operations. The ledger is the external
// system of record; writes are per-field and non-transactional.
type ILedger interface {
	// ListDue returns items scheduled exactly on the given date (time-of-day
	// ignored), excluding skipped items and items already posted on all platforms.
	ListDue(ctx context.Context, date time.Time) ([]model.WorkItem, error)
	List(ctx context.Context, filter model.WorkItemFilter) ([]model.WorkItem, error)
	GetByID(ctx context.Context, id string) (*model.WorkItem, error)
	// RecordSuccess sets the platform's posted flag and post id. Re-applying the
	// same record is a no-op in effect.
	RecordSuccess(ctx context.Context, itemID string, platform model.Platform, postID string) error
	// RecordError appends a timestamped line to the item's error log.
	RecordError(ctx context.Context, itemID string, message string) error
}
