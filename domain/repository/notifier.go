package repository

import (
	"context"
	"time"

	"auto-post/domain/model"
)

// IRunNotifier publishes a run summary to an external channel. Best effort:
// failures are logged by the caller, never propagated.
type IRunNotifier interface {
	Notify(ctx context.Context, date time.Time, stats model.RunStatistics) error
}
