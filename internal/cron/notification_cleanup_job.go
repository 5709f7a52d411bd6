package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/brightpath-crm/notify-backend/pkg/enums"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
)

const notificationRetentionDays = 30

// NotificationCleanupJobParams configure the retention purge job.
type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	Repository notificationsPurgeRepo
	Retention  int
}

type notificationsPurgeRepo interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time, statuses []enums.NotificationStatus) (int64, error)
}

// NewNotificationCleanupJob builds the job that deletes settled notification
// records past the retention window. Pending records are never purged.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = notificationRetentionDays
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	repo      notificationsPurgeRepo
	retention int
	now       func() time.Time
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.PurgeOlderThan(ctx, cutoff, []enums.NotificationStatus{
		enums.NotificationStatusSent,
		enums.NotificationStatusFailed,
	})
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
