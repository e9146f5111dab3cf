package job

import (
	"context"

	"go.uber.org/zap"
)

const (
	OrphanCleanupName     = "orphan_image_cleanup"
	ViewSyncName          = "view_sync"
	NotificationPurgeName = "notification_purge"
)

type OrphanCleaner interface {
	CleanupOrphanAttachments(ctx context.Context) (int, error)
}

type ViewSyncer interface {
	SyncViews(ctx context.Context) (int, error)
}

type NotificationPurger interface {
	PurgeRead(ctx context.Context) (int64, error)
}

// funcJob adapts a counting function to Job and logs how much it touched.
type funcJob struct {
	name     string
	schedule string
	fn       func(ctx context.Context) (int64, error)
	logger   *zap.Logger
}

func (j *funcJob) Name() string     { return j.name }
func (j *funcJob) Schedule() string { return j.schedule }

func (j *funcJob) Execute(ctx context.Context) error {
	n, err := j.fn(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		j.logger.Info("job processed rows", zap.String("job", j.name), zap.Int64("count", n))
	}
	return nil
}

func NewOrphanCleanupJob(cleaner OrphanCleaner, schedule string, logger *zap.Logger) Job {
	return &funcJob{
		name:     OrphanCleanupName,
		schedule: schedule,
		fn: func(ctx context.Context) (int64, error) {
			n, err := cleaner.CleanupOrphanAttachments(ctx)
			return int64(n), err
		},
		logger: logger,
	}
}

func NewViewSyncJob(syncer ViewSyncer, schedule string, logger *zap.Logger) Job {
	return &funcJob{
		name:     ViewSyncName,
		schedule: schedule,
		fn: func(ctx context.Context) (int64, error) {
			n, err := syncer.SyncViews(ctx)
			return int64(n), err
		},
		logger: logger,
	}
}

func NewNotificationPurgeJob(purger NotificationPurger, schedule string, logger *zap.Logger) Job {
	return &funcJob{
		name:     NotificationPurgeName,
		schedule: schedule,
		fn:       purger.PurgeRead,
		logger:   logger,
	}
}
