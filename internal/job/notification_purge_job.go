package job

import (
	"CampusLink/internal/pkg/logger"
	"CampusLink/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// NotificationPurgeJob 物理清理软删除超过保留期的通知
type NotificationPurgeJob struct {
	notifRepo repository.NotificationRepo
	keepDays  int
}

func NewNotificationPurgeJob(notifRepo repository.NotificationRepo, keepDays int) *NotificationPurgeJob {
	if keepDays <= 0 {
		keepDays = 30
	}
	return &NotificationPurgeJob{
		notifRepo: notifRepo,
		keepDays:  keepDays,
	}
}

func (s *NotificationPurgeJob) Run() {
	traceID := "job-notif-purge-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	before := time.Now().AddDate(0, 0, -s.keepDays)
	log.InfoContext(ctx, "start notification purge job", "before", before)

	count, err := s.notifRepo.PurgeDeleted(ctx, before)
	if err != nil {
		log.ErrorContext(ctx, "purge deleted notifications error", "err", err)
		return
	}

	if count > 0 {
		log.InfoContext(ctx, "notification purge job finished", "purged_count", count)
	}
}
