package service

import (
	"CampusLink/internal/repository"
	"context"
	"time"
)

// IsUnread 根据成员已读时间与会话最新消息时间计算未读标记
// 新建且无消息的会话 lastMessageAt 为零值，视为已读
func IsUnread(lastReadAt, lastMessageAt time.Time) bool {
	return !lastMessageAt.IsZero() && lastMessageAt.After(lastReadAt)
}

// ReadStateService 未读角标查询，均为索引计数而非扫历史
type ReadStateService interface {
	UnreadNotificationCount(ctx context.Context, userID uint64) (int64, error)
	UnreadConversationCount(ctx context.Context, userID uint64) (int64, error)
}

type readStateServiceImpl struct {
	notifRepo repository.NotificationRepo
	convRepo  repository.ConversationRepo
}

func NewReadStateService(notifRepo repository.NotificationRepo, convRepo repository.ConversationRepo) ReadStateService {
	return &readStateServiceImpl{
		notifRepo: notifRepo,
		convRepo:  convRepo,
	}
}

func (s *readStateServiceImpl) UnreadNotificationCount(ctx context.Context, userID uint64) (int64, error) {
	return s.notifRepo.UnreadCount(ctx, userID)
}

func (s *readStateServiceImpl) UnreadConversationCount(ctx context.Context, userID uint64) (int64, error) {
	return s.convRepo.GetUnreadConversationCount(ctx, userID)
}
