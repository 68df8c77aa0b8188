package repository

import (
	"CampusLink/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type NotificationRepo interface {
	Create(ctx context.Context, n *model.Notification) error
	CreateBatch(ctx context.Context, ns []*model.Notification) error
	GetByID(ctx context.Context, id uint64) (*model.Notification, error)
	List(ctx context.Context, userID uint64, unreadOnly bool, limit, offset int) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
	MarkRead(ctx context.Context, id uint64) error
	MarkAllRead(ctx context.Context, userID uint64) error
	SoftDelete(ctx context.Context, id uint64) error
	PurgeDeleted(ctx context.Context, before time.Time) (int64, error)
}

type notificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &notificationRepoImpl{db: db}
}

// Create 写入单条通知
func (s *notificationRepoImpl) Create(ctx context.Context, n *model.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

// CreateBatch 批量写入，整批同一事务，任一失败全部回滚
func (s *notificationRepoImpl) CreateBatch(ctx context.Context, ns []*model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&ns).Error
	})
}

// GetByID 根据 ID 获取通知
func (s *notificationRepoImpl) GetByID(ctx context.Context, id uint64) (*model.Notification, error) {
	var n model.Notification
	err := s.db.WithContext(ctx).Where("is_delete = 0").First(&n, id).Error
	return &n, err
}

// List 分页获取用户通知，按创建时间倒序
func (s *notificationRepoImpl) List(ctx context.Context, userID uint64, unreadOnly bool, limit, offset int) ([]*model.Notification, error) {
	var list []*model.Notification
	query := s.db.WithContext(ctx).Where("user_id = ? AND is_delete = 0", userID)
	if unreadOnly {
		query = query.Where("is_read = 0")
	}
	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// UnreadCount 未读数，命中 (user_id, is_read) 索引
func (s *notificationRepoImpl) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = 0 AND is_delete = 0", userID).
		Count(&count).Error
	return count, err
}

// MarkRead 标记单条已读
func (s *notificationRepoImpl) MarkRead(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Update("is_read", 1).Error
}

// MarkAllRead 一键已读
func (s *notificationRepoImpl) MarkAllRead(ctx context.Context, userID uint64) error {
	return s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = 0 AND is_delete = 0", userID).
		Update("is_read", 1).Error
}

// SoftDelete 软删除，保留行待定时任务清理
func (s *notificationRepoImpl) SoftDelete(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Update("is_delete", 1).Error
}

// PurgeDeleted 物理清理指定时间之前软删除的通知
func (s *notificationRepoImpl) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("is_delete = 1 AND updated_at < ?", before).
		Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}
