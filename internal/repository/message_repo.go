package repository

import (
	"CampusLink/internal/model"
	"context"

	"gorm.io/gorm"
)

type MessageRepo interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, convID uint64, beforeID uint64, limit int) ([]*model.Message, error)
}

type messageRepoImpl struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepoImpl{db: db}
}

// CreateMessage 写入一条消息
func (s *messageRepoImpl) CreateMessage(ctx context.Context, msg *model.Message) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

// ListMessages 拉取会话历史
// beforeID > 0 时作为游标向前翻页；返回结果按 (created_at, id) 升序
func (s *messageRepoImpl) ListMessages(ctx context.Context, convID uint64, beforeID uint64, limit int) ([]*model.Message, error) {
	var messages []*model.Message
	query := s.db.WithContext(ctx).Where("conversation_id = ?", convID)
	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// 倒序取出后翻转为阅读顺序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
