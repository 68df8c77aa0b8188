package model

import "time"

// Message 消息表
// 同一会话内按 (created_at, id) 全序排列，id 兜底保证时钟精度不足时顺序稳定
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"index:idx_conv_created,priority:1;not null" json:"conversationId"`
	SenderID       uint64    `gorm:"not null" json:"senderId"`
	Content        string    `gorm:"type:varchar(2000);not null" json:"content"`
	CreatedAt      time.Time `gorm:"index:idx_conv_created,priority:2" json:"createdAt"`
}

func (Message) TableName() string { return "messages" }
