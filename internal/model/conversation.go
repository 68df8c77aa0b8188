package model

import "time"

const (
	MemberRoleAdmin  = "ADMIN"
	MemberRoleMember = "MEMBER"
)

// Conversation 会话主表
type Conversation struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	IsGroup        bool      `gorm:"not null;default:0" json:"isGroup"`
	Name           string    `gorm:"type:varchar(100)" json:"name"`
	ImageURL       string    `gorm:"type:varchar(255)" json:"imageUrl"`
	PeerKey        string    `gorm:"uniqueIndex;type:varchar(64)" json:"-"` // 单聊唯一标识 uid1_uid2，群聊为空
	LastMsgContent string    `gorm:"type:varchar(255)" json:"lastMsgContent"`
	LastSenderID   uint64    `gorm:"not null;default:0" json:"lastSenderId"`
	LastMessageAt  time.Time `gorm:"index" json:"lastMessageAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }

// ConversationMember 会话成员表
type ConversationMember struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"uniqueIndex:idx_conv_user" json:"conversationId"`
	UserID         uint64    `gorm:"uniqueIndex:idx_conv_user;index" json:"userId"`
	Role           string    `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"` // ADMIN / MEMBER
	LastReadAt     time.Time `gorm:"not null" json:"lastReadAt"`
	JoinedAt       time.Time `json:"joinedAt"`

	Conversation Conversation `gorm:"foreignKey:ConversationID;references:ID" json:"conversation"`
}

func (ConversationMember) TableName() string { return "conversation_members" }
