package dto

import "time"

// SendMessageReq 发送消息请求体
type SendMessageReq struct {
	Content string `json:"content" binding:"required"`
}

// CreateGroupReq 创建群聊请求体
type CreateGroupReq struct {
	Name     string   `json:"name" binding:"required"`
	Members  []uint64 `json:"members" binding:"required"`
	ImageURL string   `json:"image_url"`
}

// MessageDTO 消息明细响应
type MessageDTO struct {
	ID             uint64    `json:"id"`
	ConversationID uint64    `json:"conversation_id"`
	SenderID       uint64    `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationDTO 会话基础信息响应
type ConversationDTO struct {
	ConversationID uint64    `json:"conversation_id"`
	IsGroup        bool      `json:"is_group"`
	Name           string    `json:"name"`
	ImageURL       string    `json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationSummaryDTO 收件箱列表项
type ConversationSummaryDTO struct {
	ConversationID uint64    `json:"conversation_id"`
	IsGroup        bool      `json:"is_group"`
	Name           string    `json:"name"`
	ImageURL       string    `json:"image_url"`
	PeerID         uint64    `json:"peer_id"` // 对手方ID (单聊有效)
	PeerName       string    `json:"peer_name"`
	PeerAvatarURL  string    `json:"peer_avatar_url"`
	LastMsgContent string    `json:"last_msg_content"`
	LastSenderID   uint64    `json:"last_sender_id"`
	LastMessageAt  time.Time `json:"last_message_at"`
	Unread         bool      `json:"unread"`
}

// DirectConversationDTO 单聊会话详情：会话 + 最近一窗历史（升序，最多 500 条）
type DirectConversationDTO struct {
	ConversationID uint64        `json:"conversation_id"`
	PeerID         uint64        `json:"peer_id"`
	Messages       []*MessageDTO `json:"messages"`
}

// NewMessageEventDTO new-message 事件负载
type NewMessageEventDTO struct {
	ConversationID uint64      `json:"conversation_id"`
	Message        *MessageDTO `json:"message"`
}

// ConversationUnreadDTO 未读会话数
type ConversationUnreadDTO struct {
	UnreadCount int64 `json:"unread_count"`
}
