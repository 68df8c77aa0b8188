package dto

import "time"

// NotificationDTO 通知响应对象，也是 notification 事件负载
type NotificationDTO struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationUnreadDTO 未读数返回
type NotificationUnreadDTO struct {
	UnreadCount int64 `json:"unread_count"`
}

// BroadcastReq 管理端按角色广播请求体
type BroadcastReq struct {
	Roles   []string `json:"roles" binding:"required"`
	Title   string   `json:"title" binding:"required"`
	Message string   `json:"message" binding:"required"`
	Type    string   `json:"type"`
}
