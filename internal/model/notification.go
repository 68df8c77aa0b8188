package model

import "time"

const (
	NotificationTypeInfo     = "INFO"
	NotificationTypeWarning  = "WARNING"
	NotificationTypeError    = "ERROR"
	NotificationTypeSuccess  = "SUCCESS"
	NotificationTypeBusAlert = "BUS_ALERT"
	NotificationTypeOrder    = "ORDER"
)

// Notification 系统通知表
type Notification struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"index:idx_user_read,priority:1;not null" json:"userId"`
	Title     string    `gorm:"type:varchar(100);not null" json:"title"`
	Message   string    `gorm:"type:varchar(500);not null" json:"message"`
	Type      string    `gorm:"type:varchar(20);not null;default:'INFO'" json:"type"`
	IsRead    bool      `gorm:"index:idx_user_read,priority:2;not null;default:0" json:"isRead"`
	IsDelete  bool      `gorm:"type:tinyint(1);default:0" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (Notification) TableName() string { return "notifications" }
