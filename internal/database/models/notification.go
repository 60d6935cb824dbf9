package models

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

type Notification struct {
	Base
	UserID  uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	Message string           `gorm:"not null" json:"message"`
	Type    NotificationType `gorm:"not null;default:'info'" json:"type"`
	IsRead  bool             `gorm:"default:false" json:"is_read"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
