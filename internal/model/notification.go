package model

import "time"

type NotificationLevel string

const (
	NotificationError   NotificationLevel = "error"
	NotificationSuccess NotificationLevel = "success"
	NotificationInfo    NotificationLevel = "info"
)

// Notification is a transient, learner-visible message produced by the gateway,
// mostly from failed mutations.
// swagger:model Notification
type Notification struct {
	Record
	UserID      string            `gorm:"size:64;index;not null" json:"userId"`
	Level       NotificationLevel `gorm:"size:16;not null" json:"level"`
	Operation   string            `gorm:"size:64" json:"operation"`
	Message     string            `gorm:"size:500;not null" json:"message"`
	ExpiresAt   time.Time         `gorm:"index" json:"expiresAt"`
	DismissedAt *time.Time        `json:"dismissedAt,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
