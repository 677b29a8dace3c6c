package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is embedded by every table the gateway owns. Ids are random UUIDs so
// they never collide with marketplace ObjectIds.
type Record struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Record) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
