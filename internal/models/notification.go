package models

import "time"

type Notification struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID  uint   `gorm:"index;not null" json:"user_id"`
	Title   string `gorm:"size:100" json:"title"`
	Message string `gorm:"size:500;not null" json:"message"`
	Read    bool   `gorm:"default:false" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}
