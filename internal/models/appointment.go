package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user"`

	GurujiID *uint `json:"guruji_id"`
	Guruji   *User `gorm:"foreignKey:GurujiID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"guruji"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status string `gorm:"size:20;default:'booked'" json:"status"`
	Reason string `gorm:"size:255" json:"reason"`

	CheckedInAt *time.Time `json:"checked_in_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
