package models

import "time"

type QueueEntry struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	AppointmentID uint        `gorm:"index" json:"appointment_id"`
	Appointment   Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"appointment"`

	UserID uint `gorm:"index" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user"`

	// Nullable until a guruji claims the entry; parked entries carry
	// position 0 and are excluded from the active ordering.
	GurujiID *uint `gorm:"index" json:"guruji_id"`
	Guruji   *User `gorm:"foreignKey:GurujiID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"guruji"`

	Status   string `gorm:"size:20;index;default:'waiting'" json:"status"`
	Priority string `gorm:"size:20;default:'normal'" json:"priority"`

	Position      int `json:"position"`
	EstimatedWait int `json:"estimated_wait"`

	Reason string `gorm:"size:255" json:"reason"`

	CheckedInAt time.Time  `json:"checked_in_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
