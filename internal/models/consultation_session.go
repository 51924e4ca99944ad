package models

import "time"

type ConsultationSession struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	QueueEntryID string     `gorm:"index;size:36" json:"queue_entry_id"`
	QueueEntry   QueueEntry `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"queue_entry"`

	UserID   uint `json:"user_id"`
	GurujiID uint `json:"guruji_id"`

	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
