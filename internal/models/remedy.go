package models

import "time"

type Remedy struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SessionID string              `gorm:"index;size:36" json:"session_id"`
	Session   ConsultationSession `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"session"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Instructions string `gorm:"size:500" json:"instructions"`

	PrescribedBy uint `json:"prescribed_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
