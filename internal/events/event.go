package events

import "fmt"

// Type identifies what changed. Values are part of the push wire contract.
type Type string

const (
	EntryAdded           Type = "ENTRY_ADDED"
	EntryUpdated         Type = "ENTRY_UPDATED"
	EntryRemoved         Type = "ENTRY_REMOVED"
	ConsultationStarted  Type = "CONSULTATION_STARTED"
	ConsultationEnded    Type = "CONSULTATION_ENDED"
	AppointmentCheckedIn Type = "APPOINTMENT_CHECKED_IN"
	AppointmentUpdated   Type = "APPOINTMENT_UPDATED"
	AppointmentCompleted Type = "APPOINTMENT_COMPLETED"
)

// Event is a change hint, not a full payload of truth. Subscribers are free
// to drop it and let their next snapshot fetch correct state.
type Event struct {
	Type           Type   `json:"type"`
	EntityID       string `json:"entity_id"`
	Payload        any    `json:"payload,omitempty"`
	TargetUserID   *uint  `json:"target_user_id,omitempty"`
	TargetGurujiID *uint  `json:"target_guruji_id,omitempty"`
}

// ===============================
// Topics
// ===============================

const TopicGlobal = "global"

func UserTopic(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func GurujiTopic(gurujiID uint) string {
	return fmt.Sprintf("guruji:%d", gurujiID)
}

func RoleTopic(role string) string {
	return "role:" + role
}

// Topics lists every topic an event is published to. Each viewer type
// subscribes to the narrowest topic that covers it.
func (e Event) Topics() []string {
	topics := []string{TopicGlobal, RoleTopic("coordinator"), RoleTopic("admin")}
	if e.TargetUserID != nil {
		topics = append(topics, UserTopic(*e.TargetUserID))
	}
	if e.TargetGurujiID != nil {
		topics = append(topics, GurujiTopic(*e.TargetGurujiID))
	}
	return topics
}
