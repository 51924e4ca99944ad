package queue

import "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/httperr"

// ===============================
// Queue Entry Status
// ===============================

type Status string

const (
	StatusWaiting     Status = "waiting"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusNoShow      Status = "no_show"
	StatusLateArrival Status = "late_arrival"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ===============================
// Transitions
// ===============================

var transitionMap = map[Status][]Status{
	StatusWaiting:    {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// ValidTransition reports whether an entry may move from one status to
// another. Terminal statuses have no outgoing transitions.
func ValidTransition(from, to Status) bool {
	for _, s := range transitionMap[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsActive reports whether a status keeps the entry in the active set that
// position numbering covers.
func IsActive(s Status) bool {
	return s == StatusWaiting || s == StatusInProgress
}

// statusRank orders the active set: entries being served come before
// entries still waiting.
func statusRank(s Status) int {
	if s == StatusInProgress {
		return 0
	}
	return 1
}

// ===============================
// Validations
// ===============================

func CanStart(current Status) error {
	if !ValidTransition(current, StatusInProgress) {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
	return nil
}

func CanComplete(current Status) error {
	if !ValidTransition(current, StatusCompleted) {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
	return nil
}

func CanCancel(current Status) error {
	if !ValidTransition(current, StatusCancelled) {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
	return nil
}

func InitialStatus() Status {
	return StatusWaiting
}
