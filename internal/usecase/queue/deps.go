package queue

import (
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/audit"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/events"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/notify"
)

// Publisher is the slice of the event broadcaster the use cases need.
type Publisher interface {
	Publish(ev events.Event)
}

// Auditor records who did what after a mutation commits.
type Auditor interface {
	Dispatch(ev audit.Event)
}

// Sender delivers user-facing notifications.
type Sender interface {
	Send(msg notify.Message)
}
