// Package queuesync keeps a queue viewer consistent with server state over
// an unreliable push channel. A Controller consumes push events as freshness
// hints, watches channel health, and drives an adaptive polling fallback
// against the authoritative snapshot endpoint. Snapshots are held in a
// QueryCache that always serves last-known-good data, and mutating calls can
// be wrapped in an OptimisticUpdate for immediate-apply/rollback semantics.
package queuesync

import (
	"context"
	"encoding/json"
	"time"
)

// Event is the push envelope. It is a hint that something changed, never a
// full payload of truth; dropping one is always safe because the next poll
// or refetch corrects state.
type Event struct {
	Type           string          `json:"type"`
	EntityID       string          `json:"entity_id"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	TargetUserID   *uint           `json:"target_user_id,omitempty"`
	TargetGurujiID *uint           `json:"target_guruji_id,omitempty"`
}

// Entry mirrors the server's queue entry for viewer consumption.
type Entry struct {
	ID            string    `json:"id"`
	AppointmentID uint      `json:"appointment_id"`
	UserID        uint      `json:"user_id"`
	GurujiID      *uint     `json:"guruji_id"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	Position      int       `json:"position"`
	EstimatedWait int       `json:"estimated_wait"`
	CheckedInAt   time.Time `json:"checked_in_at"`
}

type Stats struct {
	WaitingCount    int `json:"waiting_count"`
	InProgressCount int `json:"in_progress_count"`
	AverageWait     int `json:"average_wait"`
}

type Snapshot struct {
	Entries []Entry `json:"entries"`
	Stats   Stats   `json:"stats"`
}

// Clone deep-copies a snapshot so an optimistic mutation can never bleed
// into the cached original.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{Stats: s.Stats}
	out.Entries = make([]Entry, len(s.Entries))
	copy(out.Entries, s.Entries)
	for i := range out.Entries {
		if g := out.Entries[i].GurujiID; g != nil {
			id := *g
			out.Entries[i].GurujiID = &id
		}
	}
	return out
}

// SnapshotKey identifies one viewer's slice of queue state: its role plus
// the serialized filter parameters of its fetch.
type SnapshotKey struct {
	Role    string
	Filters string
}

// Fetcher pulls an authoritative snapshot, typically over HTTP.
type Fetcher interface {
	FetchQueue(ctx context.Context, key SnapshotKey) (*Snapshot, error)
}

// PushChannel is one live push subscription. Events is closed when the
// transport drops; the owner redials through its Dialer.
type PushChannel interface {
	Events() <-chan Event
	Close() error
}

// Dialer opens push subscriptions. The Controller owns the resulting
// channel and tears it down on Stop; there is no ambient shared socket.
type Dialer interface {
	Dial(ctx context.Context) (PushChannel, error)
}
