package queuesync

import (
	"errors"
	"time"
)

// MutationState tracks one optimistic mutation through its lifecycle.
type MutationState int

const (
	MutationIdle MutationState = iota
	MutationApplying
	MutationCommitted
	MutationRolledBack
)

var errNotApplying = errors.New("queuesync: mutation is not in the applying state")

// OptimisticUpdate wraps one mutating call: the cached snapshot is copied
// aside, the expected effect is applied locally for instant feedback, and
// the outcome either commits (forcing an authoritative refetch, because
// positions and wait estimates are server-computed) or rolls back to the
// exact pre-mutation snapshot. No partial rollback states exist.
type OptimisticUpdate struct {
	cache *QueryCache
	key   SnapshotKey

	state    MutationState
	saved    *Snapshot
	savedAt  time.Time
	hadEntry bool
}

func NewOptimisticUpdate(cache *QueryCache, key SnapshotKey) *OptimisticUpdate {
	return &OptimisticUpdate{cache: cache, key: key}
}

func (m *OptimisticUpdate) State() MutationState {
	return m.state
}

// Apply snapshots the current cached collection and applies the expected
// effect to a copy. The mutation request should be issued right after.
func (m *OptimisticUpdate) Apply(mutate func(*Snapshot)) {
	current, ok := m.cache.Get(m.key)
	m.hadEntry = ok
	if ok {
		m.saved = current.Clone()
		m.savedAt, _ = m.cache.FetchedAt(m.key)

		next := current.Clone()
		mutate(next)
		m.cache.Set(m.key, next)
	}
	m.state = MutationApplying
}

// Commit acknowledges server success. The optimistic shape is not trusted
// as final: the key is invalidated so the next read refetches authoritative
// positions.
func (m *OptimisticUpdate) Commit() error {
	if m.state != MutationApplying {
		return errNotApplying
	}
	m.state = MutationCommitted
	m.cache.Invalidate(m.key)
	return nil
}

// Rollback restores the exact pre-mutation snapshot and invalidates the
// key so a refetch reconciles against the server.
func (m *OptimisticUpdate) Rollback() error {
	if m.state != MutationApplying {
		return errNotApplying
	}
	m.state = MutationRolledBack
	if m.hadEntry {
		m.cache.Restore(m.key, m.saved, m.savedAt)
	}
	m.cache.Invalidate(m.key)
	return nil
}
