package queue

import (
	"sort"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

// SlotMinutes is the fixed per-slot wait estimate.
const SlotMinutes = 15

// SortActive orders a guruji's active entries in their canonical order:
// in_progress before waiting, then by check-in time, ticket id as a
// deterministic tiebreaker.
func SortActive(entries []models.QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri := statusRank(Status(entries[i].Status))
		rj := statusRank(Status(entries[j].Status))
		if ri != rj {
			return ri < rj
		}
		if !entries[i].CheckedInAt.Equal(entries[j].CheckedInAt) {
			return entries[i].CheckedInAt.Before(entries[j].CheckedInAt)
		}
		return entries[i].ID < entries[j].ID
	})
}

// Renumber sorts the active set and reassigns dense 1..N positions and the
// derived wait estimates. It returns only the entries whose position or
// estimate actually changed, so repeated invocation with no intervening
// mutation yields an empty batch.
func Renumber(entries []models.QueueEntry) []models.QueueEntry {
	SortActive(entries)

	changed := make([]models.QueueEntry, 0, len(entries))
	for i := range entries {
		position := i + 1
		wait := position * SlotMinutes
		if entries[i].Position != position || entries[i].EstimatedWait != wait {
			entries[i].Position = position
			entries[i].EstimatedWait = wait
			changed = append(changed, entries[i])
		}
	}
	return changed
}
