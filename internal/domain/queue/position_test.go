package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

func entryAt(id string, status Status, checkedIn time.Time) models.QueueEntry {
	return models.QueueEntry{
		ID:          id,
		Status:      string(status),
		CheckedInAt: checkedIn,
	}
}

func TestRenumberAssignsDensePositions(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []models.QueueEntry{
		entryAt("c", StatusWaiting, base.Add(20*time.Minute)),
		entryAt("a", StatusWaiting, base),
		entryAt("b", StatusWaiting, base.Add(10*time.Minute)),
	}

	changed := Renumber(entries)
	require.Len(t, changed, 3)

	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, 15, entries[0].EstimatedWait)
	assert.Equal(t, "b", entries[1].ID)
	assert.Equal(t, 2, entries[1].Position)
	assert.Equal(t, 30, entries[1].EstimatedWait)
	assert.Equal(t, "c", entries[2].ID)
	assert.Equal(t, 3, entries[2].Position)
	assert.Equal(t, 45, entries[2].EstimatedWait)
}

func TestRenumberInProgressRanksFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []models.QueueEntry{
		entryAt("early-waiter", StatusWaiting, base),
		entryAt("late-but-serving", StatusInProgress, base.Add(30*time.Minute)),
	}

	Renumber(entries)

	assert.Equal(t, "late-but-serving", entries[0].ID)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "early-waiter", entries[1].ID)
	assert.Equal(t, 2, entries[1].Position)
}

func TestRenumberIsIdempotent(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []models.QueueEntry{
		entryAt("a", StatusWaiting, base),
		entryAt("b", StatusWaiting, base.Add(5*time.Minute)),
	}

	first := Renumber(entries)
	require.Len(t, first, 2)

	second := Renumber(entries)
	assert.Empty(t, second, "a second pass with no mutation must change nothing")
}

func TestRenumberAfterDeparture(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []models.QueueEntry{
		entryAt("a", StatusWaiting, base),
		entryAt("b", StatusWaiting, base.Add(5*time.Minute)),
		entryAt("c", StatusWaiting, base.Add(10*time.Minute)),
		entryAt("d", StatusWaiting, base.Add(15*time.Minute)),
	}
	Renumber(entries)

	// Entry at position 2 leaves; the survivors close the gap.
	remaining := []models.QueueEntry{entries[0], entries[2], entries[3]}
	changed := Renumber(remaining)

	require.Len(t, changed, 2, "only the two entries behind the gap move")
	assert.Equal(t, 1, remaining[0].Position)
	assert.Equal(t, 2, remaining[1].Position)
	assert.Equal(t, 30, remaining[1].EstimatedWait)
	assert.Equal(t, 3, remaining[2].Position)
	assert.Equal(t, 45, remaining[2].EstimatedWait)
}

func TestRenumberTiesBreakOnTicketID(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []models.QueueEntry{
		entryAt("zz", StatusWaiting, at),
		entryAt("aa", StatusWaiting, at),
	}

	Renumber(entries)

	assert.Equal(t, "aa", entries[0].ID)
	assert.Equal(t, "zz", entries[1].ID)
}

func TestRenumberEmptySet(t *testing.T) {
	assert.Empty(t, Renumber(nil))
	assert.Empty(t, Renumber([]models.QueueEntry{}))
}
