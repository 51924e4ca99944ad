package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

func TestSnapshotOrdersAndAggregates(t *testing.T) {
	repo := newFakeRepo()
	guruji := uint(5)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	serving := &models.QueueEntry{
		ID:          "serving",
		UserID:      50,
		GurujiID:    &guruji,
		Status:      string(domain.StatusInProgress),
		Position:    1,
		CheckedInAt: base.Add(-20 * time.Minute),
	}
	require.NoError(t, repo.CreateEntry(context.Background(), serving))

	for i, id := range []string{"a", "b"} {
		e := &models.QueueEntry{
			ID:            id,
			UserID:        uint(100 + i),
			GurujiID:      &guruji,
			Status:        string(domain.StatusWaiting),
			Position:      i + 2,
			EstimatedWait: (i + 2) * domain.SlotMinutes,
			CheckedInAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateEntry(context.Background(), e))
	}

	uc := NewSnapshot(repo)
	snap, err := uc.Execute(context.Background(), domain.SnapshotFilter{GurujiID: &guruji})
	require.NoError(t, err)

	require.Len(t, snap.Entries, 3)
	assert.Equal(t, "serving", snap.Entries[0].ID)
	assert.Equal(t, "a", snap.Entries[1].ID)
	assert.Equal(t, "b", snap.Entries[2].ID)

	assert.Equal(t, 2, snap.Stats.WaitingCount)
	assert.Equal(t, 1, snap.Stats.InProgressCount)
	// (30 + 45) / 2, integer division.
	assert.Equal(t, 37, snap.Stats.AverageWait)
}

func TestSnapshotFilterByUser(t *testing.T) {
	repo := newFakeRepo()
	guruji := uint(5)

	for i, user := range []uint{10, 11} {
		e := &models.QueueEntry{
			ID:       string(rune('a' + i)),
			UserID:   user,
			GurujiID: &guruji,
			Status:   string(domain.StatusWaiting),
		}
		require.NoError(t, repo.CreateEntry(context.Background(), e))
	}

	me := uint(11)
	uc := NewSnapshot(repo)
	snap, err := uc.Execute(context.Background(), domain.SnapshotFilter{UserID: &me})
	require.NoError(t, err)

	require.Len(t, snap.Entries, 1)
	assert.Equal(t, me, snap.Entries[0].UserID)
}

func TestSnapshotEmptyQueue(t *testing.T) {
	repo := newFakeRepo()
	guruji := uint(5)

	uc := NewSnapshot(repo)
	snap, err := uc.Execute(context.Background(), domain.SnapshotFilter{GurujiID: &guruji})
	require.NoError(t, err)

	assert.Empty(t, snap.Entries)
	assert.Zero(t, snap.Stats.WaitingCount)
	assert.Zero(t, snap.Stats.AverageWait)
}
