package queue

import (
	"context"

	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

// ======================================================
// OUTPUT
// ======================================================

type Stats struct {
	WaitingCount    int `json:"waiting_count"`
	InProgressCount int `json:"in_progress_count"`
	AverageWait     int `json:"average_wait"`
}

type QueueSnapshot struct {
	Entries []models.QueueEntry `json:"entries"`
	Stats   Stats               `json:"stats"`
}

// ======================================================
// USE CASE
// ======================================================

type Snapshot struct {
	repo domain.Repository
}

func NewSnapshot(repo domain.Repository) *Snapshot {
	return &Snapshot{repo: repo}
}

// Execute is the poll/fetch contract: the filtered active entries in
// canonical order plus aggregate stats. This is the authoritative read the
// push channel is only ever a hint towards.
func (uc *Snapshot) Execute(
	ctx context.Context,
	filter domain.SnapshotFilter,
) (*QueueSnapshot, error) {

	entries, err := uc.repo.ListEntries(ctx, filter)
	if err != nil {
		return nil, err
	}

	domain.SortActive(entries)

	snap := &QueueSnapshot{Entries: entries}
	waitSum := 0
	for _, e := range entries {
		switch domain.Status(e.Status) {
		case domain.StatusWaiting:
			snap.Stats.WaitingCount++
			waitSum += e.EstimatedWait
		case domain.StatusInProgress:
			snap.Stats.InProgressCount++
		}
	}
	if snap.Stats.WaitingCount > 0 {
		snap.Stats.AverageWait = waitSum / snap.Stats.WaitingCount
	}

	return snap, nil
}
