package queue

import (
	"context"

	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
)

// recalculate loads one guruji's active set and persists fresh dense
// positions and wait estimates. It must run inside the same transaction as
// the mutation that disturbed the set; a failure here aborts the whole
// mutation so positions are never left inconsistent.
func recalculate(ctx context.Context, repo domain.Repository, gurujiID uint) error {
	entries, err := repo.ListActiveEntries(ctx, gurujiID)
	if err != nil {
		return err
	}

	changed := domain.Renumber(entries)
	if len(changed) == 0 {
		return nil
	}
	return repo.SaveEntryPositions(ctx, changed)
}
