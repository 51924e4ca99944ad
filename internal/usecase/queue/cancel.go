package queue

import (
	"context"
	"time"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/audit"
	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/events"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/httperr"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CancelInput struct {
	EntryID   string
	ActorID   uint
	ActorRole string
	Reason    string
}

// ======================================================
// USE CASE
// ======================================================

type Cancel struct {
	repo      domain.Repository
	guard     *Guard
	broadcast Publisher
	audit     Auditor
}

func NewCancel(
	repo domain.Repository,
	guard *Guard,
	broadcast Publisher,
	auditor Auditor,
) *Cancel {
	return &Cancel{
		repo:      repo,
		guard:     guard,
		broadcast: broadcast,
		audit:     auditor,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *Cancel) Execute(
	ctx context.Context,
	in CancelInput,
) (*models.QueueEntry, error) {

	// A devotee may leave their own place; staff may cancel any entry.
	probe, err := uc.repo.GetEntry(ctx, in.EntryID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}
	if in.ActorRole == models.RoleDevotee && probe.UserID != in.ActorID {
		return nil, httperr.ErrBusiness(httperr.CodePermissionDenied)
	}

	if probe.GurujiID != nil {
		unlock := uc.guard.Lock(*probe.GurujiID)
		defer unlock()
	}

	now := time.Now()

	var entry *models.QueueEntry

	err = uc.repo.InTx(ctx, func(tx domain.Repository) error {

		entry, err = tx.GetEntry(ctx, in.EntryID)
		if err != nil {
			return httperr.ErrBusiness(httperr.CodeNotFound)
		}

		if err := domain.Cancel(entry, now); err != nil {
			return err
		}

		if err := tx.UpdateEntry(ctx, entry); err != nil {
			return err
		}

		if entry.GurujiID != nil {
			return recalculate(ctx, tx, *entry.GurujiID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.broadcast.Publish(events.Event{
		Type:           events.EntryRemoved,
		EntityID:       entry.ID,
		Payload:        entry,
		TargetUserID:   &entry.UserID,
		TargetGurujiID: entry.GurujiID,
	})

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.ActorID,
		Action:   "queue_cancelled",
		Entity:   "queue_entry",
		EntityID: entry.ID,
		Metadata: map[string]any{"reason": in.Reason},
	})

	return entry, nil
}
