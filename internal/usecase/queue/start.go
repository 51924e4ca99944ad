package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/audit"
	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/events"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/httperr"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/notify"
)

type Start struct {
	repo      domain.Repository
	guard     *Guard
	broadcast Publisher
	audit     Auditor
	notify    Sender
}

func NewStart(
	repo domain.Repository,
	guard *Guard,
	broadcast Publisher,
	auditor Auditor,
	notifier Sender,
) *Start {
	return &Start{
		repo:      repo,
		guard:     guard,
		broadcast: broadcast,
		audit:     auditor,
		notify:    notifier,
	}
}

// Execute begins a consultation: the entry moves to in_progress, an
// unclaimed entry is claimed for gurujiID, and the session record is
// opened, atomically with the renumbering of the guruji's queue.
func (uc *Start) Execute(
	ctx context.Context,
	entryID string,
	gurujiID uint,
) (*models.QueueEntry, error) {

	unlock := uc.guard.Lock(gurujiID)
	defer unlock()

	now := time.Now()

	var entry *models.QueueEntry
	var session *models.ConsultationSession

	err := uc.repo.InTx(ctx, func(tx domain.Repository) error {

		var err error
		entry, err = tx.GetEntry(ctx, entryID)
		if err != nil {
			return httperr.ErrBusiness(httperr.CodeNotFound)
		}

		if err := domain.Start(entry, gurujiID, now); err != nil {
			return err
		}

		session = &models.ConsultationSession{
			ID:           uuid.NewString(),
			QueueEntryID: entry.ID,
			UserID:       entry.UserID,
			GurujiID:     gurujiID,
			StartTime:    now,
		}
		if err := tx.CreateSession(ctx, session); err != nil {
			return err
		}

		if err := tx.UpdateEntry(ctx, entry); err != nil {
			return err
		}

		return recalculate(ctx, tx, gurujiID)
	})
	if err != nil {
		return nil, err
	}

	uc.broadcast.Publish(events.Event{
		Type:           events.ConsultationStarted,
		EntityID:       entry.ID,
		Payload:        session,
		TargetUserID:   &entry.UserID,
		TargetGurujiID: entry.GurujiID,
	})
	uc.broadcast.Publish(events.Event{
		Type:           events.EntryUpdated,
		EntityID:       entry.ID,
		Payload:        entry,
		TargetUserID:   &entry.UserID,
		TargetGurujiID: entry.GurujiID,
	})

	uc.audit.Dispatch(audit.Event{
		UserID:   &gurujiID,
		Action:   "consultation_started",
		Entity:   "queue_entry",
		EntityID: entry.ID,
	})

	uc.notify.Send(notify.Message{
		UserID: entry.UserID,
		Title:  "Consultation starting",
		Body:   "Guruji is ready to see you now.",
	})

	return entry, nil
}
