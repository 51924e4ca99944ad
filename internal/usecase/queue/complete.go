package queue

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/audit"
	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/events"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/httperr"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/notify"
)

// ======================================================
// INPUT
// ======================================================

type CompleteInput struct {
	EntryID    string
	GurujiID   uint
	SkipRemedy bool
}

// ======================================================
// USE CASE
// ======================================================

type Complete struct {
	repo      domain.Repository
	guard     *Guard
	broadcast Publisher
	audit     Auditor
	notify    Sender
}

func NewComplete(
	repo domain.Repository,
	guard *Guard,
	broadcast Publisher,
	auditor Auditor,
	notifier Sender,
) *Complete {
	return &Complete{
		repo:      repo,
		guard:     guard,
		broadcast: broadcast,
		audit:     auditor,
		notify:    notifier,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute closes a consultation. Unless the caller explicitly skips it, the
// session must have at least one prescribed remedy; the refusal is typed so
// the caller can prescribe one and retry.
func (uc *Complete) Execute(
	ctx context.Context,
	in CompleteInput,
) (*models.QueueEntry, error) {

	unlock := uc.guard.Lock(in.GurujiID)
	defer unlock()

	now := time.Now()

	var entry *models.QueueEntry
	var session *models.ConsultationSession
	var appointment *models.Appointment

	err := uc.repo.InTx(ctx, func(tx domain.Repository) error {

		var err error
		entry, err = tx.GetEntry(ctx, in.EntryID)
		if err != nil {
			return httperr.ErrBusiness(httperr.CodeNotFound)
		}

		if entry.GurujiID == nil || *entry.GurujiID != in.GurujiID {
			return httperr.ErrBusiness(httperr.CodeNotYours)
		}

		session, err = tx.GetSessionByEntry(ctx, entry.ID)
		if err != nil {
			return httperr.ErrBusiness(httperr.CodeNotFound)
		}

		remedies, err := tx.CountRemediesBySession(ctx, session.ID)
		if err != nil {
			return err
		}

		if err := domain.Complete(entry, remedies, in.SkipRemedy, now); err != nil {
			return err
		}

		domain.CloseSession(session, now)
		if err := tx.UpdateSession(ctx, session); err != nil {
			return err
		}

		if err := tx.UpdateEntry(ctx, entry); err != nil {
			return err
		}

		if entry.AppointmentID != 0 {
			appointment, err = tx.GetAppointment(ctx, entry.AppointmentID)
			switch {
			case err == nil:
				appointment.Status = "completed"
				appointment.CompletedAt = &now
				if err := tx.UpdateAppointment(ctx, appointment); err != nil {
					return err
				}
			case err == gorm.ErrRecordNotFound:
				// A dangling appointment reference does not block the
				// consultation from closing.
				appointment = nil
			default:
				return err
			}
		}

		return recalculate(ctx, tx, in.GurujiID)
	})
	if err != nil {
		return nil, err
	}

	uc.broadcast.Publish(events.Event{
		Type:           events.ConsultationEnded,
		EntityID:       entry.ID,
		Payload:        session,
		TargetUserID:   &entry.UserID,
		TargetGurujiID: entry.GurujiID,
	})
	uc.broadcast.Publish(events.Event{
		Type:           events.EntryRemoved,
		EntityID:       entry.ID,
		Payload:        entry,
		TargetUserID:   &entry.UserID,
		TargetGurujiID: entry.GurujiID,
	})
	if appointment != nil {
		uc.broadcast.Publish(events.Event{
			Type:           events.AppointmentCompleted,
			EntityID:       entry.ID,
			Payload:        appointment,
			TargetUserID:   &entry.UserID,
			TargetGurujiID: entry.GurujiID,
		})
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.GurujiID,
		Action:   "consultation_completed",
		Entity:   "queue_entry",
		EntityID: entry.ID,
		Metadata: map[string]any{"skip_remedy": in.SkipRemedy},
	})

	uc.notify.Send(notify.Message{
		UserID: entry.UserID,
		Title:  "Consultation complete",
		Body:   "Thank you for visiting. Your remedies are available in the app.",
	})

	return entry, nil
}
