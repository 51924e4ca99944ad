package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/audit"
	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/events"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/httperr"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type JoinInput struct {
	UserID        uint
	GurujiID      *uint
	AppointmentID uint
	Priority      domain.Priority
	Reason        string
}

// ======================================================
// USE CASE
// ======================================================

type Join struct {
	repo      domain.Repository
	guard     *Guard
	users     *Guard
	broadcast Publisher
	audit     Auditor
}

func NewJoin(
	repo domain.Repository,
	guard *Guard,
	broadcast Publisher,
	auditor Auditor,
) *Join {
	return &Join{
		repo:      repo,
		guard:     guard,
		users:     NewGuard(),
		broadcast: broadcast,
		audit:     auditor,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *Join) Execute(
	ctx context.Context,
	in JoinInput,
) (*models.QueueEntry, error) {

	if in.Priority == "" {
		in.Priority = domain.PriorityNormal
	}

	// The user lock serializes the active-entry check against the insert,
	// so two joins for the same user cannot both pass the check. It is
	// taken before the guruji lock so lock order is the same everywhere.
	unlockUser := uc.users.Lock(in.UserID)
	defer unlockUser()

	if in.GurujiID != nil {
		unlock := uc.guard.Lock(*in.GurujiID)
		defer unlock()
	}

	now := time.Now()

	entry := &models.QueueEntry{
		ID:            uuid.NewString(),
		AppointmentID: in.AppointmentID,
		UserID:        in.UserID,
		GurujiID:      in.GurujiID,
		Status:        string(domain.InitialStatus()),
		Priority:      string(in.Priority),
		Reason:        in.Reason,
		CheckedInAt:   now,
	}

	var checkedIn *models.Appointment

	err := uc.repo.InTx(ctx, func(tx domain.Repository) error {

		// One active entry per user, system-wide.
		existing, err := tx.GetActiveEntryForUser(ctx, in.UserID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if existing != nil {
			return httperr.ErrBusiness(httperr.CodeAlreadyInQueue)
		}

		if in.AppointmentID != 0 {
			ap, err := tx.GetAppointment(ctx, in.AppointmentID)
			if err != nil {
				return httperr.ErrBusiness(httperr.CodeNotFound)
			}
			if ap.UserID != in.UserID {
				return httperr.ErrBusiness(httperr.CodePermissionDenied)
			}
			ap.Status = "checked_in"
			ap.CheckedInAt = &now
			if err := tx.UpdateAppointment(ctx, ap); err != nil {
				return err
			}
			checkedIn = ap
		}

		// Parked entries wait in the unassigned pool without a position
		// until a guruji claims them.
		if in.GurujiID != nil {
			count, err := tx.CountActiveEntries(ctx, *in.GurujiID)
			if err != nil {
				return err
			}
			entry.Position = int(count) + 1
			entry.EstimatedWait = entry.Position * domain.SlotMinutes
		}

		if err := tx.CreateEntry(ctx, entry); err != nil {
			// The partial unique index on active entries catches joins
			// racing from another instance.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return httperr.ErrBusiness(httperr.CodeAlreadyInQueue)
			}
			return err
		}

		if in.GurujiID != nil {
			return recalculate(ctx, tx, *in.GurujiID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.broadcast.Publish(events.Event{
		Type:           events.EntryAdded,
		EntityID:       entry.ID,
		Payload:        entry,
		TargetUserID:   &entry.UserID,
		TargetGurujiID: entry.GurujiID,
	})
	if checkedIn != nil {
		uc.broadcast.Publish(events.Event{
			Type:           events.AppointmentCheckedIn,
			EntityID:       entry.ID,
			Payload:        checkedIn,
			TargetUserID:   &entry.UserID,
			TargetGurujiID: entry.GurujiID,
		})
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "queue_joined",
		Entity:   "queue_entry",
		EntityID: entry.ID,
	})

	return entry, nil
}
