package queue

import (
	"context"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

// SnapshotFilter narrows a queue read to one viewer's slice of the board.
type SnapshotFilter struct {
	GurujiID          *uint
	UserID            *uint
	IncludeUnassigned bool
}

type Repository interface {
	// InTx runs fn against a repository bound to one transaction. Every
	// mutating use case wraps its transition plus renumbering in one call
	// so no reader observes a transitioned-but-unrenumbered state.
	InTx(ctx context.Context, fn func(Repository) error) error

	// -------- Queue entries --------
	GetEntry(
		ctx context.Context,
		id string,
	) (*models.QueueEntry, error)

	GetActiveEntryForUser(
		ctx context.Context,
		userID uint,
	) (*models.QueueEntry, error)

	CountActiveEntries(
		ctx context.Context,
		gurujiID uint,
	) (int64, error)

	// ListActiveEntries loads the active set for one guruji, locking the
	// rows for update when called inside a transaction.
	ListActiveEntries(
		ctx context.Context,
		gurujiID uint,
	) ([]models.QueueEntry, error)

	ListEntries(
		ctx context.Context,
		filter SnapshotFilter,
	) ([]models.QueueEntry, error)

	CreateEntry(
		ctx context.Context,
		e *models.QueueEntry,
	) error

	UpdateEntry(
		ctx context.Context,
		e *models.QueueEntry,
	) error

	SaveEntryPositions(
		ctx context.Context,
		entries []models.QueueEntry,
	) error

	// -------- Appointments (collaborator) --------
	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Consultation sessions --------
	CreateSession(
		ctx context.Context,
		s *models.ConsultationSession,
	) error

	GetSession(
		ctx context.Context,
		id string,
	) (*models.ConsultationSession, error)

	GetSessionByEntry(
		ctx context.Context,
		entryID string,
	) (*models.ConsultationSession, error)

	UpdateSession(
		ctx context.Context,
		s *models.ConsultationSession,
	) error

	// -------- Remedies --------
	CreateRemedy(
		ctx context.Context,
		r *models.Remedy,
	) error

	CountRemediesBySession(
		ctx context.Context,
		sessionID string,
	) (int64, error)
}
