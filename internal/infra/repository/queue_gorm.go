package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

var activeStatuses = []string{
	string(domain.StatusWaiting),
	string(domain.StatusInProgress),
}

type QueueGormRepository struct {
	db *gorm.DB
}

func NewQueueGormRepository(db *gorm.DB) *QueueGormRepository {
	return &QueueGormRepository{db: db}
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *QueueGormRepository) InTx(
	ctx context.Context,
	fn func(domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&QueueGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Queue entries
// --------------------------------------------------

func (r *QueueGormRepository) GetEntry(
	ctx context.Context,
	id string,
) (*models.QueueEntry, error) {

	var entry models.QueueEntry
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *QueueGormRepository) GetActiveEntryForUser(
	ctx context.Context,
	userID uint,
) (*models.QueueEntry, error) {

	var entry models.QueueEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, activeStatuses).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *QueueGormRepository) CountActiveEntries(
	ctx context.Context,
	gurujiID uint,
) (int64, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.QueueEntry{}).
		Where("guruji_id = ? AND status IN ?", gurujiID, activeStatuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *QueueGormRepository) ListActiveEntries(
	ctx context.Context,
	gurujiID uint,
) ([]models.QueueEntry, error) {

	var entries []models.QueueEntry
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("guruji_id = ? AND status IN ?", gurujiID, activeStatuses).
		Order("position ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *QueueGormRepository) ListEntries(
	ctx context.Context,
	filter domain.SnapshotFilter,
) ([]models.QueueEntry, error) {

	q := r.db.WithContext(ctx).
		Preload("User").
		Where("status IN ?", activeStatuses)

	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.GurujiID != nil {
		q = q.Where("guruji_id = ?", *filter.GurujiID)
	} else if !filter.IncludeUnassigned {
		q = q.Where("guruji_id IS NOT NULL")
	}

	var entries []models.QueueEntry
	if err := q.Order("position ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *QueueGormRepository) CreateEntry(
	ctx context.Context,
	e *models.QueueEntry,
) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *QueueGormRepository) UpdateEntry(
	ctx context.Context,
	e *models.QueueEntry,
) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *QueueGormRepository) SaveEntryPositions(
	ctx context.Context,
	entries []models.QueueEntry,
) error {

	for _, e := range entries {
		if err := r.db.WithContext(ctx).
			Model(&models.QueueEntry{}).
			Where("id = ?", e.ID).
			Updates(map[string]any{
				"position":       e.Position,
				"estimated_wait": e.EstimatedWait,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (r *QueueGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *QueueGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

// --------------------------------------------------
// Consultation sessions
// --------------------------------------------------

func (r *QueueGormRepository) CreateSession(
	ctx context.Context,
	s *models.ConsultationSession,
) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *QueueGormRepository) GetSession(
	ctx context.Context,
	id string,
) (*models.ConsultationSession, error) {

	var s models.ConsultationSession
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *QueueGormRepository) GetSessionByEntry(
	ctx context.Context,
	entryID string,
) (*models.ConsultationSession, error) {

	var s models.ConsultationSession
	if err := r.db.WithContext(ctx).
		Where("queue_entry_id = ?", entryID).
		Order("created_at DESC").
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *QueueGormRepository) UpdateSession(
	ctx context.Context,
	s *models.ConsultationSession,
) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// --------------------------------------------------
// Remedies
// --------------------------------------------------

func (r *QueueGormRepository) CreateRemedy(
	ctx context.Context,
	remedy *models.Remedy,
) error {
	return r.db.WithContext(ctx).Create(remedy).Error
}

func (r *QueueGormRepository) CountRemediesBySession(
	ctx context.Context,
	sessionID string,
) (int64, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Remedy{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Compile-time check
var _ domain.Repository = (*QueueGormRepository)(nil)
