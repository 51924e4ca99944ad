package queue

import (
	"context"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/audit"
	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/httperr"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

type PrescribeInput struct {
	SessionID    string
	GurujiID     uint
	Name         string
	Instructions string
}

type Prescribe struct {
	repo  domain.Repository
	audit Auditor
}

func NewPrescribe(repo domain.Repository, auditor Auditor) *Prescribe {
	return &Prescribe{repo: repo, audit: auditor}
}

// Execute records a remedy against an open consultation session, which is
// what allows the session's entry to complete without a skip override.
func (uc *Prescribe) Execute(
	ctx context.Context,
	in PrescribeInput,
) (*models.Remedy, error) {

	session, err := uc.repo.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}
	if session.GurujiID != in.GurujiID {
		return nil, httperr.ErrBusiness(httperr.CodeNotYours)
	}
	if session.EndTime != nil {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}

	remedy := &models.Remedy{
		SessionID:    in.SessionID,
		Name:         in.Name,
		Instructions: in.Instructions,
		PrescribedBy: in.GurujiID,
	}

	if err := uc.repo.CreateRemedy(ctx, remedy); err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeStoreUnavailable)
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.GurujiID,
		Action:   "remedy_prescribed",
		Entity:   "remedy",
		EntityID: in.SessionID,
	})

	return remedy, nil
}
