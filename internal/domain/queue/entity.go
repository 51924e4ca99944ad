package queue

import (
	"time"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/httperr"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Start moves an entry to in_progress. An unclaimed entry is claimed for
// gurujiID atomically with the transition; an entry already claimed by a
// different guruji is refused.
func Start(e *models.QueueEntry, gurujiID uint, now time.Time) error {
	if err := CanStart(Status(e.Status)); err != nil {
		return err
	}

	if e.GurujiID != nil && *e.GurujiID != gurujiID {
		return httperr.ErrBusiness(httperr.CodeNotYours)
	}
	if e.GurujiID == nil {
		e.GurujiID = &gurujiID
	}

	e.Status = string(StatusInProgress)
	e.StartedAt = &now
	return nil
}

// Complete moves an in_progress entry to its terminal completed state.
// remedyCount is the number of remedies prescribed during the consultation
// session; completing with none requires an explicit skip.
func Complete(e *models.QueueEntry, remedyCount int64, skipRemedy bool, now time.Time) error {
	if err := CanComplete(Status(e.Status)); err != nil {
		return err
	}

	if remedyCount == 0 && !skipRemedy {
		return httperr.ErrBusiness(httperr.CodeRemedyRequired)
	}

	e.Status = string(StatusCompleted)
	e.CompletedAt = &now
	e.Position = 0
	e.EstimatedWait = 0
	return nil
}

// Cancel terminates an entry from waiting or in_progress.
func Cancel(e *models.QueueEntry, now time.Time) error {
	if err := CanCancel(Status(e.Status)); err != nil {
		return err
	}

	e.Status = string(StatusCancelled)
	e.CompletedAt = &now
	e.Position = 0
	e.EstimatedWait = 0
	return nil
}

// CloseSession stamps the session end and its duration in whole minutes.
func CloseSession(s *models.ConsultationSession, now time.Time) {
	s.EndTime = &now
	minutes := int(now.Sub(s.StartTime).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	s.DurationMinutes = &minutes
}
