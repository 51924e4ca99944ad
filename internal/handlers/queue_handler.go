package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/httperr"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/middleware"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
	ucQueue "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/usecase/queue"
)

// ======================================================
// HANDLER
// ======================================================

type QueueHandler struct {
	joinUC      *ucQueue.Join
	startUC     *ucQueue.Start
	completeUC  *ucQueue.Complete
	cancelUC    *ucQueue.Cancel
	snapshotUC  *ucQueue.Snapshot
	prescribeUC *ucQueue.Prescribe
}

func NewQueueHandler(
	joinUC *ucQueue.Join,
	startUC *ucQueue.Start,
	completeUC *ucQueue.Complete,
	cancelUC *ucQueue.Cancel,
	snapshotUC *ucQueue.Snapshot,
	prescribeUC *ucQueue.Prescribe,
) *QueueHandler {
	return &QueueHandler{
		joinUC:      joinUC,
		startUC:     startUC,
		completeUC:  completeUC,
		cancelUC:    cancelUC,
		snapshotUC:  snapshotUC,
		prescribeUC: prescribeUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type JoinQueueRequest struct {
	GurujiID      *uint  `json:"guruji_id"`
	AppointmentID uint   `json:"appointment_id"`
	Priority      string `json:"priority"`
	Reason        string `json:"reason"`
}

type CompleteRequest struct {
	SkipRemedy bool `json:"skip_remedy"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type PrescribeRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Instructions string `json:"instructions"`
}

// ======================================================
// ERROR MAPPING
// ======================================================

func writeQueueError(c *gin.Context, err error) {
	be, ok := httperr.AsBusiness(err)
	if !ok {
		// Anything not typed is a failed store/recalculation unit.
		httperr.ServiceUnavailable(c, httperr.CodeStoreUnavailable, "Queue store unavailable, try again.")
		return
	}

	switch be.Code {
	case httperr.CodeAlreadyInQueue:
		httperr.Conflict(c, be.Code, "You already hold an active place in the queue.")
	case httperr.CodeInvalidTransition:
		httperr.BadRequest(c, be.Code, "This entry cannot move to the requested state.")
	case httperr.CodeNotYours:
		httperr.Forbidden(c, be.Code, "This entry belongs to another guruji.")
	case httperr.CodeRemedyRequired:
		c.JSON(http.StatusBadRequest, gin.H{
			"error_code":      be.Code,
			"message":         "Prescribe a remedy or complete with skip_remedy.",
			"requires_remedy": true,
		})
	case httperr.CodeNotFound:
		httperr.NotFound(c, be.Code, "Entry not found.")
	case httperr.CodePermissionDenied:
		httperr.Forbidden(c, be.Code, "Not allowed.")
	case httperr.CodeStoreUnavailable:
		httperr.ServiceUnavailable(c, be.Code, "Queue store unavailable, try again.")
	default:
		httperr.BadRequest(c, be.Code, "Request refused.")
	}
}

// ======================================================
// MUTATIONS
// ======================================================

func (h *QueueHandler) Join(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	entry, err := h.joinUC.Execute(c.Request.Context(), ucQueue.JoinInput{
		UserID:        userID,
		GurujiID:      req.GurujiID,
		AppointmentID: req.AppointmentID,
		Priority:      domain.Priority(req.Priority),
		Reason:        req.Reason,
	})
	if err != nil {
		writeQueueError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "entry": entry})
}

func (h *QueueHandler) Start(c *gin.Context) {
	gurujiID := c.MustGet(middleware.ContextUserID).(uint)
	entryID := c.Param("id")

	entry, err := h.startUC.Execute(c.Request.Context(), entryID, gurujiID)
	if err != nil {
		writeQueueError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

func (h *QueueHandler) Complete(c *gin.Context) {
	gurujiID := c.MustGet(middleware.ContextUserID).(uint)
	entryID := c.Param("id")

	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	entry, err := h.completeUC.Execute(c.Request.Context(), ucQueue.CompleteInput{
		EntryID:    entryID,
		GurujiID:   gurujiID,
		SkipRemedy: req.SkipRemedy,
	})
	if err != nil {
		writeQueueError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

func (h *QueueHandler) Cancel(c *gin.Context) {
	actorID := c.MustGet(middleware.ContextUserID).(uint)
	actorRole := c.MustGet(middleware.ContextUserRole).(string)
	entryID := c.Param("id")

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	entry, err := h.cancelUC.Execute(c.Request.Context(), ucQueue.CancelInput{
		EntryID:   entryID,
		ActorID:   actorID,
		ActorRole: actorRole,
		Reason:    req.Reason,
	})
	if err != nil {
		writeQueueError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

func (h *QueueHandler) Prescribe(c *gin.Context) {
	gurujiID := c.MustGet(middleware.ContextUserID).(uint)

	var req PrescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	remedy, err := h.prescribeUC.Execute(c.Request.Context(), ucQueue.PrescribeInput{
		SessionID:    req.SessionID,
		GurujiID:     gurujiID,
		Name:         req.Name,
		Instructions: req.Instructions,
	})
	if err != nil {
		writeQueueError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "remedy": remedy})
}

// ======================================================
// SNAPSHOT (poll/fetch contract)
// ======================================================

func (h *QueueHandler) Fetch(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	var filter domain.SnapshotFilter

	switch role {
	case models.RoleDevotee:
		filter.UserID = &userID
	case models.RoleGuruji:
		filter.GurujiID = &userID
	default:
		// Coordinators and admins see the full board, including the
		// unassigned pool, optionally narrowed to one guruji.
		filter.IncludeUnassigned = true
		if v := c.Query("guruji_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				httperr.BadRequest(c, "invalid_guruji_id", "Invalid guruji id.")
				return
			}
			g := uint(id)
			filter.GurujiID = &g
			filter.IncludeUnassigned = false
		}
	}

	snap, err := h.snapshotUC.Execute(c.Request.Context(), filter)
	if err != nil {
		writeQueueError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}
