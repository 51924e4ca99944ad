package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/httpresp"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/middleware"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var notifications []models.Notification
	h.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications)

	httpresp.List(c, notifications)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	res := h.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)

	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification_not_found"})
		return
	}

	httpresp.OK(c, gin.H{"success": true})
}
