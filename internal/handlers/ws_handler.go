package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/events"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/middleware"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Subscribe upgrades the connection and registers it for the topics the
// viewer's role entitles it to. Each viewer type subscribes narrowly: a
// devotee to its own entries, a guruji to its queue, staff to their role
// feed. Staff may additionally watch one guruji's board via ?guruji_id=.
func (h *WSHandler) Subscribe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	topics := []string{events.UserTopic(userID)}
	switch role {
	case models.RoleGuruji:
		topics = append(topics, events.GurujiTopic(userID))
	case models.RoleCoordinator, models.RoleAdmin:
		topics = append(topics, events.RoleTopic(role))
		if v := c.Query("guruji_id"); v != "" {
			if id, err := strconv.ParseUint(v, 10, 32); err == nil {
				topics = append(topics, events.GurujiTopic(uint(id)))
			}
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	ws.NewClient(h.hub, conn, topics).Serve()
}
