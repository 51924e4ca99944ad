package notify

import (
	"log"

	"gorm.io/gorm"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

type Message struct {
	UserID uint
	Title  string
	Body   string
}

// Notifier persists user notifications from a worker goroutine. Sending is
// fire-and-forget: a full queue drops the notification, and delivery
// failures never reach the mutation that triggered them.
type Notifier struct {
	db    *gorm.DB
	queue chan Message
}

func New(db *gorm.DB) *Notifier {
	n := &Notifier{
		db:    db,
		queue: make(chan Message, 100),
	}

	go n.worker()
	return n
}

func (n *Notifier) worker() {
	for msg := range n.queue {
		rec := models.Notification{
			UserID:  msg.UserID,
			Title:   msg.Title,
			Message: msg.Body,
		}
		if err := n.db.Create(&rec).Error; err != nil {
			log.Println("notify error:", err)
		}
	}
}

func (n *Notifier) Send(msg Message) {
	select {
	case n.queue <- msg:
	default:
		log.Println("notify queue full, dropping message")
	}
}
