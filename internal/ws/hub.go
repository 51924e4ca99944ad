package ws

import (
	"sync"
)

// Hub tracks websocket clients grouped by subscription topic. A client may
// subscribe to several topics (its own user topic, a guruji topic, a role
// topic, global), and delivery is per matching topic: a client whose topics
// overlap an event's fan-out can receive the same frame more than once.
// Frames are change hints, not state, so duplicates are harmless and not
// worth a dedup pass on the hot path.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	mu         sync.RWMutex
}

type delivery struct {
	topic string
	data  []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
	}
}

// Run processes the hub channels. Start it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			for _, topic := range client.Topics {
				if h.clients[topic] == nil {
					h.clients[topic] = make(map[*Client]bool)
				}
				h.clients[topic][client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			removed := false
			for _, topic := range client.Topics {
				if clients, ok := h.clients[topic]; ok {
					if _, ok := clients[client]; ok {
						delete(clients, client)
						removed = true
						if len(clients) == 0 {
							delete(h.clients, topic)
						}
					}
				}
			}
			if removed {
				close(client.send)
			}
			h.mu.Unlock()

		case d := <-h.deliver:
			h.mu.RLock()
			for client := range h.clients[d.topic] {
				select {
				case client.send <- d.data:
				default:
					// Slow consumer; drop it, polling will catch it up.
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Deliver implements events.Sink. It never blocks the broadcaster: when the
// hub is saturated the payload is dropped and subscribers reconcile on
// their next poll.
func (h *Hub) Deliver(topic string, data []byte) {
	select {
	case h.deliver <- delivery{topic: topic, data: data}:
	default:
	}
}
