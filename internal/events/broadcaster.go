package events

import (
	"encoding/json"
	"log"
)

// Sink receives the serialized event for one topic. The websocket hub and
// the redis relay both implement it.
type Sink interface {
	Deliver(topic string, data []byte)
}

// Broadcaster fans typed events out to topic sinks from a worker goroutine.
// Publishing is fire-and-forget: a full buffer drops the event, a sink
// failure is the sink's problem, and the triggering mutation is never
// blocked or rolled back.
type Broadcaster struct {
	sinks []Sink
	queue chan Event
	done  chan struct{}
}

func NewBroadcaster(sinks ...Sink) *Broadcaster {
	b := &Broadcaster{
		sinks: sinks,
		queue: make(chan Event, 256),
		done:  make(chan struct{}),
	}

	go b.worker()
	return b
}

func (b *Broadcaster) worker() {
	defer close(b.done)
	for ev := range b.queue {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Println("events: marshal error:", err)
			continue
		}
		for _, topic := range ev.Topics() {
			for _, sink := range b.sinks {
				sink.Deliver(topic, data)
			}
		}
	}
}

// Publish enqueues an event without blocking the caller.
func (b *Broadcaster) Publish(ev Event) {
	select {
	case b.queue <- ev:
	default:
		log.Println("events: queue full, dropping", ev.Type, ev.EntityID)
	}
}

// Close drains the queue and stops the worker.
func (b *Broadcaster) Close() {
	close(b.queue)
	<-b.done
}
