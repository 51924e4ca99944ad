package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const relayChannel = "ashram.queue.events"

type relayFrame struct {
	Origin string          `json:"origin"`
	Topic  string          `json:"topic"`
	Data   json.RawMessage `json:"data"`
}

// RedisRelay mirrors locally published events to sibling API instances over
// redis pub/sub, so a viewer connected to any instance sees every change.
// Frames carry the origin instance id; a relay ignores its own frames.
type RedisRelay struct {
	client *redis.Client
	origin string
	local  Sink
	cancel context.CancelFunc
}

func NewRedisRelay(client *redis.Client, local Sink) *RedisRelay {
	return &RedisRelay{
		client: client,
		origin: uuid.NewString(),
		local:  local,
	}
}

// Deliver publishes one topic frame to redis. Failures are logged only;
// the local hub already received the event directly.
func (r *RedisRelay) Deliver(topic string, data []byte) {
	frame := relayFrame{Origin: r.origin, Topic: topic, Data: data}
	b, err := json.Marshal(frame)
	if err != nil {
		log.Println("relay: marshal error:", err)
		return
	}
	if err := r.client.Publish(context.Background(), relayChannel, b).Err(); err != nil {
		log.Println("relay: publish error:", err)
	}
}

// Run subscribes to the relay channel and feeds foreign frames into the
// local sink until the context is cancelled.
func (r *RedisRelay) Run(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	pubsub := r.client.Subscribe(ctx, relayChannel)

	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var frame relayFrame
				if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
					log.Println("relay: bad frame:", err)
					continue
				}
				if frame.Origin == r.origin {
					continue
				}
				r.local.Deliver(frame.Topic, frame.Data)
			}
		}
	}()
}

func (r *RedisRelay) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}
