package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the shared Pub/Sub channel every service listens on.
const DefaultChannel = "events"

// Envelope is the wire format of a domain event.
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// RedisPublisher publishes domain events to a Redis Pub/Sub channel.
// Delivery is at-most-once: a failed publish returns an error that callers
// may log and ignore, and the event is gone.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(addr, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		channel: channel,
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, eventType string, data any) error {
	payload, err := json.Marshal(Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("event: failed to marshal %s: %w", eventType, err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("event: failed to publish %s: %w", eventType, err)
	}

	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
