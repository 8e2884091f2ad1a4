package event_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/microshop/order-service/internal/event"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a running Redis, e.g. TEST_REDIS_ADDR=localhost:6379.
func TestRedisPublisher_Publish(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set, skipping Redis integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := redis.NewClient(&redis.Options{Addr: addr})
	defer sub.Close()

	pubsub := sub.Subscribe(ctx, "events-test")
	defer pubsub.Close()

	// wait for the subscription to be active before publishing
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	p := event.NewRedisPublisher(addr, "events-test")
	defer p.Close()

	err = p.Publish(ctx, "order.created", map[string]any{"order_id": "abc", "user_id": 42})
	require.NoError(t, err)

	msg, err := pubsub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var envelope event.Envelope
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &envelope))
	assert.Equal(t, "order.created", envelope.Type)
	assert.WithinDuration(t, time.Now().UTC(), envelope.Timestamp, time.Minute)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "abc", data["order_id"])
}

func TestRedisPublisher_PublishUnreachable(t *testing.T) {
	p := event.NewRedisPublisher("localhost:1", "events-test")
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := p.Publish(ctx, "order.created", map[string]any{"order_id": "abc"})
	assert.Error(t, err)
}
