package propagation

import (
	"context"
	"encoding/json"
	"fmt"

	"venuebook/models"

	"github.com/go-redis/redis/v8"
)

// Channel is the redis Pub/Sub channel carrying availability events.
const Channel = "calendar:updates"

// Publisher broadcasts availability changes to connected viewers.
// Delivery is at-most-once and best-effort: no acknowledgment, no retry,
// no backlog for disconnected viewers. Polling is the correctness path;
// this is a latency optimization.
type Publisher interface {
	PublishAvailability(ctx context.Context, ev models.AvailabilityEvent) error
}

// RedisPublisher publishes events over redis Pub/Sub so every server
// instance's websocket hub can fan them out.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) PublishAvailability(ctx context.Context, ev models.AvailabilityEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal availability event: %w", err)
	}
	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish availability event: %w", err)
	}
	return nil
}
