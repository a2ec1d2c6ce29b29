package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel match events are published on.
const DefaultChannel = "EVENT_MATCH"

// Event is the JSON message published for each notification.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Kind      Kind      `json:"kind"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// RedisPublisher publishes notifications for downstream delivery services.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	now     func() time.Time
}

// NewRedisPublisher returns a publisher on channel, or DefaultChannel when empty.
func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel, now: time.Now}
}

// NewRedisClient parses redisURL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// Notify implements Dispatcher.
func (p *RedisPublisher) Notify(ctx context.Context, userID int64, kind Kind, payload Payload) error {
	title, message := Render(kind, payload)
	event, err := json.Marshal(Event{
		ID:        uuid.NewString(),
		Type:      "NOTIFICATION",
		Kind:      kind,
		UserID:    userID,
		Title:     title,
		Message:   message,
		Payload:   payload,
		CreatedAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, event).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}
