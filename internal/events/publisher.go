// Package events moves question change notifications through Redis Pub/Sub
// so every API instance can push them to its websocket subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gokatarajesh/trivia-api/internal/trivia"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "trivia:questions"

// redisPublisher is the subset of *redis.Client used for publishing.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher implements trivia.EventPublisher on Redis.
type Publisher struct {
	redis   redisPublisher
	channel string
}

var _ trivia.EventPublisher = (*Publisher)(nil)

func NewPublisher(client redisPublisher, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{redis: client, channel: channel}
}

func (p *Publisher) Publish(ctx context.Context, evt trivia.QuestionEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode question event: %w", err)
	}
	if err := p.redis.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish question event: %w", err)
	}
	return nil
}
