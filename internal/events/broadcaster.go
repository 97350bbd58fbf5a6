package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/trivia"
	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

// Broadcaster listens for question events on Redis and forwards them to all
// websocket subscribers of this instance.
type Broadcaster struct {
	redis   *redis.Client
	hub     *ws.Hub
	channel string
	logger  zerolog.Logger
}

func NewBroadcaster(client *redis.Client, hub *ws.Hub, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broadcaster{
		redis:   client,
		hub:     hub,
		channel: channel,
		logger:  logger.With().Str("component", "question_broadcaster").Logger(),
	}
}

// Run subscribes to the event channel and blocks until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.hub == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(payload string) {
	msg, err := toWSMessage(payload)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode question event payload")
		return
	}
	if err := b.hub.BroadcastAll(msg); err != nil {
		b.logger.Warn().Err(err).Str("type", msg.Type).Msg("failed to broadcast question event")
	}
}

func toWSMessage(payload string) (ws.Message, error) {
	var evt trivia.QuestionEvent
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return ws.Message{}, err
	}
	msgType := ws.TypeQuestionCreated
	if evt.Type == trivia.EventQuestionDeleted {
		msgType = ws.TypeQuestionDeleted
	}
	return ws.NewMessage(msgType, evt)
}
