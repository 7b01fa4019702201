package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"advice-app/internal/config"

	"github.com/redis/rueidis"
)

// Compile-time check: RedisBroadcaster implements Broadcaster.
var _ Broadcaster = (*RedisBroadcaster)(nil)

// RedisBroadcaster publishes session progress over Redis pub/sub. Each advice
// session gets its own channel, advice_session_<id>.
type RedisBroadcaster struct {
	client rueidis.Client
}

// NewRedisBroadcaster creates a broadcaster backed by a rueidis client.
func NewRedisBroadcaster(cfg config.RedisConfig) (*RedisBroadcaster, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{cfg.Addr},
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return &RedisBroadcaster{client: client}, nil
}

// Channel returns the pub/sub channel name for a session.
func Channel(sessionID string) string {
	return "advice_session_" + sessionID
}

// PublishFragment publishes the running text after a fragment was appended.
func (b *RedisBroadcaster) PublishFragment(ctx context.Context, sessionID, runningText string) error {
	return b.publish(ctx, sessionID, Payload{
		Type:        KindFragmentAppended,
		SessionID:   sessionID,
		RunningText: runningText,
	})
}

// PublishFinal publishes the final text when a session stream ends.
func (b *RedisBroadcaster) PublishFinal(ctx context.Context, sessionID, finalText string) error {
	return b.publish(ctx, sessionID, Payload{
		Type:      KindSessionFinalized,
		SessionID: sessionID,
		FinalText: finalText,
	})
}

func (b *RedisBroadcaster) publish(ctx context.Context, sessionID string, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling broadcast payload: %w", err)
	}

	cmd := b.client.B().Publish().Channel(Channel(sessionID)).Message(string(data)).Build()
	if err := b.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("error publishing to %s: %w", Channel(sessionID), err)
	}
	return nil
}

// Close shuts down the underlying client.
func (b *RedisBroadcaster) Close() {
	b.client.Close()
}
