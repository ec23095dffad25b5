package builtin

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
	"github.com/AccelByte/extend-resolve-challenge/pkg/service"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

const (
	// BroadcastActionType publishes the event on the user's Redis channel
	BroadcastActionType = "builtin.broadcast"
)

// BroadcastAction publishes the event as JSON on a Redis pub/sub channel so
// that connected clients can refresh their challenge screen.
type BroadcastAction struct {
	config    action.ActionConfig
	publisher RedisPublisher
	channel   func(userID string) string
}

// NewBroadcastAction creates a new broadcast action. The optional
// "channel_prefix" parameter overrides the default per-user channel.
func NewBroadcastAction(config action.ActionConfig, publisher RedisPublisher) (*BroadcastAction, error) {
	if publisher == nil {
		return nil, fmt.Errorf("%w: broadcast needs a redis client", action.ErrInvalidConfig)
	}

	channel := service.EventsChannel
	if prefix := config.GetParameterString("channel_prefix", ""); prefix != "" {
		channel = func(userID string) string { return prefix + userID }
	}

	return &BroadcastAction{
		config:    config,
		publisher: publisher,
		channel:   channel,
	}, nil
}

func (a *BroadcastAction) ID() string {
	return a.config.ID
}

func (a *BroadcastAction) Name() string {
	return "Broadcast Event"
}

func (a *BroadcastAction) Config() action.ActionConfig {
	return a.config
}

func (a *BroadcastAction) Execute(ctx context.Context, e event.Event) error {
	if e.UserID == "" {
		return action.ErrMissingUser
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	channel := a.channel(e.UserID)
	receivers, err := a.publisher.Publish(ctx, channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish on %s: %w", channel, err)
	}

	logrus.Debugf("broadcast %s on %s to %d receivers", e.Kind, channel, receivers)
	return nil
}

func (a *BroadcastAction) Rollback(ctx context.Context, e event.Event) error {
	return action.ErrRollbackNotSupported
}
