package builtin

import (
	"context"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/notify"

	"github.com/go-redis/redis/v8"
)

// DeviceLister returns a user's registered push tokens.
type DeviceLister interface {
	Devices(ctx context.Context, userID string) ([]string, error)
}

// RedisPublisher publishes a message on a pub/sub channel.
// *redis.Client satisfies it.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// ReminderArmer re-arms a user's reminder timers.
type ReminderArmer interface {
	ArmReminders(ctx context.Context, userID string) error
}

// Dependencies holds dependencies needed by built-in actions.
type Dependencies struct {
	Notifier  notify.Notifier
	Devices   DeviceLister
	Redis     RedisPublisher
	Reminders ReminderArmer
}

// RegisterActions registers built-in action factories with dependencies.
func RegisterActions(deps *Dependencies) {
	action.RegisterActionType(PushNotificationActionType, func(config action.ActionConfig) (action.Action, error) {
		return NewPushNotificationAction(config, deps.Notifier, deps.Devices)
	})

	action.RegisterActionType(BroadcastActionType, func(config action.ActionConfig) (action.Action, error) {
		return NewBroadcastAction(config, deps.Redis)
	})

	action.RegisterActionType(RearmReminderActionType, func(config action.ActionConfig) (action.Action, error) {
		return NewRearmReminderAction(config, deps.Reminders)
	})

	action.RegisterActionType(LogActionType, func(config action.ActionConfig) (action.Action, error) {
		return NewLogAction(config), nil
	})
}
