package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/common"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
	"github.com/AccelByte/extend-resolve-challenge/pkg/notify"

	"github.com/sirupsen/logrus"
)

const (
	// PushNotificationActionType sends the event to the user's devices
	PushNotificationActionType = "builtin.push_notification"
)

// defaultCopy is the notification text used when the action config sets
// no title or body.
var defaultCopy = map[event.Kind][2]string{
	event.KindFailureNotification: {"Challenge failed", "You missed a day. Continue now to keep your streak alive."},
	event.KindDailyReminder:       {"Time to watch", "Your daily video is waiting for you."},
	event.KindDailyWatchReminder:  {"Don't break your streak", "You haven't watched today's video yet."},
	event.KindUIReset:             {"New day, new start", "Your last challenge has been cleared."},
	event.KindStateChanged:        {"Resolve challenge", "Your challenge was updated."},
}

// PushNotificationAction delivers a push message for the event to every
// device the user registered.
type PushNotificationAction struct {
	config   action.ActionConfig
	notifier notify.Notifier
	devices  DeviceLister
	title    string
	body     string
	data     map[string]string
}

// NewPushNotificationAction creates a new push notification action.
func NewPushNotificationAction(config action.ActionConfig, notifier notify.Notifier, devices DeviceLister) (*PushNotificationAction, error) {
	if notifier == nil || devices == nil {
		return nil, fmt.Errorf("%w: push notification needs a notifier and a device store", action.ErrInvalidConfig)
	}

	return &PushNotificationAction{
		config:   config,
		notifier: notifier,
		devices:  devices,
		title:    config.GetParameterString("title", ""),
		body:     config.GetParameterString("body", ""),
		data:     config.GetParameterStringMap("data", nil),
	}, nil
}

func (a *PushNotificationAction) ID() string {
	return a.config.ID
}

func (a *PushNotificationAction) Name() string {
	return "Push Notification"
}

func (a *PushNotificationAction) Config() action.ActionConfig {
	return a.config
}

func (a *PushNotificationAction) Execute(ctx context.Context, e event.Event) error {
	if e.UserID == "" {
		return action.ErrMissingUser
	}

	tokens, err := a.devices.Devices(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	if len(tokens) == 0 {
		logrus.Debugf("no devices registered for user %s, skipping %s push", e.UserID, e.Kind)
		return nil
	}

	msg := a.message(e)
	if err := a.notifier.Notify(ctx, tokens, msg); err != nil {
		return err
	}

	masked := make([]string, len(tokens))
	for i, token := range tokens {
		masked[i] = common.MaskToken(token)
	}
	logrus.Infof("sent %s push to user %s devices %v", e.Kind, e.UserID, masked)
	return nil
}

func (a *PushNotificationAction) message(e event.Event) notify.Message {
	title, body := a.title, a.body
	if text, ok := defaultCopy[e.Kind]; ok {
		if title == "" {
			title = text[0]
		}
		if body == "" {
			body = text[1]
		}
	}

	r := strings.NewReplacer("{kind}", string(e.Kind), "{reason}", e.Reason, "{user}", e.UserID)

	data := map[string]string{
		"eventId": e.ID.String(),
		"kind":    string(e.Kind),
		"reason":  e.Reason,
	}
	for k, v := range a.data {
		data[k] = r.Replace(v)
	}

	return notify.Message{
		Title: r.Replace(title),
		Body:  r.Replace(body),
		Data:  data,
	}
}

func (a *PushNotificationAction) Rollback(ctx context.Context, e event.Event) error {
	return action.ErrRollbackNotSupported
}
