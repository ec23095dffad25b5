package builtin

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
)

const (
	// RearmReminderActionType re-arms the user's alarm and deadline timers
	RearmReminderActionType = "builtin.rearm_reminder"
)

// RearmReminderAction refreshes the user's reminder timers from the stored
// settings, typically after the challenge changed state.
type RearmReminderAction struct {
	config    action.ActionConfig
	reminders ReminderArmer
}

// NewRearmReminderAction creates a new rearm reminder action.
func NewRearmReminderAction(config action.ActionConfig, reminders ReminderArmer) (*RearmReminderAction, error) {
	if reminders == nil {
		return nil, fmt.Errorf("%w: rearm reminder needs a reminder scheduler", action.ErrInvalidConfig)
	}

	return &RearmReminderAction{
		config:    config,
		reminders: reminders,
	}, nil
}

func (a *RearmReminderAction) ID() string {
	return a.config.ID
}

func (a *RearmReminderAction) Name() string {
	return "Re-arm Reminders"
}

func (a *RearmReminderAction) Config() action.ActionConfig {
	return a.config
}

func (a *RearmReminderAction) Execute(ctx context.Context, e event.Event) error {
	if e.UserID == "" {
		return action.ErrMissingUser
	}
	return a.reminders.ArmReminders(ctx, e.UserID)
}

func (a *RearmReminderAction) Rollback(ctx context.Context, e event.Event) error {
	return action.ErrRollbackNotSupported
}
