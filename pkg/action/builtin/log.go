package builtin

import (
	"context"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/common"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"

	"github.com/sirupsen/logrus"
)

const (
	// LogActionType writes the event to the log
	LogActionType = "builtin.log"
)

// LogAction writes a structured log line for the event.
type LogAction struct {
	config action.ActionConfig
	level  logrus.Level
}

// NewLogAction creates a new log action. The "level" parameter defaults to
// info.
func NewLogAction(config action.ActionConfig) *LogAction {
	return &LogAction{
		config: config,
		level:  common.ParseLogLevel(config.GetParameterString("level", "info")),
	}
}

func (a *LogAction) ID() string {
	return a.config.ID
}

func (a *LogAction) Name() string {
	return "Log Event"
}

func (a *LogAction) Config() action.ActionConfig {
	return a.config
}

func (a *LogAction) Execute(ctx context.Context, e event.Event) error {
	logrus.WithFields(logrus.Fields{
		"eventId": e.ID.String(),
		"kind":    e.Kind,
		"userId":  e.UserID,
		"reason":  e.Reason,
		"at":      e.At,
	}).Log(a.level, "challenge event")
	return nil
}

func (a *LogAction) Rollback(ctx context.Context, e event.Event) error {
	return action.ErrRollbackNotSupported
}
