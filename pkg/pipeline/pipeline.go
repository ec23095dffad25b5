package pipeline

import (
	"context"

	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"
)

// Check is one step a hook runs against the user's challenge.
type Check string

const (
	CheckSweep         Check = "sweep"
	CheckFailureReset  Check = "failure_reset"
	CheckScheduledTime Check = "scheduled_time"
	CheckDailyProgress Check = "daily_progress"
	CheckReminders     Check = "reminders"
)

// Checks lists every known check.
var Checks = []Check{CheckSweep, CheckFailureReset, CheckScheduledTime, CheckDailyProgress, CheckReminders}

// Valid reports whether c is a known check.
func (c Check) Valid() bool {
	for _, known := range Checks {
		if c == known {
			return true
		}
	}
	return false
}

// Checker runs the checks. *challenge.Manager implements it.
type Checker interface {
	Evaluate(ctx context.Context, userID string) (state.Outcome, error)
	CheckAndResetFailedChallenge(ctx context.Context, userID string) (bool, error)
	CheckScheduledTimeFailure(ctx context.Context, userID string) (state.Outcome, error)
	CheckDailyWatchingProgress(ctx context.Context, userID string) (bool, error)
	ArmReminders(ctx context.Context, userID string) error
}

// Route connects an event kind to the actions it triggers.
type Route struct {
	Event           event.Kind
	Actions         []string
	RollbackOnError bool
}

// NewRoute creates a route for the given event kind.
func NewRoute(kind event.Kind) *Route {
	return &Route{Event: kind}
}

// Then appends actions to the route.
func (r *Route) Then(actionIDs ...string) *Route {
	r.Actions = append(r.Actions, actionIDs...)
	return r
}

// WithRollback makes a failing action roll back the ones before it.
func (r *Route) WithRollback() *Route {
	r.RollbackOnError = true
	return r
}
