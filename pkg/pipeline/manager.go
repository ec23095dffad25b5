package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"

	"github.com/sirupsen/logrus"
)

// Manager orchestrates the lifecycle pipeline:
// Hook → Checks → Events → Actions
type Manager struct {
	checker  Checker
	executor *action.Executor
	hooks    map[string][]Check
	routes   map[event.Kind][]*Route
}

// CheckResult is the outcome of one check of a hook.
type CheckResult struct {
	Check   Check  `json:"check"`
	Outcome string `json:"outcome"`
}

// HookResult lists what each check of a hook did, in order.
type HookResult struct {
	Hook   string        `json:"hook"`
	Checks []CheckResult `json:"checks"`
}

// NewManager creates a new pipeline manager from a validated config.
func NewManager(checker Checker, executor *action.Executor, config *Config) *Manager {
	m := &Manager{
		checker:  checker,
		executor: executor,
		hooks:    make(map[string][]Check),
		routes:   make(map[event.Kind][]*Route),
	}

	for hookID, checks := range config.Hooks {
		m.hooks[hookID] = append([]Check(nil), checks...)
	}

	for _, rc := range config.Routes {
		route := NewRoute(rc.Event).Then(rc.Actions...)
		if rc.RollbackOnError {
			route.WithRollback()
		}
		m.AddRoute(route)
	}

	return m
}

// AddRoute registers a route.
func (m *Manager) AddRoute(r *Route) {
	m.routes[r.Event] = append(m.routes[r.Event], r)
}

// Hooks returns the configured hook IDs, sorted.
func (m *Manager) Hooks() []string {
	ids := make([]string, 0, len(m.hooks))
	for id := range m.hooks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RunHook runs the checks configured for hookID against the user's
// challenge, stopping at the first error.
func (m *Manager) RunHook(ctx context.Context, hookID, userID string) (*HookResult, error) {
	checks, ok := m.hooks[hookID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHook, hookID)
	}

	log := logrus.WithFields(logrus.Fields{"hook": hookID, "user_id": userID})
	log.Debugf("running %d checks", len(checks))

	result := &HookResult{Hook: hookID, Checks: make([]CheckResult, 0, len(checks))}
	for _, check := range checks {
		outcome, err := m.runCheck(ctx, check, userID)
		if err != nil {
			log.WithField("check", check).Warnf("hook check failed: %v", err)
			return result, fmt.Errorf("hook %s check %s: %w", hookID, check, err)
		}
		result.Checks = append(result.Checks, CheckResult{Check: check, Outcome: outcome})
	}

	log.Infof("hook completed: %v", result.Checks)
	return result, nil
}

func (m *Manager) runCheck(ctx context.Context, check Check, userID string) (string, error) {
	switch check {
	case CheckSweep:
		outcome, err := m.checker.Evaluate(ctx, userID)
		return string(outcome), err
	case CheckFailureReset:
		reset, err := m.checker.CheckAndResetFailedChallenge(ctx, userID)
		return "reset=" + strconv.FormatBool(reset), err
	case CheckScheduledTime:
		outcome, err := m.checker.CheckScheduledTimeFailure(ctx, userID)
		return string(outcome), err
	case CheckDailyProgress:
		due, err := m.checker.CheckDailyWatchingProgress(ctx, userID)
		return "reminded=" + strconv.FormatBool(due), err
	case CheckReminders:
		return "armed", m.checker.ArmReminders(ctx, userID)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCheck, check)
	}
}

// HandleEvent executes the actions routed for the event's kind.
func (m *Manager) HandleEvent(ctx context.Context, e event.Event) error {
	routes := m.routes[e.Kind]
	if len(routes) == 0 {
		logrus.Debugf("no route for event %s", e.Kind)
		return nil
	}

	var errs []error
	for _, route := range routes {
		results, err := m.executor.ExecuteMultiple(ctx, route.Actions, e, route.RollbackOnError)
		if err != nil {
			errs = append(errs, err)
		}

		successCount, failureCount := 0, 0
		for _, result := range results {
			if result.Error != nil {
				failureCount++
			} else {
				successCount++
			}
		}

		logrus.WithFields(logrus.Fields{
			"event":         e.Kind,
			"user_id":       e.UserID,
			"success_count": successCount,
			"failure_count": failureCount,
		}).Info("route execution completed")
	}

	return errors.Join(errs...)
}

// Subscribe registers HandleEvent on the dispatcher for every routed kind.
func (m *Manager) Subscribe(d *event.Dispatcher) {
	for kind := range m.routes {
		d.Subscribe(kind, m.HandleEvent)
		logrus.Infof("subscribed %d routes to %s", len(m.routes[kind]), kind)
	}
}
