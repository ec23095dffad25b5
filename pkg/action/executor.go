package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/common"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// Executor executes actions in response to domain events.
type Executor struct {
	registry *Registry
}

// NewExecutor creates a new action executor.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry: registry,
	}
}

// Execute runs an action for an event, retrying it according to the
// action's retry policy.
func (e *Executor) Execute(ctx context.Context, actionID string, evt event.Event) (*ActionResult, error) {
	act := e.registry.Get(actionID)
	if act == nil {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
	}
	if !act.Config().Enabled {
		return nil, fmt.Errorf("%w: %s", ErrActionDisabled, actionID)
	}

	return e.run(ctx, act, evt)
}

func (e *Executor) run(ctx context.Context, act Action, evt event.Event) (*ActionResult, error) {
	scope := common.GetScopeFromContext(ctx, "action."+act.ID())
	defer scope.Finish()
	scope.SetAttributes("eventKind", string(evt.Kind))
	scope.SetAttributes("userID", evt.UserID)

	cfg := act.Config()
	start := time.Now()
	attempts := 0

	operation := func() error {
		attempts++
		err := act.Execute(scope.Ctx, evt)
		if errors.Is(err, ErrMissingUser) || errors.Is(err, ErrInvalidConfig) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		scope.TraceEvent(fmt.Sprintf("retry after %v", wait))
		scope.Log.Warnf("action %s attempt %d failed, retrying in %v: %v", act.ID(), attempts, wait, err)
	}

	scope.Log.Infof("executing action %s for %s (user: %s)", act.ID(), evt.Kind, evt.UserID)

	err := backoff.RetryNotify(operation, backoff.WithContext(cfg.Policy(), scope.Ctx), notify)
	ExecutionDuration.WithLabelValues(act.ID()).Observe(time.Since(start).Seconds())

	if err != nil {
		if attempts > 1 {
			err = fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, attempts, err)
		}
		scope.TraceError(err)
		scope.Log.Errorf("action %s failed: %v", act.ID(), err)
		ExecutionsTotal.WithLabelValues(act.ID(), "failure").Inc()
		return NewActionError(act.ID(), attempts, err), err
	}

	scope.Log.Infof("action %s completed successfully", act.ID())
	ExecutionsTotal.WithLabelValues(act.ID(), "success").Inc()
	return NewActionResult(act.ID(), attempts), nil
}

// ExecuteMultiple executes multiple actions in sequence.
// Disabled actions are skipped. If rollbackOnError is true, previously
// executed actions will be rolled back if a later action fails.
func (e *Executor) ExecuteMultiple(ctx context.Context, actionIDs []string, evt event.Event, rollbackOnError bool) ([]*ActionResult, error) {
	var results []*ActionResult
	var executedActions []Action

	for _, actionID := range actionIDs {
		act := e.registry.Get(actionID)
		if act == nil {
			err := fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
			logrus.Errorf("%v", err)

			if rollbackOnError && len(executedActions) > 0 {
				e.rollbackActions(ctx, executedActions, evt)
			}

			return results, err
		}
		if !act.Config().Enabled {
			logrus.Debugf("skipping disabled action %s", actionID)
			continue
		}

		result, err := e.run(ctx, act, evt)
		results = append(results, result)
		if err != nil {
			if rollbackOnError && len(executedActions) > 0 {
				e.rollbackActions(ctx, executedActions, evt)
			}

			return results, err
		}

		executedActions = append(executedActions, act)
	}

	return results, nil
}

// rollbackActions rolls back actions in reverse order.
func (e *Executor) rollbackActions(ctx context.Context, actions []Action, evt event.Event) {
	logrus.Warnf("rolling back %d actions", len(actions))

	for i := len(actions) - 1; i >= 0; i-- {
		act := actions[i]
		logrus.Infof("rolling back action %s", act.ID())

		err := act.Rollback(ctx, evt)
		switch {
		case errors.Is(err, ErrRollbackNotSupported):
			logrus.Warnf("action %s does not support rollback", act.ID())
		case err != nil:
			logrus.Errorf("failed to rollback action %s: %v", act.ID(), err)
		default:
			logrus.Infof("action %s rolled back successfully", act.ID())
		}
	}
}

// GetRegistry returns the action registry used by this executor.
func (e *Executor) GetRegistry() *Registry {
	return e.registry
}
