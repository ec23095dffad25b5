// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"
	"github.com/AccelByte/extend-resolve-challenge/pkg/clock"
	"github.com/AccelByte/extend-resolve-challenge/pkg/common"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
	"github.com/AccelByte/extend-resolve-challenge/pkg/reminder"
	"github.com/AccelByte/extend-resolve-challenge/pkg/service"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// Config tunes the manager.
type Config struct {
	// DefaultLocation is used for users without a valid region.
	DefaultLocation *time.Location
	// Grace is how long after the playback time a video may still start.
	Grace time.Duration
	// WarningHours are the local hours at which an unwatched day gets a
	// progress warning.
	WarningHours []int
	// CommitRetries bounds re-reads after a concurrent write.
	CommitRetries uint64
}

// DefaultWarningHours are the hours the app warns about an unwatched day.
var DefaultWarningHours = []int{12, 15, 18, 21}

func (c *Config) setDefaults() {
	if c.DefaultLocation == nil {
		c.DefaultLocation = time.UTC
	}
	if c.Grace <= 0 {
		c.Grace = state.DefaultGrace
	}
	if c.WarningHours == nil {
		c.WarningHours = DefaultWarningHours
	}
	if c.CommitRetries == 0 {
		c.CommitRetries = 5
	}
}

// Dependencies are the collaborators of a Manager. Reminders may be nil, in
// which case no timers are armed.
type Dependencies struct {
	Clock      clock.Clock
	Challenges service.ChallengeStore
	Ledger     service.CreditLedger
	Settings   service.SettingsStore
	History    service.WatchHistory
	Publisher  event.Publisher
	Reminders  *reminder.Scheduler
}

// Manager runs the challenge state machine for many users. Every operation
// holds the user's lock for its whole read-modify-write and publishes
// events only after the write is durable.
type Manager struct {
	clock      clock.Clock
	challenges service.ChallengeStore
	ledger     service.CreditLedger
	settings   service.SettingsStore
	history    service.WatchHistory
	publisher  event.Publisher
	reminders  *reminder.Scheduler

	cfg   Config
	locks *userLocks
}

// NewManager creates a manager.
func NewManager(deps Dependencies, cfg Config) *Manager {
	cfg.setDefaults()

	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &Manager{
		clock:      clk,
		challenges: deps.Challenges,
		ledger:     deps.Ledger,
		settings:   deps.Settings,
		history:    deps.History,
		publisher:  deps.Publisher,
		reminders:  deps.Reminders,
		cfg:        cfg,
		locks:      newUserLocks(),
	}
}

// env is what a transition reads besides the challenge itself.
type env struct {
	now      time.Time
	loc      *time.Location
	settings *service.Settings
}

func (e *env) today() calendar.Day {
	return calendar.DayOf(e.now, e.loc)
}

// plan is the outcome of a transition: what to write, what to announce and
// what to return to the caller once written.
type plan struct {
	mutation service.Mutation
	events   []event.Event
	reason   string
	err      error
}

type transition func(cur, work *state.Challenge, e *env) (plan, error)

func (m *Manager) env(ctx context.Context, userID string) (*env, error) {
	settings, err := m.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &env{
		now:      m.clock.Now(),
		loc:      calendar.ResolveRegion(settings.Region, m.cfg.DefaultLocation),
		settings: settings,
	}, nil
}

// update runs fn on a copy of the current challenge and commits the plan.
// A concurrent write or a balance that changed under the plan makes it
// re-read and re-plan.
func (m *Manager) update(ctx context.Context, userID string, fn transition) error {
	var result plan

	operation := func() error {
		e, err := m.env(ctx, userID)
		if err != nil {
			return backoff.Permanent(err)
		}
		cur, err := m.challenges.GetChallenge(ctx, userID)
		if err != nil {
			return backoff.Permanent(err)
		}

		p, err := fn(cur, state.Clone(cur), e)
		if err != nil {
			return backoff.Permanent(err)
		}

		if !p.mutation.Empty() {
			p.mutation.Expected = cur
			err := m.challenges.Commit(ctx, userID, p.mutation)
			if errors.Is(err, service.ErrConflict) || errors.Is(err, service.ErrInsufficientCredits) {
				logrus.Debugf("challenge commit for user %s must be re-planned: %v", userID, err)
				return err
			}
			if err != nil {
				return backoff.Permanent(err)
			}
		}

		result = p
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(b, m.cfg.CommitRetries), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return err
	}

	m.observe(result)
	if len(result.events) > 0 {
		m.publisher.Publish(ctx, result.events...)
	}
	return result.err
}

func (m *Manager) observe(p plan) {
	if p.reason != "" {
		status := state.StatusAbsent
		if !p.mutation.Delete && p.mutation.Challenge != nil {
			status = p.mutation.Challenge.Status()
		}
		TransitionsTotal.WithLabelValues(string(status), p.reason).Inc()
	}
	if p.mutation.Debit > 0 {
		CreditsMovedTotal.WithLabelValues("debit").Add(float64(p.mutation.Debit))
	}
	if p.mutation.Credit > 0 {
		CreditsMovedTotal.WithLabelValues("refund").Add(float64(p.mutation.Credit))
	}
}

// run wraps an operation in a trace scope and the user's lock.
func (m *Manager) run(ctx context.Context, name, userID string, fn func(scope *common.Scope) error) error {
	if userID == "" {
		return fmt.Errorf("%s: empty user ID: %w", name, ErrInvalidArgument)
	}

	scope := common.GetScopeFromContext(ctx, "challenge."+name).ForUser(userID)
	defer scope.Finish()

	unlock := m.locks.lock(userID)
	defer unlock()

	if err := fn(scope); err != nil {
		if !errors.Is(err, ErrInsufficientCredits) && !errors.Is(err, ErrInvalidTransition) && !errors.Is(err, ErrInvalidArgument) {
			scope.TraceError(err)
			scope.Log.Errorf("%s failed: %v", name, err)
		}
		OperationErrorsTotal.WithLabelValues(name).Inc()
		return err
	}
	return nil
}

func (m *Manager) newEvent(kind event.Kind, userID, reason string, at time.Time) event.Event {
	return event.New(kind, userID, reason, at)
}

// failureEvents announces a Failed transition.
func (m *Manager) failureEvents(userID string, outcome state.Outcome, at time.Time) []event.Event {
	return []event.Event{
		m.newEvent(event.KindFailureNotification, userID, string(outcome), at),
		m.newEvent(event.KindStateChanged, userID, string(outcome), at),
	}
}

// Start stakes cost credits on a new 30-day challenge. It is allowed when
// there is no challenge or the current one is Completed or Failed.
func (m *Manager) Start(ctx context.Context, userID string, cost, targetMoney int) error {
	if cost < 0 || targetMoney < 0 {
		return fmt.Errorf("cost and target money must not be negative: %w", ErrInvalidArgument)
	}

	return m.run(ctx, "start", userID, func(scope *common.Scope) error {
		scope.SetAttributes("cost", cost)

		err := m.update(scope.Ctx, userID, func(cur, work *state.Challenge, e *env) (plan, error) {
			if !state.CanStart(cur) {
				return plan{}, fmt.Errorf("start with %s challenge: %w", cur.Status(), ErrInvalidTransition)
			}

			balance, err := m.ledger.Balance(scope.Ctx, userID)
			if err != nil {
				return plan{}, err
			}
			if balance < cost {
				if cur == nil {
					return plan{err: ErrInsufficientCredits}, nil
				}
				// A finished challenge the user cannot afford to restart is
				// cleared rather than left on screen.
				return plan{
					mutation: service.Mutation{Delete: true},
					events:   []event.Event{m.newEvent(event.KindStateChanged, userID, "cleared_unaffordable_restart", e.now)},
					reason:   "cleared_unaffordable_restart",
					err:      ErrInsufficientCredits,
				}, nil
			}

			started, err := m.challenges.StartedCount(scope.Ctx, userID)
			if err != nil {
				return plan{}, err
			}

			next := state.NewChallenge(e.now, cost, targetMoney, started == 0)
			return plan{
				mutation: service.Mutation{Challenge: next, Debit: cost, MarkStarted: true},
				events:   []event.Event{m.newEvent(event.KindStateChanged, userID, "started", e.now)},
				reason:   "started",
			}, nil
		})
		if err != nil {
			return err
		}

		scope.Log.Infof("user %s started a challenge staking %d credits", userID, cost)
		m.armReminders(scope.Ctx, userID)
		return nil
	})
}

// Continue pays the stake again to revive a Failed challenge.
func (m *Manager) Continue(ctx context.Context, userID string) error {
	return m.run(ctx, "continue", userID, func(scope *common.Scope) error {
		return m.update(scope.Ctx, userID, func(cur, work *state.Challenge, e *env) (plan, error) {
			if cur == nil || !cur.IsFailed {
				return plan{}, fmt.Errorf("continue %s challenge: %w", cur.Status(), ErrInvalidTransition)
			}

			balance, err := m.ledger.Balance(scope.Ctx, userID)
			if err != nil {
				return plan{}, err
			}
			if balance < cur.Cost {
				return plan{err: ErrInsufficientCredits}, nil
			}

			if err := state.Continue(work, e.now, e.loc); err != nil {
				return plan{}, err
			}
			return plan{
				mutation: service.Mutation{Challenge: work, Debit: cur.Cost},
				events:   []event.Event{m.newEvent(event.KindStateChanged, userID, "continued", e.now)},
				reason:   "continued",
			}, nil
		})
	})
}

// RecordWatch marks today as watched. Recording the same day twice is a
// no-op.
func (m *Manager) RecordWatch(ctx context.Context, userID string) error {
	return m.run(ctx, "record_watch", userID, func(scope *common.Scope) error {
		return m.update(scope.Ctx, userID, func(cur, work *state.Challenge, e *env) (plan, error) {
			inserted, err := state.RecordWatch(work, e.now, e.loc)
			if err != nil || !inserted {
				return plan{}, err
			}
			return plan{
				mutation: service.Mutation{Challenge: work},
				events:   []event.Event{m.newEvent(event.KindStateChanged, userID, "watched", e.now)},
			}, nil
		})
	})
}

// Reset clears the current challenge. Resetting an absent challenge is a
// no-op.
func (m *Manager) Reset(ctx context.Context, userID string) error {
	return m.run(ctx, "reset", userID, func(scope *common.Scope) error {
		return m.update(scope.Ctx, userID, func(cur, work *state.Challenge, e *env) (plan, error) {
			if cur == nil {
				return plan{}, nil
			}
			return plan{
				mutation: service.Mutation{Delete: true},
				events:   []event.Event{m.newEvent(event.KindStateChanged, userID, "reset", e.now)},
				reason:   "reset",
			}, nil
		})
	})
}

// Evaluate runs the sweep: it fails the challenge on the first missed day,
// completes it with a refund at 30 watched days, or fails it once past the
// end date.
func (m *Manager) Evaluate(ctx context.Context, userID string) (state.Outcome, error) {
	outcome := state.OutcomeNone

	err := m.run(ctx, "evaluate", userID, func(scope *common.Scope) error {
		return m.update(scope.Ctx, userID, func(cur, work *state.Challenge, e *env) (plan, error) {
			outcome = state.Sweep(work, e.now, e.loc)

			switch outcome {
			case state.OutcomeMissedDay, state.OutcomeExpired:
				return plan{
					mutation: service.Mutation{Challenge: work},
					events:   m.failureEvents(userID, outcome, e.now),
					reason:   string(outcome),
				}, nil
			case state.OutcomeCompleted:
				return plan{
					mutation: service.Mutation{Challenge: work, Credit: work.Cost},
					events:   []event.Event{m.newEvent(event.KindStateChanged, userID, string(outcome), e.now)},
					reason:   string(outcome),
				}, nil
			default:
				return plan{}, nil
			}
		})
	})
	if err != nil {
		return state.OutcomeNone, err
	}
	return outcome, nil
}
