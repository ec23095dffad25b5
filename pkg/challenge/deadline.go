// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import (
	"context"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"
	"github.com/AccelByte/extend-resolve-challenge/pkg/common"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
	"github.com/AccelByte/extend-resolve-challenge/pkg/service"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"
)

// CheckScheduledTimeFailure fails the challenge when today's playback
// deadline passed without a timely video start. It is stricter than the
// sweep and fires within the same day.
func (m *Manager) CheckScheduledTimeFailure(ctx context.Context, userID string) (state.Outcome, error) {
	outcome := state.OutcomeNone

	err := m.run(ctx, "scheduled_time", userID, func(scope *common.Scope) error {
		return m.update(scope.Ctx, userID, func(cur, work *state.Challenge, e *env) (plan, error) {
			outcome = state.CheckScheduledTime(work, e.now, e.loc, state.DeadlineInput{
				Playback:       e.settings.PlaybackTime,
				VideoStartedAt: e.settings.LastVideoStartTime,
				Grace:          m.cfg.Grace,
			})
			if outcome != state.OutcomeLate {
				return plan{}, nil
			}
			return plan{
				mutation: service.Mutation{Challenge: work},
				events:   m.failureEvents(userID, outcome, e.now),
				reason:   string(outcome),
			}, nil
		})
	})
	if err != nil {
		return state.OutcomeNone, err
	}
	return outcome, nil
}

// RecordVideoStartTime stores now as today's video start. A start time left
// over from a previous day is cleared first.
func (m *Manager) RecordVideoStartTime(ctx context.Context, userID string) error {
	return m.run(ctx, "video_start", userID, func(scope *common.Scope) error {
		e, err := m.env(scope.Ctx, userID)
		if err != nil {
			return err
		}

		if last := e.settings.LastVideoStartTime; last != nil && calendar.DayOf(*last, e.loc) != e.today() {
			if err := m.settings.ClearVideoStartTime(scope.Ctx, userID); err != nil {
				return err
			}
			scope.Log.Debugf("cleared stale video start time %v for user %s", *last, userID)
		}

		return m.settings.SetVideoStartTime(scope.Ctx, userID, e.now)
	})
}

// CheckAndResetFailedChallenge clears a Failed challenge once the calendar
// day after its failure has begun in the user's region. It reports whether
// a reset happened.
func (m *Manager) CheckAndResetFailedChallenge(ctx context.Context, userID string) (bool, error) {
	reset := false

	err := m.run(ctx, "failure_reset", userID, func(scope *common.Scope) error {
		return m.update(scope.Ctx, userID, func(cur, work *state.Challenge, e *env) (plan, error) {
			reset = state.ResetDue(cur, e.now, e.loc)
			if !reset {
				return plan{}, nil
			}
			return plan{
				mutation: service.Mutation{Delete: true},
				events: []event.Event{
					m.newEvent(event.KindStateChanged, userID, "reset_after_failure", e.now),
					m.newEvent(event.KindUIReset, userID, "reset_after_failure", e.now),
				},
				reason: "reset_after_failure",
			}, nil
		})
	})
	if err != nil {
		return false, err
	}
	return reset, nil
}

// CheckDailyWatchingProgress requests a reminder when today is still
// unwatched at one of the warning hours. It reports whether one was sent.
func (m *Manager) CheckDailyWatchingProgress(ctx context.Context, userID string) (bool, error) {
	due := false

	err := m.run(ctx, "daily_progress", userID, func(scope *common.Scope) error {
		e, err := m.env(scope.Ctx, userID)
		if err != nil {
			return err
		}
		c, err := m.challenges.GetChallenge(scope.Ctx, userID)
		if err != nil {
			return err
		}

		due = state.DailyProgressDue(c, e.now, e.loc, m.cfg.WarningHours)
		if due {
			m.publisher.Publish(scope.Ctx, m.newEvent(event.KindDailyWatchReminder, userID,
				"unwatched_at_"+e.now.In(e.loc).Format("15:04"), e.now))
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return due, nil
}
