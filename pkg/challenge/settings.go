// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import (
	"context"
	"fmt"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"
	"github.com/AccelByte/extend-resolve-challenge/pkg/common"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
	"github.com/AccelByte/extend-resolve-challenge/pkg/reminder"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"

	"github.com/sirupsen/logrus"
)

// deadlineCheckDelay runs the deadline check just after the deadline, since
// the deadline itself is still on time.
const deadlineCheckDelay = time.Second

const dailyAlarmName = "daily-alarm"

func alarmKey(userID string) string    { return userID + ":daily-alarm" }
func deadlineKey(userID string) string { return userID + ":deadline-check" }

// SetPlaybackTime stores the daily playback time and re-arms the user's
// reminder and deadline timers.
func (m *Manager) SetPlaybackTime(ctx context.Context, userID string, p state.PlaybackTime) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidArgument)
	}

	err := m.run(ctx, "set_playback_time", userID, func(scope *common.Scope) error {
		return m.settings.SetPlaybackTime(scope.Ctx, userID, p)
	})
	if err != nil {
		return err
	}

	m.armReminders(ctx, userID)
	return nil
}

// SetRegion stores the user's region, a locale such as "ja_JP" or an IANA
// zone name. All day math for the user follows it.
func (m *Manager) SetRegion(ctx context.Context, userID, region string) error {
	if _, err := calendar.LoadRegion(region); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidArgument)
	}

	err := m.run(ctx, "set_region", userID, func(scope *common.Scope) error {
		return m.settings.SetRegion(scope.Ctx, userID, region)
	})
	if err != nil {
		return err
	}

	m.armReminders(ctx, userID)
	return nil
}

// Location returns the time zone used for the user's calendar days.
func (m *Manager) Location(ctx context.Context, userID string) (*time.Location, error) {
	e, err := m.env(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.loc, nil
}

// ArmReminders re-arms the user's daily alarm and deadline check from the
// stored settings. Without a playback time both are cancelled.
func (m *Manager) ArmReminders(ctx context.Context, userID string) error {
	if m.reminders == nil {
		return nil
	}

	e, err := m.env(ctx, userID)
	if err != nil {
		return err
	}

	if e.settings.PlaybackTime == nil {
		m.reminders.Cancel(alarmKey(userID))
		m.reminders.Cancel(deadlineKey(userID))
		return nil
	}
	p := *e.settings.PlaybackTime

	alarmAt := reminder.NextOccurrence(e.now, p, e.loc)
	m.reminders.Arm(alarmKey(userID), alarmAt, func() {
		m.fireDailyAlarm(userID)
	})

	deadlineAt := m.nextDeadlineCheck(e, p)
	m.reminders.Arm(deadlineKey(userID), deadlineAt, func() {
		m.fireDeadlineCheck(userID)
	})

	logrus.Debugf("armed reminders for user %s: alarm=%v deadline=%v", userID, alarmAt, deadlineAt)
	return nil
}

func (m *Manager) armReminders(ctx context.Context, userID string) {
	if err := m.ArmReminders(ctx, userID); err != nil {
		logrus.Warnf("failed to arm reminders for user %s: %v", userID, err)
	}
}

func (m *Manager) nextDeadlineCheck(e *env, p state.PlaybackTime) time.Time {
	today := e.today()
	at := p.Deadline(today, e.loc, m.cfg.Grace).Add(deadlineCheckDelay)
	if !at.After(e.now) {
		at = p.Deadline(today.Next(), e.loc, m.cfg.Grace).Add(deadlineCheckDelay)
	}
	return at
}

func (m *Manager) fireDailyAlarm(userID string) {
	ctx := context.Background()
	if m.claimAlarm(ctx, userID) {
		m.publisher.Publish(ctx, m.newEvent(event.KindDailyReminder, userID, "playback_time", m.clock.Now()))
	}
	m.armReminders(ctx, userID)
}

// claimAlarm lets one replica fire the daily alarm per local day. When the
// claim cannot be checked the alarm fires anyway: a duplicate push is
// better than none.
func (m *Manager) claimAlarm(ctx context.Context, userID string) bool {
	e, err := m.env(ctx, userID)
	if err != nil {
		logrus.Warnf("daily alarm for user %s fires unclaimed: %v", userID, err)
		return true
	}

	ok, err := m.settings.ClaimReminder(ctx, userID, dailyAlarmName, e.today())
	if err != nil {
		logrus.Warnf("daily alarm for user %s fires unclaimed: %v", userID, err)
		return true
	}
	if !ok {
		logrus.Debugf("daily alarm for user %s on %s already fired elsewhere", userID, e.today())
	}
	return ok
}

func (m *Manager) fireDeadlineCheck(userID string) {
	ctx := context.Background()
	if _, err := m.CheckScheduledTimeFailure(ctx, userID); err != nil {
		logrus.Errorf("scheduled deadline check failed for user %s: %v", userID, err)
	}
	m.armReminders(ctx, userID)
}
