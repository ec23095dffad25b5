// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"fmt"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// ChallengeDays is the streak length and the completion threshold.
	ChallengeDays = 30
	// SweepBuffer bounds the day walk beyond ChallengeDays.
	SweepBuffer = 7
)

// NewChallenge creates an active challenge starting at now.
func NewChallenge(now time.Time, cost, targetMoney int, first bool) *Challenge {
	c := &Challenge{
		ID:                uuid.New(),
		IsActive:          true,
		StartDate:         now,
		EndDate:           now.AddDate(0, 0, ChallengeDays),
		Cost:              cost,
		WatchedDates:      []calendar.Day{},
		TargetMoneyAmount: targetMoney,
		IsFirstChallenge:  first,
	}

	logrus.Infof("created challenge %s: cost=%d, endDate=%v, first=%v",
		c.ID, cost, c.EndDate, first)
	return c
}

// CanStart reports whether a new challenge may replace c.
func CanStart(c *Challenge) bool {
	return c == nil || c.IsCompleted || c.IsFailed
}

// HasWatched reports whether day is recorded as watched.
func HasWatched(c *Challenge, day calendar.Day) bool {
	if c == nil {
		return false
	}
	return containsDay(c.WatchedDates, day)
}

// CompletedDays returns the number of distinct watched days.
func CompletedDays(c *Challenge) int {
	if c == nil {
		return 0
	}
	return len(c.WatchedDates)
}

// RemainingDays returns how many watched days are still needed.
func RemainingDays(c *Challenge) int {
	remaining := ChallengeDays - CompletedDays(c)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordWatch marks the day containing now as watched. It returns false if
// the day was already recorded.
func RecordWatch(c *Challenge, now time.Time, loc *time.Location) (bool, error) {
	if !c.Running() {
		return false, fmt.Errorf("record watch on %s challenge: %w", c.Status(), ErrInvalidTransition)
	}

	today := calendar.DayOf(now, loc)
	if HasWatched(c, today) {
		logrus.Debugf("challenge %s: %s already watched", c.ID, today)
		return false, nil
	}

	c.WatchedDates = append(c.WatchedDates, today)
	logrus.Debugf("challenge %s: watched %s (%d/%d)", c.ID, today, len(c.WatchedDates), ChallengeDays)
	return true, nil
}

// Continue revives a failed challenge. Today counts as watched and every
// unwatched day from the failed day up to yesterday is forgiven, so the
// next sweep does not fail again on the same gap. EndDate is left unchanged.
func Continue(c *Challenge, now time.Time, loc *time.Location) error {
	if c == nil || !c.IsFailed {
		return fmt.Errorf("continue %s challenge: %w", c.Status(), ErrInvalidTransition)
	}

	today := calendar.DayOf(now, loc)
	if c.FailedDate != nil {
		forgiveGap(c, calendar.DayOf(*c.FailedDate, loc), today)
	}

	c.IsFailed = false
	c.IsActive = true
	c.FailedDate = nil

	if !HasWatched(c, today) {
		c.WatchedDates = append(c.WatchedDates, today)
	}

	logrus.Infof("challenge %s continued on %s", c.ID, today)
	return nil
}

// forgiveGap forgives every day in [from, today) that was neither watched
// nor already forgiven. The walk is clamped like the sweep.
func forgiveGap(c *Challenge, from, today calendar.Day) {
	walked := 0
	for day := from; day.Before(today) && walked < ChallengeDays+SweepBuffer; day = day.Next() {
		walked++
		if HasWatched(c, day) || containsDay(c.ForgivenDates, day) {
			continue
		}
		c.ForgivenDates = append(c.ForgivenDates, day)
	}
}

// Fail moves c to Failed at the given instant.
func Fail(c *Challenge, at time.Time) {
	failedAt := at
	c.IsActive = false
	c.IsFailed = true
	c.FailedDate = &failedAt
}

// Complete moves c to Completed.
func Complete(c *Challenge) {
	c.IsActive = false
	c.IsCompleted = true
}

// Sweep retroactively checks every day from the start day up to yesterday
// and fails the challenge on the first missed one. If no day was missed it
// checks completion, then expiry.
func Sweep(c *Challenge, now time.Time, loc *time.Location) Outcome {
	if !c.Running() {
		return OutcomeNone
	}
	if now.Before(c.StartDate) {
		logrus.Warnf("challenge %s: clock %v is before start %v, skipping sweep", c.ID, now, c.StartDate)
		return OutcomeNone
	}

	startDay := calendar.DayOf(c.StartDate, loc)
	today := calendar.DayOf(now, loc)

	walked := 0
	for day := startDay; day.Before(today) && walked < ChallengeDays+SweepBuffer; day = day.Next() {
		walked++

		if c.IsFirstChallenge && day == startDay && now.Before(day.End(loc)) {
			continue
		}
		if HasWatched(c, day) || containsDay(c.ForgivenDates, day) {
			continue
		}

		Fail(c, day.Start(loc))
		logrus.Infof("challenge %s failed: %s was not watched", c.ID, day)
		return OutcomeMissedDay
	}

	if CompletedDays(c) >= ChallengeDays {
		Complete(c)
		logrus.Infof("challenge %s completed with %d watched days", c.ID, CompletedDays(c))
		return OutcomeCompleted
	}

	if now.After(c.EndDate) {
		Fail(c, now)
		logrus.Infof("challenge %s failed: expired at %v", c.ID, c.EndDate)
		return OutcomeExpired
	}

	return OutcomeNone
}

// ResetDue reports whether a failed challenge has crossed into the calendar
// day after its failure.
func ResetDue(c *Challenge, now time.Time, loc *time.Location) bool {
	if c == nil || !c.IsFailed || c.FailedDate == nil {
		return false
	}

	nextDay := calendar.DayOf(*c.FailedDate, loc).Next().Start(loc)
	return !now.Before(nextDay)
}

// DailyProgressDue reports whether an unwatched running challenge should
// get a progress warning: within the first minute past one of hours.
func DailyProgressDue(c *Challenge, now time.Time, loc *time.Location, hours []int) bool {
	if !c.Running() || HasWatched(c, calendar.DayOf(now, loc)) {
		return false
	}

	local := now.In(loc)
	for _, h := range hours {
		if local.Hour() == h && local.Minute() <= 1 {
			return true
		}
	}
	return false
}

func containsDay(days []calendar.Day, day calendar.Day) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of c.
func Clone(c *Challenge) *Challenge {
	if c == nil {
		return nil
	}
	cp := *c
	cp.WatchedDates = append([]calendar.Day{}, c.WatchedDates...)
	if c.ForgivenDates != nil {
		cp.ForgivenDates = append([]calendar.Day{}, c.ForgivenDates...)
	}
	if c.FailedDate != nil {
		failed := *c.FailedDate
		cp.FailedDate = &failed
	}
	return &cp
}
