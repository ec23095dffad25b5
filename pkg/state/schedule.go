// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"fmt"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"

	"github.com/sirupsen/logrus"
)

// DefaultGrace is how long after the playback time a video may still start.
const DefaultGrace = 5 * time.Minute

// PlaybackTime is the user's daily wall-clock viewing time.
type PlaybackTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ParsePlaybackTime parses "HH:MM".
func ParsePlaybackTime(s string) (PlaybackTime, error) {
	var p PlaybackTime
	if _, err := fmt.Sscanf(s, "%d:%d", &p.Hour, &p.Minute); err != nil {
		return PlaybackTime{}, fmt.Errorf("invalid playback time %q: %w", s, err)
	}
	if err := p.Validate(); err != nil {
		return PlaybackTime{}, err
	}
	return p, nil
}

// Validate checks the hour and minute ranges.
func (p PlaybackTime) Validate() error {
	if p.Hour < 0 || p.Hour > 23 {
		return fmt.Errorf("playback hour %d out of range", p.Hour)
	}
	if p.Minute < 0 || p.Minute > 59 {
		return fmt.Errorf("playback minute %d out of range", p.Minute)
	}
	return nil
}

func (p PlaybackTime) String() string {
	return fmt.Sprintf("%02d:%02d", p.Hour, p.Minute)
}

// ScheduledTime returns the playback time on day in loc.
func (p PlaybackTime) ScheduledTime(day calendar.Day, loc *time.Location) time.Time {
	return day.At(p.Hour, p.Minute, loc)
}

// Deadline returns the latest moment a video may start on day.
func (p PlaybackTime) Deadline(day calendar.Day, loc *time.Location, grace time.Duration) time.Time {
	return p.ScheduledTime(day, loc).Add(grace)
}

// DeadlineInput carries the per-user settings the deadline check reads.
type DeadlineInput struct {
	Playback       *PlaybackTime
	VideoStartedAt *time.Time
	Grace          time.Duration
}

// CheckScheduledTime fails a running challenge whose playback deadline for
// today has passed without a timely video start. It returns OutcomeLate on
// failure and OutcomeNone otherwise.
func CheckScheduledTime(c *Challenge, now time.Time, loc *time.Location, in DeadlineInput) Outcome {
	if !c.Running() || in.Playback == nil {
		return OutcomeNone
	}

	today := calendar.DayOf(now, loc)
	if HasWatched(c, today) {
		return OutcomeNone
	}
	if c.IsFirstChallenge && calendar.DayOf(c.StartDate, loc) == today {
		return OutcomeNone
	}

	grace := in.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}
	deadline := in.Playback.Deadline(today, loc, grace)
	if !now.After(deadline) {
		return OutcomeNone
	}

	started := in.VideoStartedAt
	if started != nil && calendar.DayOf(*started, loc) != today {
		started = nil
	}
	if started != nil && !started.After(deadline) {
		return OutcomeNone
	}

	Fail(c, now)
	logrus.Infof("challenge %s failed: no video started by %v", c.ID, deadline)
	return OutcomeLate
}
