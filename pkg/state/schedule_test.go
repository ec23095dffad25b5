// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"testing"
	"time"
)

func TestParsePlaybackTime(t *testing.T) {
	tests := []struct {
		input     string
		expected  PlaybackTime
		expectErr bool
	}{
		{"07:30", PlaybackTime{Hour: 7, Minute: 30}, false},
		{"23:59", PlaybackTime{Hour: 23, Minute: 59}, false},
		{"24:00", PlaybackTime{}, true},
		{"12:60", PlaybackTime{}, true},
		{"noon", PlaybackTime{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePlaybackTime(tt.input)
			if (err != nil) != tt.expectErr {
				t.Fatalf("ParsePlaybackTime() error = %v, expectErr %v", err, tt.expectErr)
			}
			if got != tt.expected {
				t.Errorf("ParsePlaybackTime() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestPlaybackTime_Deadline(t *testing.T) {
	p := PlaybackTime{Hour: 7, Minute: 30}
	d := day(2024, time.January, 10)

	if got := p.Deadline(d, time.UTC, DefaultGrace); !got.Equal(at(2024, time.January, 10, 7, 35)) {
		t.Errorf("Deadline() = %v, expected 07:35", got)
	}
}

func TestCheckScheduledTime(t *testing.T) {
	playback := &PlaybackTime{Hour: 7, Minute: 0}
	start := at(2024, time.January, 1, 6, 0)
	onTime := at(2024, time.January, 3, 7, 4)
	late := at(2024, time.January, 3, 7, 6)
	staleStart := at(2024, time.January, 2, 7, 0)

	tests := []struct {
		name       string
		first      bool
		watched    bool
		now        time.Time
		in         DeadlineInput
		expectFail bool
	}{
		{
			name:       "before deadline",
			now:        at(2024, time.January, 3, 7, 5),
			in:         DeadlineInput{Playback: playback},
			expectFail: false,
		},
		{
			name:       "after deadline without start",
			now:        at(2024, time.January, 3, 7, 6),
			in:         DeadlineInput{Playback: playback},
			expectFail: true,
		},
		{
			name:       "started within grace",
			now:        at(2024, time.January, 3, 9, 0),
			in:         DeadlineInput{Playback: playback, VideoStartedAt: &onTime},
			expectFail: false,
		},
		{
			name:       "started after deadline",
			now:        at(2024, time.January, 3, 9, 0),
			in:         DeadlineInput{Playback: playback, VideoStartedAt: &late},
			expectFail: true,
		},
		{
			name:       "stale start from yesterday",
			now:        at(2024, time.January, 3, 9, 0),
			in:         DeadlineInput{Playback: playback, VideoStartedAt: &staleStart},
			expectFail: true,
		},
		{
			name:       "no playback time",
			now:        at(2024, time.January, 3, 9, 0),
			in:         DeadlineInput{},
			expectFail: false,
		},
		{
			name:       "already watched today",
			watched:    true,
			now:        at(2024, time.January, 3, 9, 0),
			in:         DeadlineInput{Playback: playback},
			expectFail: false,
		},
		{
			name:       "custom grace",
			now:        at(2024, time.January, 3, 7, 8),
			in:         DeadlineInput{Playback: playback, Grace: 10 * time.Minute},
			expectFail: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChallenge(start, 10, 0, tt.first)
			if tt.watched {
				c.WatchedDates = append(c.WatchedDates, day(2024, time.January, 3))
			}

			outcome := CheckScheduledTime(c, tt.now, time.UTC, tt.in)
			if outcome.Failed() != tt.expectFail {
				t.Fatalf("CheckScheduledTime() = %s, expectFail %v", outcome, tt.expectFail)
			}
			if tt.expectFail && !c.FailedDate.Equal(tt.now) {
				t.Errorf("FailedDate = %v, expected %v", c.FailedDate, tt.now)
			}
		})
	}
}

func TestCheckScheduledTime_FirstChallengeStartDayExempt(t *testing.T) {
	c := NewChallenge(at(2024, time.January, 10, 6, 0), 10, 0, true)
	in := DeadlineInput{Playback: &PlaybackTime{Hour: 7, Minute: 0}}

	if outcome := CheckScheduledTime(c, at(2024, time.January, 10, 22, 0), time.UTC, in); outcome != OutcomeNone {
		t.Errorf("CheckScheduledTime() on day 1 = %s, expected none", outcome)
	}
	if outcome := CheckScheduledTime(c, at(2024, time.January, 11, 8, 0), time.UTC, in); outcome != OutcomeLate {
		t.Errorf("CheckScheduledTime() on day 2 = %s, expected late", outcome)
	}
}
