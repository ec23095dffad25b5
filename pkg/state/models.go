// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"

	"github.com/google/uuid"
)

// Status is the lifecycle position of a user's current challenge.
type Status string

const (
	StatusAbsent    Status = "absent"
	StatusActive    Status = "active"
	StatusFailed    Status = "failed"
	StatusCompleted Status = "completed"
)

// Challenge is a user's 30-day streak. A nil *Challenge is the Absent state.
type Challenge struct {
	ID          uuid.UUID `json:"id"`
	IsActive    bool      `json:"isActive"`
	IsFailed    bool      `json:"isFailed"`
	IsCompleted bool      `json:"isCompleted"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Cost        int       `json:"cost"`

	// WatchedDates holds one entry per calendar day, in insertion order.
	WatchedDates []calendar.Day `json:"watchedDates"`

	// ForgivenDates are missed days excused by a paid continuation. They
	// satisfy the sweep but never count toward completion.
	ForgivenDates []calendar.Day `json:"forgivenDates,omitempty"`

	FailedDate        *time.Time `json:"failedDate,omitempty"`
	TargetMoneyAmount int        `json:"targetMoneyAmount"`
	IsFirstChallenge  bool       `json:"isFirstChallenge"`
}

// Status returns the lifecycle status of c.
func (c *Challenge) Status() Status {
	switch {
	case c == nil:
		return StatusAbsent
	case c.IsCompleted:
		return StatusCompleted
	case c.IsFailed:
		return StatusFailed
	default:
		return StatusActive
	}
}

// Running reports whether c accepts watches and is subject to failure
// checks.
func (c *Challenge) Running() bool {
	return c != nil && c.IsActive && !c.IsFailed && !c.IsCompleted
}

// Outcome is the result of a sweep.
type Outcome string

const (
	OutcomeNone      Outcome = "none"
	OutcomeMissedDay Outcome = "missed_day"
	OutcomeCompleted Outcome = "completed"
	OutcomeExpired   Outcome = "expired"
	OutcomeLate      Outcome = "late"
)

// Failed reports whether the outcome moved the challenge to Failed.
func (o Outcome) Failed() bool {
	return o == OutcomeMissedDay || o == OutcomeExpired || o == OutcomeLate
}
