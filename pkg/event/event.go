// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what happened.
type Kind string

const (
	KindStateChanged        Kind = "challenge-state-changed"
	KindUIReset             Kind = "challenge-ui-reset"
	KindFailureNotification Kind = "failure-notification-requested"
	KindDailyReminder       Kind = "daily-reminder-requested"
	KindDailyWatchReminder  Kind = "daily-watch-reminder-requested"
)

// Kinds lists every event kind the service emits.
var Kinds = []Kind{
	KindStateChanged,
	KindUIReset,
	KindFailureNotification,
	KindDailyReminder,
	KindDailyWatchReminder,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Event is a fire-and-forget notification to collaborators.
type Event struct {
	ID     uuid.UUID `json:"id"`
	Kind   Kind      `json:"kind"`
	UserID string    `json:"userId"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// New creates an event with a fresh ID.
func New(kind Kind, userID, reason string, at time.Time) Event {
	return Event{
		ID:     uuid.New(),
		Kind:   kind,
		UserID: userID,
		Reason: reason,
		At:     at,
	}
}

// Publisher accepts events. Publish never blocks on subscribers and never
// fails the caller.
type Publisher interface {
	Publish(ctx context.Context, events ...Event)
}

// Handler consumes one event.
type Handler func(ctx context.Context, e Event) error
