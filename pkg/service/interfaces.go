package service

import (
	"context"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"
)

// Storage interfaces used by the challenge manager and the HTTP API.
// Redis implementations live in this package; tests may swap in the
// in-memory versions from pkg/service/mock.

// ChallengeStore persists the current challenge of each user together with
// the data that must change atomically with it.
type ChallengeStore interface {
	// GetChallenge returns the current challenge, or nil when absent.
	GetChallenge(ctx context.Context, userID string) (*state.Challenge, error)
	// StartedCount returns how many challenges the user has ever started.
	StartedCount(ctx context.Context, userID string) (int64, error)
	// Commit applies m atomically. It returns ErrConflict if the stored
	// challenge no longer matches m.Expected and ErrInsufficientCredits
	// if m.Debit exceeds the balance. Nothing is written on error.
	Commit(ctx context.Context, userID string, m Mutation) error
}

// CreditLedger is the resolve-credit balance of each user.
type CreditLedger interface {
	Balance(ctx context.Context, userID string) (int, error)
	// Deduct removes amount if the balance covers it. It reports false,
	// without changing the balance, otherwise.
	Deduct(ctx context.Context, userID string, amount int) (bool, error)
	Add(ctx context.Context, userID string, amount int) error
}

// WatchHistory maps content IDs to the calendar day they were last played.
type WatchHistory interface {
	AddPlayed(ctx context.Context, userID, contentID string, day calendar.Day) error
	IsPlayedRecently(ctx context.Context, userID, contentID string, today calendar.Day) (bool, error)
	RecentContentIDs(ctx context.Context, userID string, today calendar.Day) ([]string, error)
	Count(ctx context.Context, userID string) (int, error)
	Clear(ctx context.Context, userID string) error
}

// SettingsStore keeps per-user schedule, region and device settings.
type SettingsStore interface {
	GetSettings(ctx context.Context, userID string) (*Settings, error)
	SetPlaybackTime(ctx context.Context, userID string, p state.PlaybackTime) error
	SetRegion(ctx context.Context, userID, region string) error
	SetVideoStartTime(ctx context.Context, userID string, at time.Time) error
	ClearVideoStartTime(ctx context.Context, userID string) error

	AddDevice(ctx context.Context, userID, token string) error
	RemoveDevice(ctx context.Context, userID, token string) error
	Devices(ctx context.Context, userID string) ([]string, error)

	// ClaimReminder reports whether this caller is the first to fire the
	// named reminder for day.
	ClaimReminder(ctx context.Context, userID, name string, day calendar.Day) (bool, error)
}
