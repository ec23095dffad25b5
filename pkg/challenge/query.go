package challenge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"
	"github.com/AccelByte/extend-resolve-challenge/pkg/common"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"
)

// Snapshot is a read-only view of a user's challenge for display.
type Snapshot struct {
	Status          state.Status        `json:"status"`
	Challenge       *state.Challenge    `json:"challenge,omitempty"`
	CompletedDays   int                 `json:"completedDays"`
	RemainingDays   int                 `json:"remainingDays"`
	HasWatchedToday bool                `json:"hasWatchedToday"`
	Balance         int                 `json:"balance"`
	Today           calendar.Day        `json:"today"`
	TimeZone        string              `json:"timeZone"`
	PlaybackTime    *state.PlaybackTime `json:"playbackTime,omitempty"`
	Deadline        *time.Time          `json:"deadline,omitempty"`
}

// Snapshot returns the user's current challenge, progress and balance.
func (m *Manager) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	var snap *Snapshot

	err := m.run(ctx, "snapshot", userID, func(scope *common.Scope) error {
		e, err := m.env(scope.Ctx, userID)
		if err != nil {
			return err
		}
		c, err := m.challenges.GetChallenge(scope.Ctx, userID)
		if err != nil {
			return err
		}
		balance, err := m.ledger.Balance(scope.Ctx, userID)
		if err != nil {
			return err
		}

		today := e.today()
		snap = &Snapshot{
			Status:          c.Status(),
			Challenge:       c,
			CompletedDays:   state.CompletedDays(c),
			RemainingDays:   state.RemainingDays(c),
			HasWatchedToday: state.HasWatched(c, today),
			Balance:         balance,
			Today:           today,
			TimeZone:        e.loc.String(),
			PlaybackTime:    e.settings.PlaybackTime,
		}
		if p := e.settings.PlaybackTime; p != nil {
			deadline := p.Deadline(today, e.loc, m.cfg.Grace)
			snap.Deadline = &deadline
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// HasWatchedToday reports whether today is recorded for the current
// challenge.
func (m *Manager) HasWatchedToday(ctx context.Context, userID string) (bool, error) {
	snap, err := m.Snapshot(ctx, userID)
	if err != nil {
		return false, err
	}
	return snap.HasWatchedToday, nil
}

// CompletedDays returns the number of distinct watched days.
func (m *Manager) CompletedDays(ctx context.Context, userID string) (int, error) {
	c, err := m.challenges.GetChallenge(ctx, userID)
	if err != nil {
		return 0, err
	}
	return state.CompletedDays(c), nil
}

// Balance returns the user's resolve-credit balance.
func (m *Manager) Balance(ctx context.Context, userID string) (int, error) {
	return m.ledger.Balance(ctx, userID)
}

// AddCredits credits a purchase to the user.
func (m *Manager) AddCredits(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive: %w", ErrInvalidArgument)
	}
	return m.run(ctx, "add_credits", userID, func(scope *common.Scope) error {
		return m.ledger.Add(scope.Ctx, userID, amount)
	})
}

// DeductCredits removes credits outside a challenge commit, e.g. a reversed
// purchase. The balance never goes negative: an uncovered amount returns
// ErrInsufficientCredits and changes nothing.
func (m *Manager) DeductCredits(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive: %w", ErrInvalidArgument)
	}
	return m.run(ctx, "deduct_credits", userID, func(scope *common.Scope) error {
		ok, err := m.ledger.Deduct(scope.Ctx, userID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientCredits
		}
		return nil
	})
}

// RecordPlayed remembers that contentID was played today.
func (m *Manager) RecordPlayed(ctx context.Context, userID, contentID string) error {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return fmt.Errorf("empty content ID: %w", ErrInvalidArgument)
	}
	return m.run(ctx, "record_played", userID, func(scope *common.Scope) error {
		e, err := m.env(scope.Ctx, userID)
		if err != nil {
			return err
		}
		return m.history.AddPlayed(scope.Ctx, userID, contentID, e.today())
	})
}

// PlayedRecently reports whether contentID was played within the
// retention window.
func (m *Manager) PlayedRecently(ctx context.Context, userID, contentID string) (bool, error) {
	e, err := m.env(ctx, userID)
	if err != nil {
		return false, err
	}
	return m.history.IsPlayedRecently(ctx, userID, contentID, e.today())
}

// RecentlyPlayed lists content played within the retention window.
func (m *Manager) RecentlyPlayed(ctx context.Context, userID string) ([]string, error) {
	e, err := m.env(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.history.RecentContentIDs(ctx, userID, e.today())
}

// RegisterDevice adds a push token for the user.
func (m *Manager) RegisterDevice(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("empty device token: %w", ErrInvalidArgument)
	}
	return m.settings.AddDevice(ctx, userID, token)
}

// UnregisterDevice removes a push token.
func (m *Manager) UnregisterDevice(ctx context.Context, userID, token string) error {
	return m.settings.RemoveDevice(ctx, userID, token)
}
