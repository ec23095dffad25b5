package service

import (
	"errors"

	"github.com/AccelByte/extend-resolve-challenge/pkg/state"
)

var (
	// ErrInsufficientCredits is returned when a debit exceeds the balance.
	ErrInsufficientCredits = errors.New("insufficient resolve credits")
	// ErrConflict is returned when a concurrent writer changed the
	// challenge between read and commit. The caller should re-read.
	ErrConflict = errors.New("challenge changed concurrently")
	// ErrInvalidAmount is returned for negative credit amounts.
	ErrInvalidAmount = errors.New("credit amount must not be negative")
)

// Mutation is everything one challenge operation writes. Commit applies all
// of it in a single transaction or none of it.
type Mutation struct {
	// Expected is the challenge the operation read (nil when absent).
	Expected *state.Challenge
	// Challenge is written unless Delete is set. A nil Challenge without
	// Delete leaves the record untouched.
	Challenge *state.Challenge
	Delete    bool

	Debit  int
	Credit int

	// MarkStarted increments the user's started-challenges counter.
	MarkStarted bool
}

// Empty reports whether m writes nothing.
func (m Mutation) Empty() bool {
	return m.Challenge == nil && !m.Delete && m.Debit == 0 && m.Credit == 0 && !m.MarkStarted
}
