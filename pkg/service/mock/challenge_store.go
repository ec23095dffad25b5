package mock

import (
	"context"
	"sync"

	"github.com/AccelByte/extend-resolve-challenge/pkg/service"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"
)

// ChallengeStore is an in-memory implementation of service.ChallengeStore
// for testing. It keeps one challenge, balance and started counter per user.
type ChallengeStore struct {
	// CommitFunc, when set, replaces Commit entirely
	CommitFunc func(ctx context.Context, userID string, m service.Mutation) error

	// CommitErrors are returned by the next Commit calls, in order, without
	// writing anything
	CommitErrors []error
	// GetError is returned by GetChallenge and StartedCount
	GetError error

	// Call tracking
	CommitCalls []CommitCall

	mu         sync.Mutex
	challenges map[string]*state.Challenge
	balances   map[string]int
	started    map[string]int64
}

// CommitCall tracks parameters for Commit calls
type CommitCall struct {
	UserID   string
	Mutation service.Mutation
}

// NewChallengeStore creates an empty in-memory store
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		challenges: make(map[string]*state.Challenge),
		balances:   make(map[string]int),
		started:    make(map[string]int64),
	}
}

// SetBalance seeds a user's balance
func (m *ChallengeStore) SetBalance(userID string, balance int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
}

// BalanceOf returns a user's balance
func (m *ChallengeStore) BalanceOf(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

// GetChallenge returns a copy of the stored challenge
func (m *ChallengeStore) GetChallenge(ctx context.Context, userID string) (*state.Challenge, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return state.Clone(m.challenges[userID]), nil
}

// StartedCount returns the started counter
func (m *ChallengeStore) StartedCount(ctx context.Context, userID string) (int64, error) {
	if m.GetError != nil {
		return 0, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started[userID], nil
}

// Commit applies the mutation unless an error is queued
func (m *ChallengeStore) Commit(ctx context.Context, userID string, mut service.Mutation) error {
	m.mu.Lock()
	m.CommitCalls = append(m.CommitCalls, CommitCall{UserID: userID, Mutation: mut})
	if m.CommitFunc != nil {
		m.mu.Unlock()
		return m.CommitFunc(ctx, userID, mut)
	}
	defer m.mu.Unlock()

	if len(m.CommitErrors) > 0 {
		err := m.CommitErrors[0]
		m.CommitErrors = m.CommitErrors[1:]
		return err
	}

	if mut.Debit > m.balances[userID] {
		return service.ErrInsufficientCredits
	}

	switch {
	case mut.Delete:
		delete(m.challenges, userID)
	case mut.Challenge != nil:
		m.challenges[userID] = state.Clone(mut.Challenge)
	}
	m.balances[userID] += mut.Credit - mut.Debit
	if mut.MarkStarted {
		m.started[userID]++
	}
	return nil
}
