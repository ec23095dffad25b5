package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/state"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// RedisChallengeStore implements ChallengeStore using Redis. Commits run as
// optimistic WATCH/MULTI transactions over the challenge and credit keys.
type RedisChallengeStore struct {
	client *redis.Client
	cfg    RedisChallengeStoreConfig
}

type RedisChallengeStoreConfig struct {
	// TTL expires records of abandoned running challenges. Every commit
	// refreshes it. Zero keeps records until an explicit reset. Completed
	// and failed records never expire.
	TTL time.Duration
}

// NewRedisChallengeStore creates a new Redis-backed challenge store.
func NewRedisChallengeStore(client *redis.Client, cfg RedisChallengeStoreConfig) *RedisChallengeStore {
	if cfg.TTL < 0 {
		cfg.TTL = 0
	}
	return &RedisChallengeStore{
		client: client,
		cfg:    cfg,
	}
}

// GetChallenge retrieves the current challenge for a user from Redis.
func (r *RedisChallengeStore) GetChallenge(ctx context.Context, userID string) (*state.Challenge, error) {
	data, err := r.client.Get(ctx, challengeKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		logrus.Errorf("failed to get challenge for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	challenge, err := decodeChallenge(data)
	if err != nil {
		logrus.Errorf("failed to unmarshal challenge for user %s: %v", userID, err)
		return nil, err
	}
	return challenge, nil
}

// StartedCount returns the number of challenges the user ever started.
func (r *RedisChallengeStore) StartedCount(ctx context.Context, userID string) (int64, error) {
	count, err := r.client.Get(ctx, startedKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get started count: %w", err)
	}
	return count, nil
}

// Commit applies m in one MULTI/EXEC.
func (r *RedisChallengeStore) Commit(ctx context.Context, userID string, m Mutation) error {
	if m.Debit < 0 || m.Credit < 0 {
		return ErrInvalidAmount
	}

	cKey := challengeKey(userID)
	bKey := creditsKey(userID)

	expected, err := encodeChallenge(m.Expected)
	if err != nil {
		return err
	}

	var payload []byte
	if m.Challenge != nil && !m.Delete {
		if payload, err = encodeChallenge(m.Challenge); err != nil {
			return err
		}
	}

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, cKey).Bytes()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("failed to read challenge: %w", err)
		}
		if err := matchExpected(current, expected); err != nil {
			return err
		}

		if m.Debit > 0 {
			balance, err := tx.Get(ctx, bKey).Int()
			if err != nil && err != redis.Nil {
				return fmt.Errorf("failed to read balance: %w", err)
			}
			if balance < m.Debit {
				return ErrInsufficientCredits
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			switch {
			case m.Delete:
				pipe.Del(ctx, cKey)
			case payload != nil:
				pipe.Set(ctx, cKey, payload, r.ttlFor(m.Challenge))
			}
			if m.Debit > 0 {
				pipe.DecrBy(ctx, bKey, int64(m.Debit))
			}
			if m.Credit > 0 {
				pipe.IncrBy(ctx, bKey, int64(m.Credit))
			}
			if m.MarkStarted {
				pipe.Incr(ctx, startedKey(userID))
			}
			return nil
		})
		return err
	}

	err = r.client.Watch(ctx, txf, cKey, bKey)
	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		return ErrConflict
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInsufficientCredits):
		return err
	default:
		logrus.Errorf("failed to commit challenge for user %s: %v", userID, err)
		return fmt.Errorf("failed to commit challenge: %w", err)
	}

	logrus.Debugf("committed challenge for user %s: delete=%v debit=%d credit=%d started=%v",
		userID, m.Delete, m.Debit, m.Credit, m.MarkStarted)
	return nil
}

// matchExpected compares the stored record with the expected one in
// canonical form, so records written by older encoders still match.
// ttlFor returns the expiry for c. Terminal records stay until the user
// resets them.
func (r *RedisChallengeStore) ttlFor(c *state.Challenge) time.Duration {
	if c.Status() != state.StatusActive {
		return 0
	}
	return r.cfg.TTL
}

func matchExpected(current, expected []byte) error {
	if current == nil {
		if expected == nil {
			return nil
		}
		return ErrConflict
	}
	if expected == nil {
		return ErrConflict
	}

	decoded, err := decodeChallenge(current)
	if err != nil {
		return err
	}
	canonical, err := encodeChallenge(decoded)
	if err != nil {
		return err
	}
	if !bytes.Equal(canonical, expected) {
		return ErrConflict
	}
	return nil
}

func encodeChallenge(c *state.Challenge) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal challenge: %w", err)
	}
	return data, nil
}

func decodeChallenge(data []byte) (*state.Challenge, error) {
	var c state.Challenge
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return &c, nil
}
