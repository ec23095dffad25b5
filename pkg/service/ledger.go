package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisCreditLedger implements CreditLedger on a Redis integer key per user.
type RedisCreditLedger struct {
	client *redis.Client
	cfg    RedisCreditLedgerConfig
}

type RedisCreditLedgerConfig struct {
	// MaxRetries bounds retries of a deduction that raced another writer.
	MaxRetries uint64
}

func NewRedisCreditLedger(client *redis.Client, cfg RedisCreditLedgerConfig) *RedisCreditLedger {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	return &RedisCreditLedger{
		client: client,
		cfg:    cfg,
	}
}

func (r *RedisCreditLedger) Balance(ctx context.Context, userID string) (int, error) {
	balance, err := r.client.Get(ctx, creditsKey(userID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (r *RedisCreditLedger) Deduct(ctx context.Context, userID string, amount int) (bool, error) {
	if amount < 0 {
		return false, ErrInvalidAmount
	}
	if amount == 0 {
		return true, nil
	}

	key := creditsKey(userID)
	deduct := func() error {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			balance, err := tx.Get(ctx, key).Int()
			if err != nil && err != redis.Nil {
				return fmt.Errorf("failed to get balance: %w", err)
			}
			if balance < amount {
				return ErrInsufficientCredits
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.DecrBy(ctx, key, int64(amount))
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			logrus.Debugf("credit deduction for user %s raced another writer, retrying", userID)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.cfg.MaxRetries), ctx)
	err := backoff.Retry(deduct, policy)
	if errors.Is(err, ErrInsufficientCredits) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	logrus.Infof("deducted %d credits from user %s", amount, userID)
	return true, nil
}

func (r *RedisCreditLedger) Add(ctx context.Context, userID string, amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if err := r.client.IncrBy(ctx, creditsKey(userID), int64(amount)).Err(); err != nil {
		return fmt.Errorf("failed to add credits: %w", err)
	}

	logrus.Infof("added %d credits to user %s", amount, userID)
	return nil
}
