package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// WatchHistoryRetentionDays is how long a played content ID is kept.
	WatchHistoryRetentionDays = 60
	watchHistoryDefaultTTL    = WatchHistoryRetentionDays * 24 * time.Hour
)

// RedisWatchHistory stores content ID to last-played day in a hash. Entries
// past the retention window are purged on every write.
type RedisWatchHistory struct {
	client *redis.Client
	cfg    RedisWatchHistoryConfig
}

type RedisWatchHistoryConfig struct{}

func NewRedisWatchHistory(client *redis.Client, cfg RedisWatchHistoryConfig) *RedisWatchHistory {
	return &RedisWatchHistory{
		client: client,
		cfg:    cfg,
	}
}

func (r *RedisWatchHistory) AddPlayed(ctx context.Context, userID, contentID string, day calendar.Day) error {
	key := watchHistoryKey(userID)

	if err := r.client.HSet(ctx, key, contentID, day.String()).Err(); err != nil {
		return fmt.Errorf("failed to record played content: %w", err)
	}

	// Cleanup entries older than the retention window
	entries, err := r.client.HGetAll(ctx, key).Result()
	if err == nil {
		var toDelete []string
		for id, raw := range entries {
			played, err := calendar.ParseDay(raw)
			if err != nil || !withinRetention(played, day) {
				toDelete = append(toDelete, id)
			}
		}
		if len(toDelete) > 0 {
			r.client.HDel(ctx, key, toDelete...)
			logrus.Debugf("purged %d expired history entries for user %s", len(toDelete), userID)
		}
	}

	// Set TTL on the entire hash
	r.client.Expire(ctx, key, watchHistoryDefaultTTL)

	return nil
}

func (r *RedisWatchHistory) IsPlayedRecently(ctx context.Context, userID, contentID string, today calendar.Day) (bool, error) {
	raw, err := r.client.HGet(ctx, watchHistoryKey(userID), contentID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get played content: %w", err)
	}

	played, err := calendar.ParseDay(raw)
	if err != nil {
		return false, nil
	}
	return withinRetention(played, today), nil
}

// RecentContentIDs returns the IDs played within the retention window,
// sorted.
func (r *RedisWatchHistory) RecentContentIDs(ctx context.Context, userID string, today calendar.Day) ([]string, error) {
	entries, err := r.client.HGetAll(ctx, watchHistoryKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get watch history: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for id, raw := range entries {
		played, err := calendar.ParseDay(raw)
		if err != nil {
			// Skip invalid entries
			continue
		}
		if withinRetention(played, today) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *RedisWatchHistory) Count(ctx context.Context, userID string) (int, error) {
	n, err := r.client.HLen(ctx, watchHistoryKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count watch history: %w", err)
	}
	return int(n), nil
}

func (r *RedisWatchHistory) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, watchHistoryKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear watch history: %w", err)
	}
	return nil
}

func withinRetention(played, today calendar.Day) bool {
	return !played.Before(today.AddDays(-WatchHistoryRetentionDays))
}
