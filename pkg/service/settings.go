package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// reminderClaimTTL outlives any local day the claim can refer to.
const reminderClaimTTL = 48 * time.Hour

const (
	settingsFieldPlaybackTime   = "playback_time"
	settingsFieldRegion         = "region"
	settingsFieldLastVideoStart = "last_video_start_time"
)

// RedisSettingsStore keeps settings in a hash and device tokens in a set.
type RedisSettingsStore struct {
	client *redis.Client
	cfg    RedisSettingsStoreConfig
}

type RedisSettingsStoreConfig struct{}

func NewRedisSettingsStore(client *redis.Client, cfg RedisSettingsStoreConfig) *RedisSettingsStore {
	return &RedisSettingsStore{
		client: client,
		cfg:    cfg,
	}
}

// GetSettings returns the user's settings. Unparseable fields are treated as
// unset.
func (r *RedisSettingsStore) GetSettings(ctx context.Context, userID string) (*Settings, error) {
	data, err := r.client.HGetAll(ctx, settingsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	settings := &Settings{Region: data[settingsFieldRegion]}

	if raw, ok := data[settingsFieldPlaybackTime]; ok {
		p, err := state.ParsePlaybackTime(raw)
		if err != nil {
			logrus.Warnf("ignoring playback time for user %s: %v", userID, err)
		} else {
			settings.PlaybackTime = &p
		}
	}

	if raw, ok := data[settingsFieldLastVideoStart]; ok {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			logrus.Warnf("ignoring video start time for user %s: %v", userID, err)
		} else {
			settings.LastVideoStartTime = &t
		}
	}

	return settings, nil
}

func (r *RedisSettingsStore) SetPlaybackTime(ctx context.Context, userID string, p state.PlaybackTime) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.set(ctx, userID, settingsFieldPlaybackTime, p.String())
}

func (r *RedisSettingsStore) SetRegion(ctx context.Context, userID, region string) error {
	return r.set(ctx, userID, settingsFieldRegion, region)
}

func (r *RedisSettingsStore) SetVideoStartTime(ctx context.Context, userID string, at time.Time) error {
	return r.set(ctx, userID, settingsFieldLastVideoStart, at.Format(time.RFC3339Nano))
}

func (r *RedisSettingsStore) ClearVideoStartTime(ctx context.Context, userID string) error {
	if err := r.client.HDel(ctx, settingsKey(userID), settingsFieldLastVideoStart).Err(); err != nil {
		return fmt.Errorf("failed to clear video start time: %w", err)
	}
	return nil
}

func (r *RedisSettingsStore) AddDevice(ctx context.Context, userID, token string) error {
	if err := r.client.SAdd(ctx, devicesKey(userID), token).Err(); err != nil {
		return fmt.Errorf("failed to add device: %w", err)
	}
	return nil
}

func (r *RedisSettingsStore) RemoveDevice(ctx context.Context, userID, token string) error {
	if err := r.client.SRem(ctx, devicesKey(userID), token).Err(); err != nil {
		return fmt.Errorf("failed to remove device: %w", err)
	}
	return nil
}

func (r *RedisSettingsStore) Devices(ctx context.Context, userID string) ([]string, error) {
	tokens, err := r.client.SMembers(ctx, devicesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}
	return tokens, nil
}

// ClaimReminder records that the named reminder fired for the user on day.
// Only the first caller gets true, so replicas sharing Redis fire each
// reminder once.
func (r *RedisSettingsStore) ClaimReminder(ctx context.Context, userID, name string, day calendar.Day) (bool, error) {
	ok, err := r.client.SetNX(ctx, reminderFiredKey(userID, name, day.String()), 1, reminderClaimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder %s: %w", name, err)
	}
	return ok, nil
}

func (r *RedisSettingsStore) set(ctx context.Context, userID, field, value string) error {
	if err := r.client.HSet(ctx, settingsKey(userID), field, value).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", field, err)
	}
	logrus.Debugf("set %s=%s for user %s", field, value, userID)
	return nil
}
