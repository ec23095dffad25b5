package service

import (
	"context"
	"testing"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"
)

func TestSettingsStore(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := NewRedisSettingsStore(client, RedisSettingsStoreConfig{})

	settings, err := store.GetSettings(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if settings.PlaybackTime != nil || settings.Region != "" || settings.LastVideoStartTime != nil {
		t.Errorf("expected empty settings, got %+v", settings)
	}

	started := time.Date(2024, 1, 10, 7, 2, 0, 0, time.UTC)
	if err := store.SetPlaybackTime(ctx, "user-1", state.PlaybackTime{Hour: 7, Minute: 0}); err != nil {
		t.Fatalf("SetPlaybackTime() error = %v", err)
	}
	if err := store.SetRegion(ctx, "user-1", "ja_JP"); err != nil {
		t.Fatalf("SetRegion() error = %v", err)
	}
	if err := store.SetVideoStartTime(ctx, "user-1", started); err != nil {
		t.Fatalf("SetVideoStartTime() error = %v", err)
	}

	settings, err = store.GetSettings(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if settings.PlaybackTime == nil || *settings.PlaybackTime != (state.PlaybackTime{Hour: 7, Minute: 0}) {
		t.Errorf("PlaybackTime = %v, expected 07:00", settings.PlaybackTime)
	}
	if settings.Region != "ja_JP" {
		t.Errorf("Region = %q, expected ja_JP", settings.Region)
	}
	if settings.LastVideoStartTime == nil || !settings.LastVideoStartTime.Equal(started) {
		t.Errorf("LastVideoStartTime = %v, expected %v", settings.LastVideoStartTime, started)
	}

	if err := store.ClearVideoStartTime(ctx, "user-1"); err != nil {
		t.Fatalf("ClearVideoStartTime() error = %v", err)
	}
	settings, _ = store.GetSettings(ctx, "user-1")
	if settings.LastVideoStartTime != nil {
		t.Errorf("LastVideoStartTime = %v, expected cleared", settings.LastVideoStartTime)
	}
}

func TestSettingsStore_IgnoresCorruptFields(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	mr.HSet(settingsKey("user-1"), settingsFieldPlaybackTime, "25:99")
	mr.HSet(settingsKey("user-1"), settingsFieldLastVideoStart, "yesterday")

	store := NewRedisSettingsStore(client, RedisSettingsStoreConfig{})
	settings, err := store.GetSettings(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if settings.PlaybackTime != nil || settings.LastVideoStartTime != nil {
		t.Errorf("corrupt fields should read as unset, got %+v", settings)
	}
}

func TestSettingsStore_Devices(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := NewRedisSettingsStore(client, RedisSettingsStoreConfig{})

	for _, token := range []string{"token-a", "token-b", "token-a"} {
		if err := store.AddDevice(ctx, "user-1", token); err != nil {
			t.Fatalf("AddDevice() error = %v", err)
		}
	}
	if err := store.RemoveDevice(ctx, "user-1", "token-b"); err != nil {
		t.Fatalf("RemoveDevice() error = %v", err)
	}

	tokens, err := store.Devices(ctx, "user-1")
	if err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "token-a" {
		t.Errorf("Devices() = %v, expected [token-a]", tokens)
	}
}

func TestSettingsStore_ClaimReminder(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := NewRedisSettingsStore(client, RedisSettingsStoreConfig{})
	jan11 := calendar.Day{Year: 2024, Month: time.January, Day: 11}

	ok, err := store.ClaimReminder(ctx, "user-1", "daily-alarm", jan11)
	if err != nil || !ok {
		t.Fatalf("first ClaimReminder() = %v, %v, expected true", ok, err)
	}
	ok, err = store.ClaimReminder(ctx, "user-1", "daily-alarm", jan11)
	if err != nil || ok {
		t.Errorf("second ClaimReminder() = %v, %v, expected false", ok, err)
	}
	ok, err = store.ClaimReminder(ctx, "user-1", "daily-alarm", jan11.Next())
	if err != nil || !ok {
		t.Errorf("next day ClaimReminder() = %v, %v, expected true", ok, err)
	}

	if ttl := mr.TTL(reminderFiredKey("user-1", "daily-alarm", jan11.String())); ttl != reminderClaimTTL {
		t.Errorf("TTL = %v, expected %v", ttl, reminderClaimTTL)
	}
}

func TestHealthChecker(t *testing.T) {
	client, mr := setupTestRedis(t)

	checker := NewHealthChecker(client)
	if !checker.IsHealthy(context.Background()) {
		t.Error("expected healthy Redis")
	}

	mr.Close()
	if checker.IsHealthy(context.Background()) {
		t.Error("expected unhealthy Redis after close")
	}
}
