package service

import "github.com/go-redis/redis/v8"

// RedisStores bundles every Redis-backed store sharing one client.
type RedisStores struct {
	Challenges *RedisChallengeStore
	Ledger     *RedisCreditLedger
	History    *RedisWatchHistory
	Settings   *RedisSettingsStore
	Health     *HealthChecker
}

type RedisStoresConfig struct {
	Challenge RedisChallengeStoreConfig
	Ledger    RedisCreditLedgerConfig
}

func NewRedisStores(
	client *redis.Client,
	cfg RedisStoresConfig,
) *RedisStores {
	return &RedisStores{
		Challenges: NewRedisChallengeStore(client, cfg.Challenge),
		Ledger:     NewRedisCreditLedger(client, cfg.Ledger),
		History:    NewRedisWatchHistory(client, RedisWatchHistoryConfig{}),
		Settings:   NewRedisSettingsStore(client, RedisSettingsStoreConfig{}),
		Health:     NewHealthChecker(client),
	}
}
