// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import "time"

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
//
// Use struct tags to define:
// - `env:"VAR_NAME"` - the environment variable name
// - `env:",required"` - make it required
// - `envDefault:"value"` - set a default value
//
// After adding fields here, update loader.go Validate() if custom
// validation is needed.
type Config struct {
	// ============================================================
	// Server configuration
	// ============================================================
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"6565"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8000"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"ResolveChallengeService"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AccessLog   bool   `env:"ACCESS_LOG" envDefault:"true"`

	// ============================================================
	// HTTP API
	// ============================================================
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"30"`

	// ============================================================
	// Redis configuration
	// ============================================================
	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// ============================================================
	// Challenge rules
	// ============================================================
	DefaultTimeZone string        `env:"DEFAULT_TIMEZONE" envDefault:"UTC"`
	Grace           time.Duration `env:"CHALLENGE_GRACE" envDefault:"5m"`
	WarningHours    []int         `env:"WATCH_WARNING_HOURS" envSeparator:"," envDefault:"12,15,18,21"`
	// ChallengeTTL expires abandoned running challenges. Zero disables it.
	ChallengeTTL    time.Duration `env:"CHALLENGE_TTL" envDefault:"0s"`

	// ============================================================
	// Pipeline configuration
	// ============================================================
	ConfigPath        string `env:"CONFIG_PATH" envDefault:"config/pipeline.yaml"`
	DispatcherWorkers int    `env:"DISPATCHER_WORKERS" envDefault:"4"`
	DispatcherQueue   int    `env:"DISPATCHER_QUEUE_SIZE" envDefault:"100"`

	// ============================================================
	// Push notifications
	// ============================================================
	// Without credentials, pushes are only logged.
	FirebaseCredentialsJSON string `env:"FIREBASE_CREDENTIALS_JSON"`
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	OtelEnabled bool `env:"OTEL_ENABLED" envDefault:"true"`
	// ZipkinEndpoint receives exported spans. Empty keeps sampling local.
	ZipkinEndpoint string `env:"OTEL_EXPORTER_ZIPKIN_ENDPOINT"`
}
