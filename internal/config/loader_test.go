// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 6565, cfg.GRPCPort)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, 8080, cfg.MetricsPort)
	assert.Equal(t, "UTC", cfg.DefaultTimeZone)
	assert.Equal(t, 5*time.Minute, cfg.Grace)
	assert.Equal(t, []int{12, 15, 18, 21}, cfg.WarningHours)
	assert.Zero(t, cfg.ChallengeTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestParse_FromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DEFAULT_TIMEZONE", "ja_JP")
	t.Setenv("CHALLENGE_GRACE", "10m")
	t.Setenv("WATCH_WARNING_HOURS", "9,20")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com,https://admin.example.com")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "ja_JP", cfg.DefaultTimeZone)
	assert.Equal(t, 10*time.Minute, cfg.Grace)
	assert.Equal(t, []int{9, 20}, cfg.WarningHours)
	assert.Len(t, cfg.AllowedOrigins, 2)
	assert.NoError(t, cfg.Validate())
}

func TestParse_InvalidValue(t *testing.T) {
	t.Setenv("GRPC_PORT", "not-a-port")

	_, err := Parse()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			GRPCPort:        6565,
			HTTPPort:        8000,
			MetricsPort:     8080,
			DefaultTimeZone: "UTC",
			Grace:           5 * time.Minute,
			WarningHours:    []int{12, 21},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "port out of range", mutate: func(c *Config) { c.HTTPPort = 70000 }, wantErr: "HTTP_PORT"},
		{name: "port clash", mutate: func(c *Config) { c.MetricsPort = 6565 }, wantErr: "both use port"},
		{name: "unknown time zone", mutate: func(c *Config) { c.DefaultTimeZone = "Mars/Olympus" }, wantErr: "DEFAULT_TIMEZONE"},
		{name: "empty time zone", mutate: func(c *Config) { c.DefaultTimeZone = "" }, wantErr: "DEFAULT_TIMEZONE"},
		{name: "zero grace", mutate: func(c *Config) { c.Grace = 0 }, wantErr: "CHALLENGE_GRACE"},
		{name: "bad warning hour", mutate: func(c *Config) { c.WarningHours = []int{24} }, wantErr: "WATCH_WARNING_HOURS"},
		{name: "negative rate", mutate: func(c *Config) { c.RateLimitRPS = -1 }, wantErr: "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
