// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"fmt"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables.
// It attempts to load from .env file first (for local development),
// then parses environment variables into the Config struct.
func Load() (*Config, error) {
	// In production (Docker/K8s), environment variables are injected directly
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("no .env file found or error loading it: %v (this is normal in production)", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration.
func (c *Config) Validate() error {
	ports := map[string]int{
		"GRPC_PORT":    c.GRPCPort,
		"HTTP_PORT":    c.HTTPPort,
		"METRICS_PORT": c.MetricsPort,
	}
	seen := make(map[int]string, len(ports))
	for _, name := range []string{"GRPC_PORT", "HTTP_PORT", "METRICS_PORT"} {
		port := ports[name]
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s: %d (must be 1-65535)", name, port)
		}
		if other, dup := seen[port]; dup {
			return fmt.Errorf("%s and %s both use port %d", other, name, port)
		}
		seen[port] = name
	}

	if _, err := calendar.LoadRegion(c.DefaultTimeZone); err != nil {
		return fmt.Errorf("invalid DEFAULT_TIMEZONE: %w", err)
	}

	if c.Grace <= 0 {
		return fmt.Errorf("invalid CHALLENGE_GRACE: %s (must be positive)", c.Grace)
	}

	for _, h := range c.WarningHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("invalid WATCH_WARNING_HOURS: hour %d out of range", h)
		}
	}

	if c.ChallengeTTL < 0 {
		return fmt.Errorf("invalid CHALLENGE_TTL: %s", c.ChallengeTTL)
	}

	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}

	return nil
}
