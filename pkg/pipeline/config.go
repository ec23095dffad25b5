package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/common"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"

	"gopkg.in/yaml.v3"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Hooks   map[string][]Check `yaml:"hooks"`
	Routes  []RouteConfig      `yaml:"routes"`
	Actions []ActionConfig     `yaml:"actions"`
}

// RouteConfig sends every event of a kind to a list of actions.
type RouteConfig struct {
	Event           event.Kind `yaml:"event"`
	Actions         []string   `yaml:"actions"`
	RollbackOnError bool       `yaml:"rollback_on_error,omitempty"`
}

// ActionConfig represents an action configuration entry.
type ActionConfig struct {
	ID         string                 `yaml:"id"`
	Type       string                 `yaml:"type"`
	Enabled    bool                   `yaml:"enabled"`
	Retry      *action.RetryConfig    `yaml:"retry,omitempty"`
	Parameters map[string]interface{} `yaml:"parameters,omitempty"`
}

// Hook identifiers sent by the client app.
const (
	HookAppLaunch     = "app_launch"
	HookAppForeground = "app_foreground"
	HookScreenAppear  = "screen_appear"
)

// DefaultConfig returns the hooks the app relies on, with events logged
// and nothing else routed.
func DefaultConfig() *Config {
	return &Config{
		Hooks: map[string][]Check{
			HookAppLaunch:     {CheckSweep, CheckFailureReset, CheckReminders},
			HookAppForeground: {CheckSweep, CheckFailureReset},
			HookScreenAppear:  {CheckFailureReset, CheckScheduledTime, CheckDailyProgress},
		},
		Routes: []RouteConfig{
			{Event: event.KindStateChanged, Actions: []string{"log-events"}},
			{Event: event.KindFailureNotification, Actions: []string{"log-events"}},
		},
		Actions: []ActionConfig{
			{ID: "log-events", Type: "builtin.log", Enabled: true},
		},
	}
}

// LoadConfig loads pipeline configuration from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates pipeline YAML.
func ParseConfig(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration for common errors.
func (c *Config) Validate() error {
	for hookID, checks := range c.Hooks {
		if hookID == "" {
			return fmt.Errorf("hook with empty ID found")
		}
		for _, check := range checks {
			if !check.Valid() {
				return fmt.Errorf("hook %s: %w: %s", hookID, ErrUnknownCheck, check)
			}
		}
	}

	actionIDs := make(map[string]bool)
	for _, ac := range c.Actions {
		if ac.ID == "" {
			return fmt.Errorf("action with empty ID found")
		}
		if actionIDs[ac.ID] {
			return fmt.Errorf("duplicate action ID: %s", ac.ID)
		}
		actionIDs[ac.ID] = true

		if ac.Type == "" {
			return fmt.Errorf("action %s has empty type", ac.ID)
		}
		if err := ac.Retry.Validate(); err != nil {
			return fmt.Errorf("action %s: %w", ac.ID, err)
		}
	}

	for _, route := range c.Routes {
		if !route.Event.Valid() {
			return fmt.Errorf("route references unknown event: %s", route.Event)
		}
		for _, actionID := range route.Actions {
			if !actionIDs[actionID] {
				return fmt.Errorf("route %s references unknown action: %s", route.Event, actionID)
			}
		}
	}

	return nil
}

// ActionConfigs converts the configured actions for the action factory.
func (c *Config) ActionConfigs() []action.ActionConfig {
	configs := make([]action.ActionConfig, len(c.Actions))
	for i, ac := range c.Actions {
		configs[i] = action.ActionConfig{
			ID:         ac.ID,
			Name:       ac.ID,
			Type:       ac.Type,
			Enabled:    ac.Enabled,
			Retry:      ac.Retry,
			Parameters: ac.Parameters,
		}
	}
	return configs
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := common.GetEnv(parts[0], "")
		if value == "" {
			return defaultValue
		}
		return value
	})
}
