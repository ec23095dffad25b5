package action

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ActionConfig is the base configuration for all actions.
// This is typically loaded from the pipeline YAML file.
type ActionConfig struct {
	ID         string                 `yaml:"id" json:"id"`
	Name       string                 `yaml:"name" json:"name"`
	Type       string                 `yaml:"type" json:"type"` // e.g., "builtin.push_notification"
	Enabled    bool                   `yaml:"enabled" json:"enabled"`
	Retry      *RetryConfig           `yaml:"retry,omitempty" json:"retry,omitempty"`
	Parameters map[string]interface{} `yaml:"parameters" json:"parameters"`
}

// Backoff strategies accepted by RetryConfig.
const (
	BackoffLinear      = "linear"
	BackoffExponential = "exponential"
)

// RetryConfig defines retry behavior for failed actions.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	Delay       time.Duration `yaml:"delay" json:"delay"`
	Backoff     string        `yaml:"backoff" json:"backoff"` // "linear", "exponential"
}

// Validate checks the retry settings.
func (r *RetryConfig) Validate() error {
	if r == nil {
		return nil
	}
	if r.MaxAttempts < 1 {
		return fmt.Errorf("%w: max_attempts must be at least 1", ErrInvalidConfig)
	}
	if r.Delay < 0 {
		return fmt.Errorf("%w: delay must not be negative", ErrInvalidConfig)
	}
	switch r.Backoff {
	case "", BackoffLinear, BackoffExponential:
		return nil
	default:
		return fmt.Errorf("%w: unknown backoff %q", ErrInvalidConfig, r.Backoff)
	}
}

// Policy returns the backoff policy for the action. Without a retry
// config the action runs once.
func (c *ActionConfig) Policy() backoff.BackOff {
	if c.Retry == nil || c.Retry.MaxAttempts <= 1 {
		return &backoff.StopBackOff{}
	}

	var b backoff.BackOff
	switch c.Retry.Backoff {
	case BackoffExponential:
		exp := backoff.NewExponentialBackOff()
		if c.Retry.Delay > 0 {
			exp.InitialInterval = c.Retry.Delay
		}
		exp.MaxElapsedTime = 0
		b = exp
	default:
		b = &linearBackOff{step: c.Retry.Delay}
	}

	return backoff.WithMaxRetries(b, uint64(c.Retry.MaxAttempts-1))
}

// linearBackOff waits step, 2*step, 3*step, ...
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// GetParameterInt retrieves an integer parameter with a default.
func (c *ActionConfig) GetParameterInt(key string, defaultValue int) int {
	if val, ok := c.Parameters[key]; ok {
		if intVal, ok := val.(int); ok {
			return intVal
		}
	}
	return defaultValue
}

// GetParameterString retrieves a string parameter with a default.
func (c *ActionConfig) GetParameterString(key string, defaultValue string) string {
	if val, ok := c.Parameters[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

// GetParameterBool retrieves a boolean parameter with a default.
func (c *ActionConfig) GetParameterBool(key string, defaultValue bool) bool {
	if val, ok := c.Parameters[key]; ok {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}

// GetParameterStringMap retrieves a string map parameter with a default.
// YAML maps decode as map[string]interface{}; non-string values are skipped.
func (c *ActionConfig) GetParameterStringMap(key string, defaultValue map[string]string) map[string]string {
	val, ok := c.Parameters[key]
	if !ok {
		return defaultValue
	}

	switch m := val.(type) {
	case map[string]string:
		return m
	case map[string]interface{}:
		result := make(map[string]string, len(m))
		for k, v := range m {
			if str, ok := v.(string); ok {
				result[k] = str
			}
		}
		return result
	default:
		return defaultValue
	}
}
