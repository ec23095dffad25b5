package pipeline

import (
	"fmt"
	"strings"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
)

// ValidateWiring validates that the pipeline is correctly wired.
// It checks that:
// - All enabled actions in config have registered instances
// - Every route only references registered or deliberately disabled actions
// - Every hook lists known checks
//
// This catches common mistakes like forgetting to register a builtin
// action type or a typo in a check name.
func ValidateWiring(actionRegistry *action.Registry, config *Config) error {
	var problems []string

	enabled := make(map[string]bool)
	for _, ac := range config.Actions {
		enabled[ac.ID] = ac.Enabled
		if !ac.Enabled {
			continue
		}

		if actionRegistry.Get(ac.ID) == nil {
			problems = append(problems, fmt.Sprintf("action '%s' (type=%s) is enabled in config but not registered", ac.ID, ac.Type))
		}
	}

	for _, route := range config.Routes {
		for _, actionID := range route.Actions {
			isEnabled, declared := enabled[actionID]
			if declared && !isEnabled {
				continue
			}
			if !actionRegistry.Has(actionID) {
				problems = append(problems, fmt.Sprintf("route '%s' references unregistered action '%s'", route.Event, actionID))
			}
		}
	}

	for hookID, checks := range config.Hooks {
		for _, check := range checks {
			if !check.Valid() {
				problems = append(problems, fmt.Sprintf("hook '%s' references unknown check '%s'", hookID, check))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("pipeline wiring validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}

	return nil
}
