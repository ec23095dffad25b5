// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	actionBuiltin "github.com/AccelByte/extend-resolve-challenge/pkg/action/builtin"
	"github.com/AccelByte/extend-resolve-challenge/pkg/pipeline"

	"github.com/sirupsen/logrus"
)

// InitActionExecutor creates and initializes an action executor with actions from pipeline config.
//
// Actions react to challenge events (push a failure notification, broadcast
// a UI reset, re-arm reminders). To add a new action type:
// 1. Create your action in pkg/action/builtin/
// 2. Register the action type in pkg/action/builtin/init.go
// 3. Declare it under `actions` in config/pipeline.yaml
// 4. Route an event kind to it under `routes`
//
// Actions that need external services receive them through
// actionBuiltin.Dependencies.
func InitActionExecutor(
	pipelineConfig *pipeline.Config,
	deps *actionBuiltin.Dependencies,
) (*action.Executor, *action.Registry, error) {
	actionBuiltin.RegisterActions(deps)

	registry := action.NewRegistry()
	if err := action.RegisterActions(registry, pipelineConfig.ActionConfigs()); err != nil {
		return nil, nil, fmt.Errorf("failed to register actions: %w", err)
	}

	executor := action.NewExecutor(registry)
	logrus.Infof("initialized action executor with %d actions", registry.Count())

	return executor, registry, nil
}
