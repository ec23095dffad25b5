// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
	"github.com/AccelByte/extend-resolve-challenge/pkg/pipeline"

	"github.com/sirupsen/logrus"
)

// LoadPipelineConfig reads the pipeline YAML at path. A missing file falls
// back to pipeline.DefaultConfig; a malformed one is an error.
func LoadPipelineConfig(path string) (*pipeline.Config, error) {
	cfg, err := pipeline.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("pipeline config %s not found, using defaults", path)
		return pipeline.DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	logrus.Infof("loaded pipeline config from %s: %d hooks, %d routes, %d actions",
		path, len(cfg.Hooks), len(cfg.Routes), len(cfg.Actions))
	return cfg, nil
}

// InitPipeline validates the wiring, creates the pipeline manager and
// subscribes its routes to the dispatcher.
//
// The pipeline orchestrates the flow:
// Hook → Checks → Events → Actions
//
// Hooks and routes are configured in config/pipeline.yaml:
//
// hooks:
//   app_launch: [sweep, failure_reset, reminders]
// routes:
//   - event: failure-notification-requested
//     actions: [push-failure]
//
// To modify them, edit config/pipeline.yaml, not this file.
func InitPipeline(
	checker pipeline.Checker,
	actionExecutor *action.Executor,
	pipelineConfig *pipeline.Config,
	dispatcher *event.Dispatcher,
) (*pipeline.Manager, error) {
	if err := pipeline.ValidateWiring(actionExecutor.GetRegistry(), pipelineConfig); err != nil {
		return nil, fmt.Errorf("invalid pipeline: %w", err)
	}

	manager := pipeline.NewManager(checker, actionExecutor, pipelineConfig)
	if dispatcher != nil {
		manager.Subscribe(dispatcher)
	}
	logrus.Infof("initialized pipeline manager with hooks %v", manager.Hooks())

	return manager, nil
}
