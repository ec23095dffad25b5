// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-resolve-challenge/pkg/common"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// TelemetryConfig names the service on exported spans.
type TelemetryConfig struct {
	ServiceName    string
	Environment    string
	ZipkinEndpoint string
}

// SetupTelemetry installs the global tracer provider used by challenge
// scopes and the gRPC interceptors. The returned func flushes pending spans.
func SetupTelemetry(cfg TelemetryConfig) (func(context.Context) error, error) {
	tracerProvider, err := common.NewTracerProvider(cfg.ServiceName, cfg.Environment, cfg.ZipkinEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			b3.New(),
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	logrus.WithFields(logrus.Fields{
		"service":     cfg.ServiceName,
		"environment": cfg.Environment,
		"zipkin":      cfg.ZipkinEndpoint != "",
	}).Info("telemetry enabled")

	return func(ctx context.Context) error {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to flush spans: %w", err)
		}
		logrus.Info("telemetry stopped")
		return nil
	}, nil
}
