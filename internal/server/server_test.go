// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type probeFunc func(ctx context.Context) error

func (f probeFunc) Check(ctx context.Context) error { return f(ctx) }

func TestGRPCServer_HealthFollowsProbe(t *testing.T) {
	var probeErr error
	s := NewGRPCServer(0, probeFunc(func(ctx context.Context) error { return probeErr }))
	require.NoError(t, s.Setup())

	ctx := context.Background()
	status := func() grpc_health_v1.HealthCheckResponse_ServingStatus {
		resp, err := s.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
		require.NoError(t, err)
		return resp.GetStatus()
	}

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(), "not serving before the first probe")

	s.refreshHealth(ctx)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status())

	probeErr = errors.New("redis down")
	s.refreshHealth(ctx)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status())
}

func TestMetricsServer_ExposesCollectors(t *testing.T) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resolve_test_events_total",
		Help: "test counter",
	})
	counter.Add(3)

	m := NewMetricsServer(0, "/metrics", counter)
	require.NoError(t, m.Setup())

	rec := httptest.NewRecorder()
	m.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resolve_test_events_total 3")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMetricsServer_DuplicateCollector(t *testing.T) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "resolve_dup_total", Help: "dup"})

	m := NewMetricsServer(0, "/metrics", counter, counter)
	assert.Error(t, m.Setup())
}

func TestSetupTelemetry_LocalOnly(t *testing.T) {
	shutdown, err := SetupTelemetry(TelemetryConfig{ServiceName: "test", Environment: "test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
