// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/internal/bootstrap"
	"github.com/AccelByte/extend-resolve-challenge/internal/config"
	"github.com/AccelByte/extend-resolve-challenge/internal/server"
	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"
	"github.com/AccelByte/extend-resolve-challenge/pkg/challenge"
	"github.com/AccelByte/extend-resolve-challenge/pkg/clock"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
	"github.com/AccelByte/extend-resolve-challenge/pkg/handler"
	"github.com/AccelByte/extend-resolve-challenge/pkg/notify"
	"github.com/AccelByte/extend-resolve-challenge/pkg/reminder"
	"github.com/AccelByte/extend-resolve-challenge/pkg/service"
	"github.com/cenkalti/backoff/v4"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	actionBuiltin "github.com/AccelByte/extend-resolve-challenge/pkg/action/builtin"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	grpcServer        *server.GRPCServer
	httpServer        *server.HTTPServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	dispatcher        *event.Dispatcher
	reminders         *reminder.Scheduler
	limiter           *handler.RateLimiter
	stopCleanup       context.CancelFunc
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes a new application instance.
//
// Components are initialized in dependency order:
// 1. Redis (challenge, ledger, settings and history storage)
// 2. Pipeline config (YAML configuration)
// 3. Notifier (FCM, or log-only without credentials)
// 4. Challenge manager with its dispatcher and reminder scheduler
// 5. Pipeline components (actions → routes → hooks)
// 6. Servers (HTTP, gRPC, metrics)
// 7. Telemetry (OpenTelemetry tracing)
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// ============================================================
	// Step 1: Initialize Redis
	// ============================================================
	if err := app.initRedis(ctx); err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	stores := service.NewRedisStores(app.redisClient, service.RedisStoresConfig{
		Challenge: service.RedisChallengeStoreConfig{TTL: cfg.ChallengeTTL},
	})

	// ============================================================
	// Step 2: Load pipeline configuration
	// ============================================================
	pipelineConfig, err := bootstrap.LoadPipelineConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline config from %s: %w", cfg.ConfigPath, err)
	}

	// ============================================================
	// Step 3: Initialize push notifications
	// ============================================================
	notifier := app.initNotifier(ctx)

	// ============================================================
	// Step 4: Challenge manager
	// ============================================================
	loc, err := calendar.LoadRegion(cfg.DefaultTimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load default time zone: %w", err)
	}

	app.dispatcher = event.NewDispatcher(event.DispatcherConfig{
		Workers:   cfg.DispatcherWorkers,
		QueueSize: cfg.DispatcherQueue,
	})
	app.reminders = reminder.NewScheduler(clock.Real())

	manager := challenge.NewManager(challenge.Dependencies{
		Clock:      clock.Real(),
		Challenges: stores.Challenges,
		Ledger:     stores.Ledger,
		Settings:   stores.Settings,
		History:    stores.History,
		Publisher:  app.dispatcher,
		Reminders:  app.reminders,
	}, challenge.Config{
		DefaultLocation: loc,
		Grace:           cfg.Grace,
		WarningHours:    cfg.WarningHours,
	})

	// ============================================================
	// Step 5: Bootstrap pipeline components
	// ============================================================
	deps := &actionBuiltin.Dependencies{
		Notifier:  notifier,
		Devices:   stores.Settings,
		Redis:     app.redisClient,
		Reminders: manager,
	}

	actionExecutor, _, err := bootstrap.InitActionExecutor(pipelineConfig, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to init action executor: %w", err)
	}

	pipelineManager, err := bootstrap.InitPipeline(manager, actionExecutor, pipelineConfig, app.dispatcher)
	if err != nil {
		return nil, fmt.Errorf("pipeline wiring validation failed: %w", err)
	}
	logrus.Info("pipeline wiring validation passed")

	// ============================================================
	// Step 6: Setup servers
	// ============================================================
	routerCfg := handler.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Health:         stores.Health,
	}
	if cfg.AccessLog {
		routerCfg.AccessLog = os.Stdout
	}
	if cfg.RateLimitRPS > 0 {
		app.limiter = handler.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		routerCfg.Limiter = app.limiter
	}
	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, handler.NewRouter(handler.NewAPI(manager, pipelineManager), routerCfg))

	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, stores.Health)
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics", appCollectors()...)
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	// ============================================================
	// Step 7: Setup telemetry
	// ============================================================
	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(server.TelemetryConfig{
			ServiceName:    cfg.ServiceName,
			Environment:    cfg.Environment,
			ZipkinEndpoint: cfg.ZipkinEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

func appCollectors() []prometheus.Collector {
	var cs []prometheus.Collector
	cs = append(cs, challenge.Collectors()...)
	cs = append(cs, action.Collectors()...)
	cs = append(cs, handler.Collectors()...)
	return cs
}

// initRedis initializes the Redis client.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisHost + ":" + a.cfg.RedisPort,
		Password:     a.cfg.RedisPassword,
		DB:           a.cfg.RedisDB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(a.cfg.RedisRetryDelayMs) * time.Millisecond
	maxRetries := backoff.WithMaxRetries(b, uint64(a.cfg.RedisMaxRetries))

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		backoff.WithContext(maxRetries, ctx),
	)

	if err != nil {
		_ = client.Close()
		return err
	}

	a.redisClient = client
	logrus.Info("Redis client initialized")
	return nil
}

// initNotifier returns an FCM notifier when Firebase credentials are
// configured and a log-only notifier otherwise.
func (a *App) initNotifier(ctx context.Context) notify.Notifier {
	if a.cfg.FirebaseCredentialsJSON == "" && a.cfg.FirebaseCredentialsFile == "" {
		logrus.Warn("no Firebase credentials configured, push notifications are only logged")
		return notify.NewLogNotifier()
	}

	fcm, err := notify.NewFCMNotifier(ctx, notify.FCMConfig{
		CredentialsJSON: a.cfg.FirebaseCredentialsJSON,
		CredentialsFile: a.cfg.FirebaseCredentialsFile,
	})
	if err != nil {
		logrus.Errorf("could not initialize FCM, push notifications are only logged: %v", err)
		return notify.NewLogNotifier()
	}

	logrus.Info("FCM push notifier initialized")
	return fcm
}
