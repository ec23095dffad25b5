package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/action/builtin"
	"github.com/AccelByte/extend-resolve-challenge/pkg/challenge"
	"github.com/AccelByte/extend-resolve-challenge/pkg/clock"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
	"github.com/AccelByte/extend-resolve-challenge/pkg/pipeline"
	"github.com/AccelByte/extend-resolve-challenge/pkg/reminder"
	"github.com/AccelByte/extend-resolve-challenge/pkg/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// TestIntegration_MissedDayFlowsThroughPipeline tests that a hook run on a
// stale challenge fails it, resets it, and drives the routed actions.
func TestIntegration_MissedDayFlowsThroughPipeline(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	fake := clock.Fake(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	stores := service.NewRedisStores(client, service.RedisStoresConfig{})
	scheduler := reminder.NewScheduler(fake)
	defer scheduler.Stop()

	dispatcher := event.NewDispatcher(event.DispatcherConfig{Workers: 2})

	manager := challenge.NewManager(challenge.Dependencies{
		Clock:      fake,
		Challenges: stores.Challenges,
		Ledger:     stores.Ledger,
		Settings:   stores.Settings,
		History:    stores.History,
		Publisher:  dispatcher,
		Reminders:  scheduler,
	}, challenge.Config{})

	builtin.RegisterActions(&builtin.Dependencies{Redis: client, Reminders: manager})

	config := &pipeline.Config{
		Hooks: map[string][]pipeline.Check{
			pipeline.HookAppLaunch: {pipeline.CheckSweep, pipeline.CheckFailureReset, pipeline.CheckReminders},
		},
		Routes: []pipeline.RouteConfig{
			{Event: event.KindFailureNotification, Actions: []string{"push"}},
			{Event: event.KindUIReset, Actions: []string{"broadcast"}},
		},
		Actions: []pipeline.ActionConfig{
			{ID: "broadcast", Type: builtin.BroadcastActionType, Enabled: true},
		},
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("invalid config: %v", err)
	}

	registry := action.NewRegistry()
	if err := action.RegisterActions(registry, config.ActionConfigs()); err != nil {
		t.Fatalf("Failed to register actions: %v", err)
	}
	push := &recordingAction{id: "push"}
	registry.Register(push)

	if err := pipeline.ValidateWiring(registry, config); err != nil {
		t.Fatalf("wiring validation failed: %v", err)
	}

	pm := pipeline.NewManager(manager, action.NewExecutor(registry), config)
	pm.Subscribe(dispatcher)
	dispatcher.Start()

	sub := client.Subscribe(ctx, service.EventsChannel("user-1"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Start, watch the first day, then come back two days later.
	if err := stores.Ledger.Add(ctx, "user-1", 1000); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := manager.Start(ctx, "user-1", 1000, 50000); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := manager.RecordWatch(ctx, "user-1"); err != nil {
		t.Fatalf("watch: %v", err)
	}
	fake.Set(time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC))

	result, err := pm.RunHook(ctx, pipeline.HookAppLaunch, "user-1")
	if err != nil {
		t.Fatalf("RunHook failed: %v", err)
	}

	want := []pipeline.CheckResult{
		{Check: pipeline.CheckSweep, Outcome: "missed_day"},
		{Check: pipeline.CheckFailureReset, Outcome: "reset=true"},
		{Check: pipeline.CheckReminders, Outcome: "armed"},
	}
	if len(result.Checks) != len(want) {
		t.Fatalf("checks = %+v, want %+v", result.Checks, want)
	}
	for i := range want {
		if result.Checks[i] != want[i] {
			t.Errorf("check %d = %+v, want %+v", i, result.Checks[i], want[i])
		}
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := dispatcher.Stop(stopCtx); err != nil {
		t.Fatalf("dispatcher stop: %v", err)
	}

	if len(push.events) != 1 || push.events[0].Reason != "missed_day" {
		t.Errorf("expected one missed_day failure notification, got %+v", push.events)
	}

	select {
	case msg := <-sub.Channel():
		if msg.Payload == "" {
			t.Error("expected a broadcast payload")
		}
	case <-time.After(2 * time.Second):
		t.Error("expected ui reset to be broadcast")
	}

	c, err := stores.Challenges.GetChallenge(ctx, "user-1")
	if err != nil {
		t.Fatalf("get challenge: %v", err)
	}
	if c != nil {
		t.Errorf("expected failed challenge to be cleared, got %+v", c)
	}
}

// TestIntegration_DefaultConfigWiring tests that the default pipeline
// config is valid once the builtin actions are registered.
func TestIntegration_DefaultConfigWiring(t *testing.T) {
	builtin.RegisterActions(&builtin.Dependencies{})

	config := pipeline.DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}

	registry := action.NewRegistry()
	if err := action.RegisterActions(registry, config.ActionConfigs()); err != nil {
		t.Fatalf("Failed to register actions: %v", err)
	}

	if err := pipeline.ValidateWiring(registry, config); err != nil {
		t.Errorf("default config wiring failed: %v", err)
	}
}
