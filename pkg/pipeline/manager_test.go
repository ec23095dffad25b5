package pipeline_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
	"github.com/AccelByte/extend-resolve-challenge/pkg/pipeline"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"
)

// mockChecker records the checks a hook runs
type mockChecker struct {
	calls      []string
	sweepErr   error
	sweep      state.Outcome
	armedUsers []string
}

func (m *mockChecker) Evaluate(ctx context.Context, userID string) (state.Outcome, error) {
	m.calls = append(m.calls, "sweep")
	return m.sweep, m.sweepErr
}

func (m *mockChecker) CheckAndResetFailedChallenge(ctx context.Context, userID string) (bool, error) {
	m.calls = append(m.calls, "failure_reset")
	return true, nil
}

func (m *mockChecker) CheckScheduledTimeFailure(ctx context.Context, userID string) (state.Outcome, error) {
	m.calls = append(m.calls, "scheduled_time")
	return state.OutcomeNone, nil
}

func (m *mockChecker) CheckDailyWatchingProgress(ctx context.Context, userID string) (bool, error) {
	m.calls = append(m.calls, "daily_progress")
	return false, nil
}

func (m *mockChecker) ArmReminders(ctx context.Context, userID string) error {
	m.calls = append(m.calls, "reminders")
	m.armedUsers = append(m.armedUsers, userID)
	return nil
}

// recordingAction remembers the events it handled
type recordingAction struct {
	id     string
	err    error
	events []event.Event
}

func (a *recordingAction) ID() string   { return a.id }
func (a *recordingAction) Name() string { return "Recording " + a.id }
func (a *recordingAction) Execute(ctx context.Context, e event.Event) error {
	a.events = append(a.events, e)
	return a.err
}
func (a *recordingAction) Rollback(ctx context.Context, e event.Event) error {
	return action.ErrRollbackNotSupported
}
func (a *recordingAction) Config() action.ActionConfig {
	return action.ActionConfig{ID: a.id, Enabled: true}
}

func TestManager_RunHook_DefaultHooks(t *testing.T) {
	tests := []struct {
		hook string
		want []string
	}{
		{hook: pipeline.HookAppLaunch, want: []string{"sweep", "failure_reset", "reminders"}},
		{hook: pipeline.HookAppForeground, want: []string{"sweep", "failure_reset"}},
		{hook: pipeline.HookScreenAppear, want: []string{"failure_reset", "scheduled_time", "daily_progress"}},
	}

	for _, tt := range tests {
		t.Run(tt.hook, func(t *testing.T) {
			checker := &mockChecker{sweep: state.OutcomeNone}
			manager := pipeline.NewManager(checker, action.NewExecutor(action.NewRegistry()), pipeline.DefaultConfig())

			result, err := manager.RunHook(context.Background(), tt.hook, "user-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !reflect.DeepEqual(checker.calls, tt.want) {
				t.Errorf("checks = %v, want %v", checker.calls, tt.want)
			}
			if len(result.Checks) != len(tt.want) {
				t.Errorf("expected %d check results, got %d", len(tt.want), len(result.Checks))
			}
		})
	}
}

func TestManager_RunHook_ReportsOutcomes(t *testing.T) {
	checker := &mockChecker{sweep: state.OutcomeMissedDay}
	manager := pipeline.NewManager(checker, action.NewExecutor(action.NewRegistry()), pipeline.DefaultConfig())

	result, err := manager.RunHook(context.Background(), pipeline.HookAppForeground, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []pipeline.CheckResult{
		{Check: pipeline.CheckSweep, Outcome: "missed_day"},
		{Check: pipeline.CheckFailureReset, Outcome: "reset=true"},
	}
	if !reflect.DeepEqual(result.Checks, want) {
		t.Errorf("checks = %+v, want %+v", result.Checks, want)
	}
}

func TestManager_RunHook_UnknownHook(t *testing.T) {
	manager := pipeline.NewManager(&mockChecker{}, action.NewExecutor(action.NewRegistry()), pipeline.DefaultConfig())

	_, err := manager.RunHook(context.Background(), "app_crash", "user-1")
	if !errors.Is(err, pipeline.ErrUnknownHook) {
		t.Errorf("expected ErrUnknownHook, got %v", err)
	}
}

func TestManager_RunHook_StopsAtFirstError(t *testing.T) {
	boom := errors.New("redis unavailable")
	checker := &mockChecker{sweepErr: boom}
	manager := pipeline.NewManager(checker, action.NewExecutor(action.NewRegistry()), pipeline.DefaultConfig())

	result, err := manager.RunHook(context.Background(), pipeline.HookAppLaunch, "user-1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped check error, got %v", err)
	}

	if len(checker.calls) != 1 {
		t.Errorf("expected only the failing check to run, got %v", checker.calls)
	}
	if len(result.Checks) != 0 {
		t.Errorf("expected no completed checks, got %v", result.Checks)
	}
}

func TestManager_Hooks(t *testing.T) {
	manager := pipeline.NewManager(&mockChecker{}, action.NewExecutor(action.NewRegistry()), pipeline.DefaultConfig())

	want := []string{pipeline.HookAppForeground, pipeline.HookAppLaunch, pipeline.HookScreenAppear}
	if got := manager.Hooks(); !reflect.DeepEqual(got, want) {
		t.Errorf("Hooks() = %v, want %v", got, want)
	}
}

func TestManager_HandleEvent_RunsRoutedActions(t *testing.T) {
	registry := action.NewRegistry()
	push := &recordingAction{id: "push"}
	broadcast := &recordingAction{id: "broadcast"}
	registry.Register(push)
	registry.Register(broadcast)

	config := &pipeline.Config{
		Routes: []pipeline.RouteConfig{
			{Event: event.KindFailureNotification, Actions: []string{"push", "broadcast"}},
			{Event: event.KindStateChanged, Actions: []string{"broadcast"}},
		},
	}
	manager := pipeline.NewManager(&mockChecker{}, action.NewExecutor(registry), config)

	failure := event.New(event.KindFailureNotification, "user-1", "missed_day", time.Now())
	if err := manager.HandleEvent(context.Background(), failure); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(push.events) != 1 || len(broadcast.events) != 1 {
		t.Errorf("expected both actions to run once, got push=%d broadcast=%d", len(push.events), len(broadcast.events))
	}

	// Unrouted kinds are ignored.
	if err := manager.HandleEvent(context.Background(), event.New(event.KindDailyReminder, "user-1", "", time.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(push.events) != 1 {
		t.Error("expected no action for an unrouted event")
	}
}

func TestManager_HandleEvent_ReturnsActionError(t *testing.T) {
	registry := action.NewRegistry()
	failing := &recordingAction{id: "push", err: errors.New("fcm unavailable")}
	registry.Register(failing)

	manager := pipeline.NewManager(&mockChecker{}, action.NewExecutor(registry), &pipeline.Config{
		Routes: []pipeline.RouteConfig{{Event: event.KindFailureNotification, Actions: []string{"push"}}},
	})

	err := manager.HandleEvent(context.Background(), event.New(event.KindFailureNotification, "user-1", "late", time.Now()))
	if err == nil {
		t.Fatal("expected action error to be returned")
	}
}

func TestManager_SubscribeDeliversThroughDispatcher(t *testing.T) {
	registry := action.NewRegistry()
	broadcast := &recordingAction{id: "broadcast"}
	registry.Register(broadcast)

	manager := pipeline.NewManager(&mockChecker{}, action.NewExecutor(registry), &pipeline.Config{
		Routes: []pipeline.RouteConfig{{Event: event.KindUIReset, Actions: []string{"broadcast"}}},
	})

	dispatcher := event.NewDispatcher(event.DispatcherConfig{Workers: 2})
	manager.Subscribe(dispatcher)
	dispatcher.Start()

	dispatcher.Publish(context.Background(),
		event.New(event.KindUIReset, "user-1", "reset_after_failure", time.Now()),
		event.New(event.KindStateChanged, "user-1", "reset_after_failure", time.Now()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dispatcher.Stop(ctx); err != nil {
		t.Fatalf("dispatcher stop: %v", err)
	}

	if len(broadcast.events) != 1 || broadcast.events[0].Kind != event.KindUIReset {
		t.Errorf("expected one ui-reset broadcast, got %+v", broadcast.events)
	}
}
