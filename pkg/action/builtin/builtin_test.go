package builtin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/action"
	"github.com/AccelByte/extend-resolve-challenge/pkg/event"
	"github.com/AccelByte/extend-resolve-challenge/pkg/notify"
	"github.com/AccelByte/extend-resolve-challenge/pkg/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
)

// mockNotifier records notifications
type mockNotifier struct {
	calls  int
	tokens []string
	msg    notify.Message
	err    error
}

func (m *mockNotifier) Notify(ctx context.Context, tokens []string, msg notify.Message) error {
	m.calls++
	m.tokens = tokens
	m.msg = msg
	return m.err
}

// mockDevices returns fixed device tokens
type mockDevices struct {
	tokens []string
	err    error
}

func (m *mockDevices) Devices(ctx context.Context, userID string) ([]string, error) {
	return m.tokens, m.err
}

// mockArmer records re-arm calls
type mockArmer struct {
	users []string
	err   error
}

func (m *mockArmer) ArmReminders(ctx context.Context, userID string) error {
	m.users = append(m.users, userID)
	return m.err
}

func failureEvent() event.Event {
	return event.New(event.KindFailureNotification, "test-user", "missed_day", time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC))
}

func TestPushNotificationAction_Execute(t *testing.T) {
	notifier := &mockNotifier{}
	devices := &mockDevices{tokens: []string{"token-aaaaaaaaaaaa", "token-bbbbbbbbbbbb"}}
	config := action.ActionConfig{
		ID:      "notify_failure",
		Type:    PushNotificationActionType,
		Enabled: true,
		Parameters: map[string]interface{}{
			"body": "Reason: {reason}",
			"data": map[string]interface{}{"screen": "challenge"},
		},
	}

	act, err := NewPushNotificationAction(config, notifier, devices)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	evt := failureEvent()
	if err := act.Execute(context.Background(), evt); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if notifier.calls != 1 {
		t.Fatalf("Expected 1 notify call, got %d", notifier.calls)
	}
	if len(notifier.tokens) != 2 {
		t.Errorf("Expected 2 tokens, got %d", len(notifier.tokens))
	}
	if notifier.msg.Title != "Challenge failed" {
		t.Errorf("Expected default title, got %q", notifier.msg.Title)
	}
	if notifier.msg.Body != "Reason: missed_day" {
		t.Errorf("Expected templated body, got %q", notifier.msg.Body)
	}
	if notifier.msg.Data["screen"] != "challenge" || notifier.msg.Data["eventId"] != evt.ID.String() {
		t.Errorf("Unexpected data: %v", notifier.msg.Data)
	}
}

func TestPushNotificationAction_NoDevices(t *testing.T) {
	notifier := &mockNotifier{}
	act, _ := NewPushNotificationAction(action.ActionConfig{ID: "push", Enabled: true}, notifier, &mockDevices{})

	if err := act.Execute(context.Background(), failureEvent()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if notifier.calls != 0 {
		t.Error("Expected no notification without devices")
	}
}

func TestPushNotificationAction_Errors(t *testing.T) {
	deliveryErr := notify.ErrAllDeliveriesFailed
	tests := []struct {
		name    string
		devices *mockDevices
		notify  error
		event   event.Event
		wantErr error
	}{
		{
			name:    "missing user",
			devices: &mockDevices{tokens: []string{"t"}},
			event:   event.New(event.KindDailyReminder, "", "", time.Now()),
			wantErr: action.ErrMissingUser,
		},
		{
			name:    "delivery failed",
			devices: &mockDevices{tokens: []string{"t"}},
			notify:  deliveryErr,
			event:   failureEvent(),
			wantErr: deliveryErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act, _ := NewPushNotificationAction(action.ActionConfig{ID: "push", Enabled: true}, &mockNotifier{err: tt.notify}, tt.devices)
			err := act.Execute(context.Background(), tt.event)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewPushNotificationAction_MissingDependencies(t *testing.T) {
	_, err := NewPushNotificationAction(action.ActionConfig{ID: "push"}, nil, &mockDevices{})
	if !errors.Is(err, action.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestBroadcastAction_Execute(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, service.EventsChannel("test-user"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	act, err := NewBroadcastAction(action.ActionConfig{ID: "broadcast", Enabled: true}, client)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	evt := failureEvent()
	if err := act.Execute(ctx, evt); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got event.Event
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if got.ID != evt.ID || got.Kind != evt.Kind {
			t.Errorf("Expected event %s, got %+v", evt.ID, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected broadcast message")
	}
}

func TestBroadcastAction_ChannelPrefix(t *testing.T) {
	act, err := NewBroadcastAction(action.ActionConfig{
		ID:         "broadcast",
		Parameters: map[string]interface{}{"channel_prefix": "app:"},
	}, redis.NewClient(&redis.Options{}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := act.channel("u1"); got != "app:u1" {
		t.Errorf("Expected app:u1, got %s", got)
	}
}

func TestRearmReminderAction_Execute(t *testing.T) {
	armer := &mockArmer{}
	act, err := NewRearmReminderAction(action.ActionConfig{ID: "rearm", Enabled: true}, armer)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	evt := event.New(event.KindStateChanged, "test-user", "started", time.Now())
	if err := act.Execute(context.Background(), evt); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(armer.users) != 1 || armer.users[0] != "test-user" {
		t.Errorf("Expected re-arm for test-user, got %v", armer.users)
	}

	if err := act.Rollback(context.Background(), evt); !errors.Is(err, action.ErrRollbackNotSupported) {
		t.Errorf("Expected ErrRollbackNotSupported, got %v", err)
	}
}

func TestLogAction_Execute(t *testing.T) {
	act := NewLogAction(action.ActionConfig{
		ID:         "log",
		Parameters: map[string]interface{}{"level": "debug"},
	})

	if act.level.String() != "debug" {
		t.Errorf("Expected debug level, got %s", act.level)
	}
	if err := act.Execute(context.Background(), failureEvent()); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
