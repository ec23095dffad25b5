package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ErrAllDeliveriesFailed is returned when no device accepted the message.
var ErrAllDeliveriesFailed = errors.New("all push notifications failed")

// FCMConfig selects the service account used for Firebase Cloud Messaging.
// CredentialsJSON (base64) wins over CredentialsFile.
type FCMConfig struct {
	CredentialsJSON string
	CredentialsFile string
}

// FCMNotifier sends messages through Firebase Cloud Messaging.
type FCMNotifier struct {
	client *messaging.Client
}

// NewFCMNotifier initializes the Firebase app and its messaging client.
func NewFCMNotifier(ctx context.Context, cfg FCMConfig) (*FCMNotifier, error) {
	var opt option.ClientOption

	switch {
	case cfg.CredentialsJSON != "":
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		logrus.Info("FCM notifier: using credentials from environment")
	case cfg.CredentialsFile != "":
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			return nil, fmt.Errorf("firebase credentials file %s: %w", cfg.CredentialsFile, err)
		}
		opt = option.WithCredentialsFile(cfg.CredentialsFile)
		logrus.Infof("FCM notifier: using credentials file %s", cfg.CredentialsFile)
	default:
		return nil, errors.New("no firebase credentials configured")
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMNotifier{client: client}, nil
}

// Notify sends msg to each token individually. It succeeds if at least one
// device accepted the message.
func (n *FCMNotifier) Notify(ctx context.Context, tokens []string, msg Message) error {
	if len(tokens) == 0 {
		return nil
	}

	successCount := 0
	failureCount := 0

	for _, token := range tokens {
		message := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					Sound: "default",
				},
			},
			APNS: &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{Sound: "default"},
				},
			},
		}

		if _, err := n.client.Send(ctx, message); err != nil {
			logrus.Warnf("FCM: failed to send to token %s: %v", token, err)
			failureCount++
			continue
		}
		successCount++
	}

	logrus.Infof("FCM: sent %d messages, %d failed", successCount, failureCount)

	if successCount == 0 && failureCount > 0 {
		return ErrAllDeliveriesFailed
	}
	return nil
}
