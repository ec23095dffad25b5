package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Message is a push notification payload.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Notifier delivers a message to device tokens.
type Notifier interface {
	Notify(ctx context.Context, tokens []string, msg Message) error
}

// LogNotifier writes messages to the log instead of delivering them. It is
// used when no push credentials are configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, tokens []string, msg Message) error {
	logrus.WithFields(logrus.Fields{
		"devices": len(tokens),
		"title":   msg.Title,
		"data":    msg.Data,
	}).Info("push notification (log only)")
	return nil
}
