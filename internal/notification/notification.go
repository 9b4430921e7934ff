package notification

import (
	"context"
	"log/slog"
)

const (
	// KindDepositCredited indicates a matched bank transfer credited a balance.
	KindDepositCredited = "deposit_credited"
	// KindKeyDelivered indicates a purchased key was handed to a user.
	KindKeyDelivered = "key_delivered"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to the chat platform. Delivery sits outside
// the ledger's consistency boundary: a failed send never rolls back the
// financial mutation it reports.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
