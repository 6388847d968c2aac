package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded messages. It is used
// when notifications are disabled or Telegram is not configured, and never
// touches the network.
type NoOpNotifier struct {
	log    *slog.Logger
	reason string
	level  slog.Level
}

// NewNoOpNotifier creates a notifier that discards messages, logging reason
// at level on every Send.
func NewNoOpNotifier(log *slog.Logger, reason string, level slog.Level) *NoOpNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &NoOpNotifier{log: log, reason: reason, level: level}
}

// Reason returns why messages are discarded.
func (n *NoOpNotifier) Reason() string {
	return n.reason
}

// Send logs and discards message.
func (n *NoOpNotifier) Send(ctx context.Context, message string) error {
	n.log.Log(ctx, n.level, n.reason, "message_chars", len(message))
	return nil
}
