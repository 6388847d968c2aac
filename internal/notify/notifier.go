// Package notify defines the notification interface and implementations
// for delivering run summaries.
package notify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/frommer-watch/internal/config"
)

// Notifier delivers a run summary message.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// New picks the notifier for cfg. Telegram is used only when it is the
// configured method and both credentials are present; every other case
// yields a NoOpNotifier that logs why nothing was sent.
func New(cfg config.NotifyConfig, log *slog.Logger) Notifier {
	if cfg.Method != config.NotifyTelegram {
		return NewNoOpNotifier(log, "telegram disabled (NOTIFY_METHOD != telegram)", slog.LevelInfo)
	}

	if !cfg.Telegram.Configured() {
		return NewNoOpNotifier(log, "telegram not configured (missing token/chat id)", slog.LevelWarn)
	}

	opts := []TelegramOption{
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithTelegramLogger(log),
	}
	if cfg.Telegram.APIEndpoint != "" {
		opts = append(opts, WithAPIEndpoint(cfg.Telegram.APIEndpoint))
	}

	t, err := NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, opts...)
	if err != nil {
		return NewNoOpNotifier(log, "telegram not configured: "+err.Error(), slog.LevelWarn)
	}

	return t
}
