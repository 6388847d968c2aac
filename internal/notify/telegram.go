package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/donaldgifford/frommer-watch/internal/metrics"
)

// telegramMaxMessageLen is the Bot API limit for one text message.
const telegramMaxMessageLen = 4096

// ErrInvalidChatID is returned for a chat id that is neither numeric nor an
// @channel username.
var ErrInvalidChatID = errors.New("invalid telegram chat id")

// TelegramNotifier implements Notifier via the Telegram Bot API sendMessage
// method (form fields chat_id and text).
type TelegramNotifier struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	channel string
	log     *slog.Logger
}

type telegramOptions struct {
	client   *http.Client
	endpoint string
	log      *slog.Logger
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*telegramOptions)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) TelegramOption {
	return func(o *telegramOptions) {
		o.client = c
	}
}

// WithAPIEndpoint overrides the Bot API endpoint. The value is a format
// string taking the token and the method name, like tgbotapi.APIEndpoint.
func WithAPIEndpoint(endpoint string) TelegramOption {
	return func(o *telegramOptions) {
		o.endpoint = endpoint
	}
}

// WithTelegramLogger sets a custom logger.
func WithTelegramLogger(l *slog.Logger) TelegramOption {
	return func(o *telegramOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewTelegramNotifier creates a TelegramNotifier. chatID is either a numeric
// chat id or an @channel username. No request is made until Send.
func NewTelegramNotifier(token, chatID string, opts ...TelegramOption) (*TelegramNotifier, error) {
	o := telegramOptions{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: tgbotapi.APIEndpoint,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}

	n := &TelegramNotifier{log: o.log}

	chatID = strings.TrimSpace(chatID)
	switch id, err := strconv.ParseInt(chatID, 10, 64); {
	case err == nil && id != 0:
		n.chatID = id
	case strings.HasPrefix(chatID, "@") && len(chatID) > 1:
		n.channel = chatID
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidChatID, chatID)
	}

	// Built directly rather than with tgbotapi.NewBotAPI, which calls getMe
	// on construction.
	n.api = &tgbotapi.BotAPI{
		Token:  token,
		Client: o.client,
		Buffer: 100,
	}
	n.api.SetAPIEndpoint(o.endpoint)

	return n, nil
}

// Send delivers message, splitting it on entry boundaries when it exceeds
// Telegram's length limit. The first failing part aborts the rest.
func (t *TelegramNotifier) Send(ctx context.Context, message string) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	parts := splitMessage(message, telegramMaxMessageLen)
	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sending telegram message: %w", err)
		}

		if _, err := t.api.Send(t.newMessage(part)); err != nil {
			return fmt.Errorf("sending telegram message %d/%d: %w", i+1, len(parts), err)
		}
	}

	metrics.NotificationsSentTotal.Inc()
	t.log.Info("telegram message sent", "parts", len(parts))
	return nil
}

func (t *TelegramNotifier) newMessage(text string) tgbotapi.MessageConfig {
	if t.channel != "" {
		return tgbotapi.NewMessageToChannel(t.channel, text)
	}
	return tgbotapi.NewMessage(t.chatID, text)
}
