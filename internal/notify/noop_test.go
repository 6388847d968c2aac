package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOpNotifier_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reason  string
		level   slog.Level
		wantLvl string
	}{
		{
			name:    "disabled logs at info",
			reason:  "telegram disabled (NOTIFY_METHOD != telegram)",
			level:   slog.LevelInfo,
			wantLvl: "level=INFO",
		},
		{
			name:    "unconfigured logs at warn",
			reason:  "telegram not configured (missing token/chat id)",
			level:   slog.LevelWarn,
			wantLvl: "level=WARN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			n := NewNoOpNotifier(slog.New(slog.NewTextHandler(&buf, nil)), tt.reason, tt.level)

			err := n.Send(context.Background(), "1 new Frommer Stop part(s) found:")
			require.NoError(t, err)

			assert.Contains(t, buf.String(), tt.wantLvl)
			assert.Contains(t, buf.String(), tt.reason)
			assert.Equal(t, tt.reason, n.Reason())
		})
	}
}

func TestNoOpNotifier_NilLogger(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(nil, "disabled", slog.LevelDebug)
	require.NoError(t, n.Send(context.Background(), "hello"))
}

// compile-time interface checks.
var (
	_ Notifier = (*NoOpNotifier)(nil)
	_ Notifier = (*WriterNotifier)(nil)
	_ Notifier = (*TelegramNotifier)(nil)
)
