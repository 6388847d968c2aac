package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variables understood by the watcher.
const (
	EnvNotifyMethod     = "NOTIFY_METHOD"
	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID   = "TELEGRAM_CHAT_ID"
	EnvRequestTimeout   = "REQUEST_TIMEOUT"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFormat        = "LOG_FORMAT"
	EnvPushgatewayURL   = "PUSHGATEWAY_URL"
)

// Viper keys. CLI flags bind to the same keys so that flags win over the
// environment, which wins over the YAML file.
const (
	KeyNotifyMethod     = "notify.method"
	KeyTelegramBotToken = "notify.telegram.bot_token"
	KeyTelegramChatID   = "notify.telegram.chat_id"
	KeyRequestTimeout   = "http.timeout"
	KeyLogLevel         = "logging.level"
	KeyLogFormat        = "logging.format"
	KeyPushgatewayURL   = "metrics.pushgateway_url"
)

var envBindings = []struct{ key, env string }{
	{KeyNotifyMethod, EnvNotifyMethod},
	{KeyTelegramBotToken, EnvTelegramBotToken},
	{KeyTelegramChatID, EnvTelegramChatID},
	{KeyRequestTimeout, EnvRequestTimeout},
	{KeyLogLevel, EnvLogLevel},
	{KeyLogFormat, EnvLogFormat},
	{KeyPushgatewayURL, EnvPushgatewayURL},
}

// BindEnv maps the watcher's environment variables onto v. A variable set
// to the empty string counts as set, so NOTIFY_METHOD="" disables
// notifications instead of falling back to telegram.
func BindEnv(v *viper.Viper) error {
	v.AllowEmptyEnv(true)
	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return fmt.Errorf("binding %s: %w", b.env, err)
		}
	}
	return nil
}

// Overlay copies every key explicitly set in v (environment or changed
// flag) onto cfg. Empty values are applied to the notify and metrics keys,
// where empty means off; logging and timeout keys ignore them.
func Overlay(cfg *Config, v *viper.Viper) error {
	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setNonEmpty := func(key string, dst *string) {
		if s := strings.TrimSpace(v.GetString(key)); v.IsSet(key) && s != "" {
			*dst = s
		}
	}

	setString(KeyNotifyMethod, &cfg.Notify.Method)
	setString(KeyTelegramBotToken, &cfg.Notify.Telegram.BotToken)
	setString(KeyTelegramChatID, &cfg.Notify.Telegram.ChatID)
	setString(KeyPushgatewayURL, &cfg.Metrics.PushgatewayURL)
	setNonEmpty(KeyLogLevel, &cfg.Logging.Level)
	setNonEmpty(KeyLogFormat, &cfg.Logging.Format)

	if raw := v.GetString(KeyRequestTimeout); v.IsSet(KeyRequestTimeout) && strings.TrimSpace(raw) != "" {
		d, err := ParseTimeout(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.HTTP.Timeout = d
	}

	return nil
}

// ParseTimeout accepts whole seconds ("15") or a Go duration ("1500ms").
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: want whole seconds or a duration", s)
	}
	return d, nil
}

// Resolve builds the effective configuration: defaults, then the YAML file
// at path (if any), then values set in v, then validation.
func Resolve(path string, v *viper.Viper) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if v != nil {
		if err := Overlay(cfg, v); err != nil {
			return nil, fmt.Errorf("applying environment: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error; the return value reports whether a file was read.
func LoadDotEnv(path string) (bool, error) {
	if path == "" {
		return false, nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("loading env file: %w", err)
	}

	return true, nil
}
