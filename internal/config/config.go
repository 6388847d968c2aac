// Package config handles loading and validating the watcher configuration
// from built-in defaults, an optional YAML file, and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/frommer-watch/internal/fetch"
	"github.com/donaldgifford/frommer-watch/internal/sites"
)

// DefaultKeywords are the watched phrases. The first one is the search query.
var DefaultKeywords = []string{
	"Frommer Stop 1912 firing pin",
	"Frommer Stop firing pin",
	"Frommer 1912 firing pin",
	"Frommer firing pin",
}

const (
	// NotifyTelegram is the only supported notification method.
	NotifyTelegram = "telegram"

	defaultSubject       = "Frommer Stop"
	defaultNotifyTimeout = 10 * time.Second
	defaultMetricsJob    = "frommer_watch"
)

// Config is the top-level watcher configuration. It is built once at
// startup and passed by value or pointer into constructors; nothing mutates
// it after Resolve returns.
type Config struct {
	Keywords []string      `yaml:"keywords"`
	Subject  string        `yaml:"subject"`
	Sites    []SiteConfig  `yaml:"sites"`
	HTTP     HTTPConfig    `yaml:"http"`
	Notify   NotifyConfig  `yaml:"notify"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Logging  LoggingConfig `yaml:"logging"`
}

// SiteConfig is one registry entry. An empty URL selects the built-in
// template for the id.
type SiteConfig struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"`
}

// HTTPConfig defines marketplace request settings.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// NotifyConfig defines where run summaries are sent.
type NotifyConfig struct {
	Method   string         `yaml:"method"` // telegram; anything else disables
	Timeout  time.Duration  `yaml:"timeout"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig defines Telegram Bot API settings.
type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	ChatID      string `yaml:"chat_id"`
	APIEndpoint string `yaml:"api_endpoint"` // format string with token and method verbs
}

// Configured reports whether both credentials are present.
func (t TelegramConfig) Configured() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// MetricsConfig defines the optional Pushgateway target.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// load reads and parses a YAML config file, performing environment variable
// substitution and defaulting. An empty path yields Default.
func load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// Registry binds parsers to the configured sites, in configured order.
func (c *Config) Registry() ([]sites.Site, error) {
	out := make([]sites.Site, 0, len(c.Sites))
	for _, sc := range c.Sites {
		s, err := sites.New(sc.ID, sc.URL)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = append([]string(nil), DefaultKeywords...)
	}
	if cfg.Subject == "" {
		cfg.Subject = defaultSubject
	}
	applySiteDefaults(cfg)
	applyHTTPDefaults(&cfg.HTTP)
	applyNotifyDefaults(&cfg.Notify)
	applyMetricsDefaults(&cfg.Metrics)
	applyLoggingDefaults(&cfg.Logging)
}

func applySiteDefaults(cfg *Config) {
	if len(cfg.Sites) == 0 {
		for _, id := range sites.Known() {
			cfg.Sites = append(cfg.Sites, SiteConfig{ID: id})
		}
	}
	for i := range cfg.Sites {
		cfg.Sites[i].ID = strings.ToLower(strings.TrimSpace(cfg.Sites[i].ID))
		if cfg.Sites[i].URL == "" {
			if tmpl, ok := sites.DefaultTemplate(cfg.Sites[i].ID); ok {
				cfg.Sites[i].URL = tmpl
			}
		}
	}
}

// HTTP timeout 0 from YAML means "unset". A zero from REQUEST_TIMEOUT is
// applied later by Overlay and kept.
func applyHTTPDefaults(h *HTTPConfig) {
	if h.Timeout == 0 {
		h.Timeout = fetch.DefaultTimeout
	}
	if h.UserAgent == "" {
		h.UserAgent = fetch.DefaultUserAgent
	}
	if h.MaxBodyBytes == 0 {
		h.MaxBodyBytes = fetch.DefaultMaxBodyBytes
	}
}

func applyNotifyDefaults(n *NotifyConfig) {
	if n.Method == "" {
		n.Method = NotifyTelegram
	}
	if n.Timeout == 0 {
		n.Timeout = defaultNotifyTimeout
	}
}

func applyMetricsDefaults(m *MetricsConfig) {
	if m.Job == "" {
		m.Job = defaultMetricsJob
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

// Validate checks a configuration and reports every problem at once.
func Validate(cfg *Config) error {
	var errs []error

	if len(cfg.Keywords) == 0 {
		errs = append(errs, fmt.Errorf("keywords: at least one keyword is required"))
	}
	for i, k := range cfg.Keywords {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, fmt.Errorf("keywords[%d] is blank", i))
		}
	}

	if len(cfg.Sites) == 0 {
		errs = append(errs, fmt.Errorf("sites: at least one site is required"))
	}
	seen := make(map[string]bool, len(cfg.Sites))
	for i, sc := range cfg.Sites {
		if seen[sc.ID] {
			errs = append(errs, fmt.Errorf("sites[%d]: duplicate site %q", i, sc.ID))
			continue
		}
		seen[sc.ID] = true
		if _, err := sites.New(sc.ID, sc.URL); err != nil {
			errs = append(errs, fmt.Errorf("sites[%d]: %w", i, err))
		}
	}

	if cfg.HTTP.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("http.max_body_bytes must not be negative"))
	}

	if cfg.Notify.Timeout < 0 {
		errs = append(errs, fmt.Errorf("notify.timeout must not be negative"))
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		errs = append(
			errs,
			fmt.Errorf("logging.format must be one of: text, json (got %q)", cfg.Logging.Format),
		)
	}

	return errors.Join(errs...)
}
