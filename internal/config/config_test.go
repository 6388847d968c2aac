package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()

	assert.Equal(t, DefaultKeywords, cfg.Keywords)
	assert.Equal(t, "Frommer Stop", cfg.Subject)
	require.Len(t, cfg.Sites, 3)
	assert.Equal(t, SiteConfig{ID: "ebay", URL: "https://www.ebay.com/sch/i.html?_nkw={q}&_sop=10"}, cfg.Sites[0])
	assert.Equal(t, SiteConfig{ID: "gunbroker", URL: "https://www.gunbroker.com/All/search?Keywords={q}"}, cfg.Sites[1])
	assert.Equal(t, SiteConfig{ID: "numrich", URL: "https://www.numrichgunparts.com/search?query={q}"}, cfg.Sites[2])
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "Mozilla/5.0 (compatible; frommer-watcher/1.1)", cfg.HTTP.UserAgent)
	assert.Equal(t, int64(10<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, NotifyTelegram, cfg.Notify.Method)
	assert.Equal(t, 10*time.Second, cfg.Notify.Timeout)
	assert.False(t, cfg.Notify.Telegram.Configured())
	assert.Equal(t, "frommer_watch", cfg.Metrics.Job)
	assert.Empty(t, cfg.Metrics.PushgatewayURL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	require.NoError(t, Validate(cfg))
}

func TestDefault_KeywordsAreCopied(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Keywords[0] = "mutated"
	assert.Equal(t, "Frommer Stop 1912 firing pin", DefaultKeywords[0])
}

func TestResolve_File(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "custom keywords and site order",
			yaml: `
keywords:
  - Frommer Baby firing pin
  - Frommer Baby extractor
subject: Frommer Baby
sites:
  - id: numrich
  - id: ebay
    url: https://www.ebay.co.uk/sch/i.html?_nkw={q}
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, []string{"Frommer Baby firing pin", "Frommer Baby extractor"}, cfg.Keywords)
				assert.Equal(t, "Frommer Baby", cfg.Subject)
				require.Len(t, cfg.Sites, 2)
				assert.Equal(t, "numrich", cfg.Sites[0].ID)
				assert.Equal(t, "https://www.numrichgunparts.com/search?query={q}", cfg.Sites[0].URL)
				assert.Equal(t, "https://www.ebay.co.uk/sch/i.html?_nkw={q}", cfg.Sites[1].URL)
			},
		},
		{
			name: "site ids are normalized",
			yaml: `
sites:
  - id: " GunBroker "
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				require.Len(t, cfg.Sites, 1)
				assert.Equal(t, "gunbroker", cfg.Sites[0].ID)
				assert.NotEmpty(t, cfg.Sites[0].URL)
			},
		},
		{
			name: "env vars expanded in YAML",
			yaml: `
notify:
  telegram:
    bot_token: ${TEST_FW_TOKEN}
    chat_id: ${TEST_FW_CHAT}
`,
			envVars: map[string]string{
				"TEST_FW_TOKEN": "123:abc",
				"TEST_FW_CHAT":  "-1001",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "123:abc", cfg.Notify.Telegram.BotToken)
				assert.Equal(t, "-1001", cfg.Notify.Telegram.ChatID)
				assert.True(t, cfg.Notify.Telegram.Configured())
			},
		},
		{
			name: "durations and limits",
			yaml: `
http:
  timeout: 5s
  user_agent: test-agent/2.0
  max_body_bytes: 2048
notify:
  method: none
  timeout: 3s
logging:
  level: debug
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
				assert.Equal(t, "test-agent/2.0", cfg.HTTP.UserAgent)
				assert.Equal(t, int64(2048), cfg.HTTP.MaxBodyBytes)
				assert.Equal(t, "none", cfg.Notify.Method)
				assert.Equal(t, 3*time.Second, cfg.Notify.Timeout)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "unknown site",
			yaml: `
sites:
  - id: craigslist
    url: https://craigslist.org/search?q={q}
`,
			wantErr: "unknown site",
		},
		{
			name: "template without placeholder",
			yaml: `
sites:
  - id: ebay
    url: https://www.ebay.com/sch/i.html
`,
			wantErr: "placeholder",
		},
		{
			name: "duplicate site",
			yaml: `
sites:
  - id: ebay
  - id: ebay
`,
			wantErr: `duplicate site "ebay"`,
		},
		{
			name: "blank keyword",
			yaml: `
keywords: ["Frommer", ""]
`,
			wantErr: "keywords[1] is blank",
		},
		{
			name: "bad log format",
			yaml: `
logging:
  format: xml
`,
			wantErr: "logging.format must be one of",
		},
		{
			name: "multiple errors reported together",
			yaml: `
keywords: ["  "]
logging:
  format: xml
`,
			wantErr: "keywords[0] is blank",
		},
		{
			name:    "invalid YAML",
			yaml:    "keywords: [unterminated",
			wantErr: "parsing config YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Resolve(writeConfig(t, tt.yaml), nil)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestConfig_Registry(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Sites = []SiteConfig{
		{ID: "numrich", URL: "http://127.0.0.1:9/search?query={q}"},
		{ID: "ebay", URL: "https://www.ebay.com/sch/i.html?_nkw={q}"},
	}

	reg, err := cfg.Registry()
	require.NoError(t, err)
	require.Len(t, reg, 2)
	assert.Equal(t, "numrich", reg[0].ID)
	assert.Equal(t, "Numrich", reg[0].Label)
	assert.Equal(t, "ebay", reg[1].ID)

	cfg.Sites = []SiteConfig{{ID: "nope", URL: "https://x/{q}"}}
	_, err = cfg.Registry()
	require.Error(t, err)
}

func TestValidate_EmptyLists(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Keywords = nil
	cfg.Sites = nil
	cfg.HTTP.MaxBodyBytes = -1
	cfg.Notify.Timeout = -time.Second

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one keyword")
	assert.Contains(t, err.Error(), "at least one site")
	assert.Contains(t, err.Error(), "max_body_bytes")
	assert.Contains(t, err.Error(), "notify.timeout")
}
