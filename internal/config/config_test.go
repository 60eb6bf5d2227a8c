package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
telegram:
  token: "123:abc"
  chat_id: 42
state_dir: ./state
targets:
  - https://example.org/jobs
`

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
}

func TestManagerLoadValid(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.yaml", validYAML)
	m := NewManager(path)

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.ChatID != 42 {
		t.Fatalf("ChatID = %d, want 42", cfg.Telegram.ChatID)
	}
	if m.Get() != cfg {
		t.Fatal("Get() did not return the committed config")
	}
}

func TestManagerRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "config.yaml", validYAML+"unknown_knob: true\n")
	m := NewManager(path)

	if _, err := m.Load(); err == nil {
		t.Fatal("expected error for unknown config field")
	}
}

func TestManagerParsesJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "telegram": {"token": "123:abc", "chat_id": 42},
  "state_dir": "./state",
  "targets": ["https://example.org/jobs"]
}`)
	clearEnv(t)
	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load json: %v", err)
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "99")

	path := writeConfig(t, "config.yaml", validYAML)
	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "env-token" || cfg.Telegram.ChatID != 99 {
		t.Fatalf("env overlay not applied: %+v", cfg.Telegram)
	}
}

func TestApplyEnvBadChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	path := writeConfig(t, "config.yaml", validYAML)
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatal("expected error for malformed TELEGRAM_CHAT_ID")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	base := func() Config {
		return Config{
			Telegram: TelegramConfig{Token: "123:abc", ChatID: 42},
			StateDir: "./state",
			Targets:  []string{"https://example.org/jobs"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.Telegram.Token = "" },
			wantErr: "telegram.token",
		},
		{
			name:    "missing chat",
			mutate:  func(c *Config) { c.Telegram.ChatID = 0 },
			wantErr: "telegram.chat_id",
		},
		{
			name:    "missing state dir",
			mutate:  func(c *Config) { c.StateDir = " " },
			wantErr: "state_dir",
		},
		{
			name:    "no targets",
			mutate:  func(c *Config) { c.Targets = nil },
			wantErr: "targets",
		},
		{
			name:    "relative target",
			mutate:  func(c *Config) { c.Targets = []string{"/jobs.html"} },
			wantErr: "absolute http(s)",
		},
		{
			name:    "bad fetch timeout",
			mutate:  func(c *Config) { c.FetchTimeout = "soon" },
			wantErr: "fetch_timeout",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestTimeoutDefaults(t *testing.T) {
	t.Parallel()
	var c Config
	if got := c.FetchTimeoutDuration(); got != DefaultFetchTimeout {
		t.Fatalf("FetchTimeoutDuration = %v, want default", got)
	}
	c.NotifyTimeout = "3s"
	if got := c.NotifyTimeoutDuration(); got != 3*time.Second {
		t.Fatalf("NotifyTimeoutDuration = %v, want 3s", got)
	}
}
