package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full on-disk configuration.
//
// Duration fields are Go duration strings (e.g. "500ms", "10s", "1m").
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging,omitempty"`

	// StateDir holds one signature record per target plus summary.yaml.
	StateDir string `json:"state_dir"`

	// FetchTimeout bounds one page fetch (default "20s").
	// NotifyTimeout bounds one notification send (default "10s", tighter
	// than fetch: the Bot API answers fast or not at all).
	FetchTimeout  string `json:"fetch_timeout,omitempty"`
	NotifyTimeout string `json:"notify_timeout,omitempty"`

	// NotifyRatePerSec caps outbound notifications (default 1).
	NotifyRatePerSec int `json:"notify_rate_per_sec,omitempty"`

	// Schedule is an optional cron spec. Empty means one-shot: the
	// process runs once and exits, leaving triggering to an outside
	// scheduler.
	Schedule string `json:"schedule,omitempty"`

	// Targets is the static ordered list of monitored URLs.
	Targets []string `json:"targets"`

	// Keywords overrides the built-in status-change vocabulary.
	Keywords []string `json:"keywords,omitempty"`
}

type TelegramConfig struct {
	// Token and ChatID may be omitted in the file and supplied via the
	// TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID environment variables.
	Token    string `json:"token,omitempty"`
	ChatID   int64  `json:"chat_id,omitempty"`
	ThreadID int    `json:"thread_id,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level,omitempty"`
	// Console defaults to true when omitted.
	Console *bool `json:"console,omitempty"`
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

func (l LoggingConfig) ConsoleEnabled() bool {
	return l.Console == nil || *l.Console
}

const (
	DefaultFetchTimeout  = 20 * time.Second
	DefaultNotifyTimeout = 10 * time.Second
)

// ApplyEnv overlays credentials from the environment. Environment values
// win over the file so deployments can keep secrets out of the config.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		c.Telegram.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: invalid chat id %q: %w", v, err)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

// Validate rejects a config that cannot start a run. Any error here is
// fatal at startup, before the first target is processed.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("telegram.token is required (or set TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required (or set TELEGRAM_CHAT_ID)")
	}
	if strings.TrimSpace(c.StateDir) == "" {
		return fmt.Errorf("state_dir is required")
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("targets must list at least one URL")
	}
	for i, raw := range c.Targets {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("targets[%d]: invalid URL %q: %w", i, raw, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("targets[%d]: URL %q must be absolute http(s)", i, raw)
		}
	}
	if _, err := ParseDurationField("fetch_timeout", c.FetchTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("notify_timeout", c.NotifyTimeout); err != nil {
		return err
	}
	return nil
}

func (c *Config) FetchTimeoutDuration() time.Duration {
	d, err := ParseDurationOrDefault("fetch_timeout", c.FetchTimeout, DefaultFetchTimeout)
	if err != nil {
		return DefaultFetchTimeout
	}
	return d
}

func (c *Config) NotifyTimeoutDuration() time.Duration {
	d, err := ParseDurationOrDefault("notify_timeout", c.NotifyTimeout, DefaultNotifyTimeout)
	if err != nil {
		return DefaultNotifyTimeout
	}
	return d
}
