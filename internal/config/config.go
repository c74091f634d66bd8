package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the on-disk configuration. Durations are strings ("30s", "1m")
// so the file stays hand-editable; use the accessor methods for parsed values.
type Config struct {
	Telegram  Telegram  `json:"telegram"`
	Auth      Auth      `json:"auth"`
	Storage   Storage   `json:"storage"`
	Scheduler Scheduler `json:"scheduler"`
	Logging   Logging   `json:"logging"`

	// Timezone is the single IANA zone used for "now", calendar rendering and
	// due-ness comparison. Empty means UTC.
	Timezone string `json:"timezone"`
}

type Telegram struct {
	Token        string `json:"token"`
	TargetChatID int64  `json:"target_chat_id"`
	PollTimeout  string `json:"poll_timeout"`
	SendPerSec   int    `json:"send_per_sec"`
}

type Auth struct {
	AccessPassword string `json:"access_password"`
}

type Storage struct {
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout"`
}

type Scheduler struct {
	PollInterval string `json:"poll_interval"`
	ErrorBackoff string `json:"error_backoff"`
}

type Logging struct {
	Level   string      `json:"level"`
	Console *bool       `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Load reads, strictly decodes and validates the config file.
// Unknown keys are an error so typos fail at startup, not in production.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	j, format, err := coerceToJSONBytes(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s config: %w", format, err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(j))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", format, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if c.Telegram.TargetChatID == 0 {
		return errors.New("telegram.target_chat_id is required")
	}
	if strings.TrimSpace(c.Auth.AccessPassword) == "" {
		return errors.New("auth.access_password is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	// Parse all duration fields once so bad values fail here.
	for _, f := range []struct{ path, raw string }{
		{"telegram.poll_timeout", c.Telegram.PollTimeout},
		{"storage.busy_timeout", c.Storage.BusyTimeout},
		{"scheduler.poll_interval", c.Scheduler.PollInterval},
		{"scheduler.error_backoff", c.Scheduler.ErrorBackoff},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			return err
		}
	}
	return nil
}

// Location resolves the configured timezone (default UTC).
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("timezone: unknown zone %q: %w", tz, err)
	}
	return loc, nil
}

func (c *Config) PollTimeout() time.Duration {
	d, _ := ParseDurationOrDefault("telegram.poll_timeout", c.Telegram.PollTimeout, 10*time.Second)
	return d
}

func (c *Config) BusyTimeout() time.Duration {
	d, _ := ParseDurationOrDefault("storage.busy_timeout", c.Storage.BusyTimeout, 5*time.Second)
	return d
}

func (c *Config) SchedulerPollInterval() time.Duration {
	d, _ := ParseDurationOrDefault("scheduler.poll_interval", c.Scheduler.PollInterval, 30*time.Second)
	return d
}

func (c *Config) SchedulerErrorBackoff() time.Duration {
	d, _ := ParseDurationOrDefault("scheduler.error_backoff", c.Scheduler.ErrorBackoff, 60*time.Second)
	return d
}

func (c *Config) StoragePath() string {
	if strings.TrimSpace(c.Storage.Path) == "" {
		return "./data/postbot.db"
	}
	return c.Storage.Path
}

// ConsoleLogging defaults to true when unset.
func (c *Config) ConsoleLogging() bool {
	if c.Logging.Console == nil {
		return true
	}
	return *c.Logging.Console
}
