package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
telegram:
  token: "123:abc"
  target_chat_id: -100200300
auth:
  access_password: "hunter2"
`

func TestLoadMinimalAppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Telegram.Token != "123:abc" || cfg.Telegram.TargetChatID != -100200300 {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
	if got := cfg.PollTimeout(); got != 10*time.Second {
		t.Fatalf("PollTimeout = %v", got)
	}
	if got := cfg.BusyTimeout(); got != 5*time.Second {
		t.Fatalf("BusyTimeout = %v", got)
	}
	if got := cfg.SchedulerPollInterval(); got != 30*time.Second {
		t.Fatalf("SchedulerPollInterval = %v", got)
	}
	if got := cfg.SchedulerErrorBackoff(); got != time.Minute {
		t.Fatalf("SchedulerErrorBackoff = %v", got)
	}
	if got := cfg.StoragePath(); got != "./data/postbot.db" {
		t.Fatalf("StoragePath = %q", got)
	}
	if !cfg.ConsoleLogging() {
		t.Fatal("console logging should default on")
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("Location = %v, %v", loc, err)
	}
}

func TestLoadFullConfig(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
  target_chat_id: -1
  poll_timeout: "25s"
  send_per_sec: 10
auth:
  access_password: "pw"
storage:
  path: "/var/lib/postbot/posts.db"
  busy_timeout: "2s"
scheduler:
  poll_interval: "15s"
  error_backoff: "90s"
logging:
  level: "debug"
  console: false
  file:
    enabled: true
    path: "/var/log/postbot.log"
timezone: "Europe/Berlin"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PollTimeout() != 25*time.Second || cfg.Telegram.SendPerSec != 10 {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
	if cfg.SchedulerPollInterval() != 15*time.Second || cfg.SchedulerErrorBackoff() != 90*time.Second {
		t.Fatalf("scheduler = %+v", cfg.Scheduler)
	}
	if cfg.ConsoleLogging() {
		t.Fatal("console logging should be off")
	}
	if !cfg.Logging.File.Enabled || cfg.Logging.File.Path != "/var/log/postbot.log" {
		t.Fatalf("file logging = %+v", cfg.Logging.File)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Europe/Berlin" {
		t.Fatalf("Location = %v, %v", loc, err)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing token",
			yaml:    "auth:\n  access_password: pw\ntelegram:\n  target_chat_id: -1\n",
			wantErr: "telegram.token",
		},
		{
			name:    "missing target chat",
			yaml:    "auth:\n  access_password: pw\ntelegram:\n  token: t\n",
			wantErr: "telegram.target_chat_id",
		},
		{
			name:    "missing password",
			yaml:    "telegram:\n  token: t\n  target_chat_id: -1\n",
			wantErr: "auth.access_password",
		},
		{
			name:    "unknown key",
			yaml:    minimalYAML + "surprise: true\n",
			wantErr: "surprise",
		},
		{
			name:    "bad duration",
			yaml:    minimalYAML + "scheduler:\n  poll_interval: soonish\n",
			wantErr: "scheduler.poll_interval",
		},
		{
			name:    "bad timezone",
			yaml:    minimalYAML + `timezone: "Mars/Olympus"` + "\n",
			wantErr: "timezone",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
