package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Default()
	cfg.Telegram.Token = "123:test-token"
	return cfg
}

func TestDefaultValidatesWithToken(t *testing.T) {
	cfg := validConfig()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRequiresToken(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing token to fail validation")
	} else if !strings.Contains(err.Error(), "telegram.token") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad backend", func(c *Config) { c.Progress.Backend = "redis" }, "progress.backend"},
		{"bad cron", func(c *Config) { c.Schedule.Cron = "every day at six" }, "schedule.cron"},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, "schedule.timezone"},
		{"zero chunk limit", func(c *Config) { c.Schedule.ChunkLimit = 0 }, "chunk_limit"},
		{"negative delay", func(c *Config) { c.Schedule.SendDelaySeconds = -1 }, "send_delay_seconds"},
		{"zero poll timeout", func(c *Config) { c.Telegram.PollTimeout = 0 }, "poll_timeout"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvTelegramToken, "123:env-token")
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("expected exists=false for missing file")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Telegram.Token != "123:env-token" {
		t.Errorf("token = %q, want env override", cfg.Telegram.Token)
	}
	if cfg.Schedule.Cron != defaultScheduleCron {
		t.Errorf("cron = %q, want default", cfg.Schedule.Cron)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	t.Setenv(EnvTelegramToken, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[telegram]
token = "  123:file-token  "
base_url = "https://example.test/"

[progress]
backend = "SQLite"
path = "` + filepath.Join(dir, "progress.db") + `"

[schedule]
cron = "30 7 * * *"
timezone = "UTC"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Telegram.Token != "123:file-token" {
		t.Errorf("token not trimmed: %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.BaseURL != "https://example.test" {
		t.Errorf("base url not normalized: %q", cfg.Telegram.BaseURL)
	}
	if cfg.Progress.Backend != BackendSQLite {
		t.Errorf("backend = %q, want sqlite", cfg.Progress.Backend)
	}
	if cfg.Schedule.Cron != "30 7 * * *" {
		t.Errorf("cron = %q", cfg.Schedule.Cron)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	t.Setenv(EnvTelegramToken, "123:env-token")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[schedule]\ncron = \"nope\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected invalid cron to fail Load")
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	t.Setenv(EnvTelegramToken, "123:env-token")
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/x")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "x") {
		t.Errorf("ExpandPath(~/x) = %q", got)
	}
}
