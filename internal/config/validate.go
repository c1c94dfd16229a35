package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable. Validation failures are fatal
// at startup; the daemon never begins scheduling with a broken config.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateProgress(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTelegram() error {
	if c.Telegram.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/dripfeed/config.toml"
		}
		return fmt.Errorf("telegram.token is required. Set %s env var or edit %s (create with 'dripfeed config init')", EnvTelegramToken, defaultPath)
	}
	if err := ensurePositiveMap(map[string]int{
		"telegram.request_timeout": c.Telegram.RequestTimeout,
		"telegram.poll_timeout":    c.Telegram.PollTimeout,
	}); err != nil {
		return err
	}
	if c.Telegram.RetryAttempts < 0 {
		return errors.New("telegram.retry_attempts must not be negative")
	}
	return nil
}

func (c *Config) validateProgress() error {
	switch c.Progress.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("progress.backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.Progress.Backend)
	}
	if c.Progress.Path == "" {
		return errors.New("progress.path must be set")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.Cron == "" {
		return errors.New("schedule.cron must be set")
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron %q: %w", c.Schedule.Cron, err)
	}
	if c.Schedule.Timezone == "" {
		return errors.New("schedule.timezone must be set")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone %q: %w", c.Schedule.Timezone, err)
	}
	if c.Schedule.SendDelaySeconds < 0 {
		return errors.New("schedule.send_delay_seconds must not be negative")
	}
	if c.Schedule.ChunkLimit <= 0 {
		return errors.New("schedule.chunk_limit must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
