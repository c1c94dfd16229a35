package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvTelegramToken overrides [telegram].token when set.
const EnvTelegramToken = "DRIPFEED_TELEGRAM_TOKEN"

// Telegram contains Bot API connection settings.
type Telegram struct {
	Token          string `toml:"token"`
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
	PollTimeout    int    `toml:"poll_timeout"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// Assets points at the read-only curriculum inputs produced by the external
// preprocessing steps.
type Assets struct {
	LessonsFile string `toml:"lessons_file"`
	ImagesDir   string `toml:"images_dir"`
	AudioDir    string `toml:"audio_dir"`
	VideosFile  string `toml:"videos_file"`
}

// Progress selects and locates the subscriber progress store backend.
type Progress struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// Schedule controls the daily delivery trigger and send pacing.
type Schedule struct {
	Cron             string `toml:"cron"`
	Timezone         string `toml:"timezone"`
	SendDelaySeconds int    `toml:"send_delay_seconds"`
	ChunkLimit       int    `toml:"chunk_limit"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Dir    string `toml:"dir"`
}

// Config is the root configuration document.
type Config struct {
	Telegram Telegram `toml:"telegram"`
	Assets   Assets   `toml:"assets"`
	Progress Progress `toml:"progress"`
	Schedule Schedule `toml:"schedule"`
	Logging  Logging  `toml:"logging"`
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if token := strings.TrimSpace(os.Getenv(EnvTelegramToken)); token != "" {
		cfg.Telegram.Token = token
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/dripfeed/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dripfeed.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Assets.LessonsFile, err = expandPath(c.Assets.LessonsFile); err != nil {
		return fmt.Errorf("assets.lessons_file: %w", err)
	}
	if c.Assets.ImagesDir, err = expandPath(c.Assets.ImagesDir); err != nil {
		return fmt.Errorf("assets.images_dir: %w", err)
	}
	if c.Assets.AudioDir, err = expandPath(c.Assets.AudioDir); err != nil {
		return fmt.Errorf("assets.audio_dir: %w", err)
	}
	if c.Assets.VideosFile, err = expandPath(c.Assets.VideosFile); err != nil {
		return fmt.Errorf("assets.videos_file: %w", err)
	}
	if c.Progress.Path, err = expandPath(c.Progress.Path); err != nil {
		return fmt.Errorf("progress.path: %w", err)
	}
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}

	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	c.Telegram.BaseURL = strings.TrimRight(strings.TrimSpace(c.Telegram.BaseURL), "/")
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = defaultTelegramBaseURL
	}
	c.Progress.Backend = strings.ToLower(strings.TrimSpace(c.Progress.Backend))
	if c.Progress.Backend == "" {
		c.Progress.Backend = BackendFile
	}
	c.Schedule.Cron = strings.TrimSpace(c.Schedule.Cron)
	c.Schedule.Timezone = strings.TrimSpace(c.Schedule.Timezone)
	return nil
}

// EnsureDirectories creates the directories the daemon writes into. Asset
// directories are intentionally excluded: they are read-only inputs owned by
// the preprocessing pipeline.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Logging.Dir, filepath.Dir(c.Progress.Path)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// DefaultConfigPath returns the expanded default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dripfeed/config.toml")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
