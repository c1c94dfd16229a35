// Package testsupport centralizes fixtures shared across package tests.
package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"dripfeed/internal/config"
	"dripfeed/internal/curriculum"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// All asset and progress paths point inside t.TempDir(); asset directories
// exist but start empty.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Telegram.Token = "123:test-token"
	cfg.Assets.LessonsFile = filepath.Join(base, "assets", "lessons.json")
	cfg.Assets.ImagesDir = filepath.Join(base, "assets", "images")
	cfg.Assets.AudioDir = filepath.Join(base, "assets", "audio")
	cfg.Assets.VideosFile = filepath.Join(base, "assets", "videos.json")
	cfg.Progress.Path = filepath.Join(base, "progress.json")
	cfg.Logging.Dir = filepath.Join(base, "logs")
	cfg.Schedule.Timezone = "UTC"
	cfg.Schedule.SendDelaySeconds = 0

	for _, dir := range []string{cfg.Assets.ImagesDir, cfg.Assets.AudioDir, cfg.Logging.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create test directory %s: %v", dir, err)
		}
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithSQLiteProgress switches the progress backend to sqlite.
func WithSQLiteProgress() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Progress.Backend = config.BackendSQLite
		cfg.Progress.Path = filepath.Join(filepath.Dir(cfg.Progress.Path), "progress.db")
	}
}

// WriteLessons writes the lesson texts fixture.
func WriteLessons(t testing.TB, cfg *config.Config, texts []string) {
	t.Helper()
	writeJSON(t, cfg.Assets.LessonsFile, texts)
}

// WriteVideos writes the video metadata fixture.
func WriteVideos(t testing.TB, cfg *config.Config, videos []curriculum.VideoLink) {
	t.Helper()
	writeJSON(t, cfg.Assets.VideosFile, videos)
}

// WriteImage creates a placeholder image for the 1-based lesson number.
func WriteImage(t testing.TB, cfg *config.Config, lessonNumber int) string {
	t.Helper()
	path := filepath.Join(cfg.Assets.ImagesDir, fmt.Sprintf("lesson_%d.jpg", lessonNumber))
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write image fixture: %v", err)
	}
	return path
}

// WriteAudio creates a placeholder audio file for the 1-based lesson number.
func WriteAudio(t testing.TB, cfg *config.Config, lessonNumber int) string {
	t.Helper()
	path := filepath.Join(cfg.Assets.AudioDir, fmt.Sprintf("lesson_%03d.mp3", lessonNumber))
	if err := os.WriteFile(path, []byte("mp3"), 0o644); err != nil {
		t.Fatalf("write audio fixture: %v", err)
	}
	return path
}

func writeJSON(t testing.TB, path string, value any) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create fixture directory: %v", err)
	}
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}
