package curriculum

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dripfeed/internal/config"
)

// VideoLink is an optional recommended video for a lesson.
type VideoLink struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// Lesson bundles one lesson's text with its resolved optional assets. Empty
// ImagePath/AudioPath and a nil Video mean the asset does not exist; that is
// never an error.
type Lesson struct {
	Index     int
	Text      string
	ImagePath string
	AudioPath string
	Video     *VideoLink
}

// Repository provides read-only access to the curriculum. It is loaded once
// at startup and never mutated afterwards.
type Repository struct {
	lessons []Lesson
}

// Load reads the lesson texts and video metadata and resolves the image and
// audio naming conventions against the configured asset directories.
func Load(cfg *config.Config) (*Repository, error) {
	texts, err := loadLessonTexts(cfg.Assets.LessonsFile)
	if err != nil {
		return nil, err
	}

	videos, err := loadVideoLinks(cfg.Assets.VideosFile)
	if err != nil {
		return nil, err
	}

	lessons := make([]Lesson, len(texts))
	for i, text := range texts {
		lesson := Lesson{Index: i, Text: text}

		// Asset files are named by 1-based lesson number.
		imagePath := filepath.Join(cfg.Assets.ImagesDir, fmt.Sprintf("lesson_%d.jpg", i+1))
		if fileExists(imagePath) {
			lesson.ImagePath = imagePath
		}
		audioPath := filepath.Join(cfg.Assets.AudioDir, fmt.Sprintf("lesson_%03d.mp3", i+1))
		if fileExists(audioPath) {
			lesson.AudioPath = audioPath
		}
		if i < len(videos) && strings.TrimSpace(videos[i].URL) != "" {
			video := videos[i]
			lesson.Video = &video
		}

		lessons[i] = lesson
	}

	return &Repository{lessons: lessons}, nil
}

// TotalLessons reports the curriculum length.
func (r *Repository) TotalLessons() int {
	return len(r.lessons)
}

// Lesson returns the lesson at the 0-based index.
func (r *Repository) Lesson(index int) (Lesson, bool) {
	if index < 0 || index >= len(r.lessons) {
		return Lesson{}, false
	}
	return r.lessons[index], true
}

func loadLessonTexts(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lessons file %q: %w", path, err)
	}

	var texts []string
	if err := json.Unmarshal(data, &texts); err != nil {
		return nil, fmt.Errorf("parse lessons file %q: %w", path, err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("lessons file %q contains no lessons", path)
	}
	return texts, nil
}

func loadVideoLinks(path string) ([]VideoLink, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Video metadata is optional input.
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read videos file %q: %w", path, err)
	}

	var videos []VideoLink
	if err := json.Unmarshal(data, &videos); err != nil {
		return nil, fmt.Errorf("parse videos file %q: %w", path, err)
	}
	return videos, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
