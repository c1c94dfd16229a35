package curriculum_test

import (
	"os"
	"path/filepath"
	"testing"

	"dripfeed/internal/curriculum"
	"dripfeed/internal/testsupport"
)

func TestLoadResolvesAssetsByConvention(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteLessons(t, cfg, []string{"lesson one", "lesson two", "lesson three"})
	testsupport.WriteVideos(t, cfg, []curriculum.VideoLink{
		{Title: "Intro", URL: "https://example.test/v1"},
		{URL: ""},
	})
	testsupport.WriteImage(t, cfg, 1)
	testsupport.WriteAudio(t, cfg, 3)

	repo, err := curriculum.Load(cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if repo.TotalLessons() != 3 {
		t.Fatalf("TotalLessons = %d, want 3", repo.TotalLessons())
	}

	first, ok := repo.Lesson(0)
	if !ok {
		t.Fatal("lesson 0 missing")
	}
	if first.ImagePath == "" {
		t.Error("lesson 0 should resolve lesson_1.jpg")
	}
	if first.AudioPath != "" {
		t.Error("lesson 0 has no audio file")
	}
	if first.Video == nil || first.Video.Title != "Intro" {
		t.Errorf("lesson 0 video = %+v", first.Video)
	}

	second, _ := repo.Lesson(1)
	if second.Video != nil {
		t.Error("empty video URL must yield nil Video")
	}

	third, _ := repo.Lesson(2)
	if third.AudioPath == "" {
		t.Error("lesson 2 should resolve lesson_003.mp3")
	}
	if filepath.Base(third.AudioPath) != "lesson_003.mp3" {
		t.Errorf("audio path %q not zero padded", third.AudioPath)
	}
	if third.ImagePath != "" {
		t.Error("lesson 2 has no image file")
	}
	if third.Video != nil {
		t.Error("lesson 2 is past the end of the video list")
	}
}

func TestLoadOutOfRangeLesson(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteLessons(t, cfg, []string{"only"})

	repo, err := curriculum.Load(cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := repo.Lesson(1); ok {
		t.Error("index 1 should be out of range")
	}
	if _, ok := repo.Lesson(-1); ok {
		t.Error("negative index should be out of range")
	}
}

func TestLoadFailsWithoutLessons(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := curriculum.Load(cfg); err == nil {
		t.Fatal("expected missing lessons file to fail")
	}

	testsupport.WriteLessons(t, cfg, nil)
	if _, err := curriculum.Load(cfg); err == nil {
		t.Fatal("expected empty lessons file to fail")
	}
}

func TestLoadRejectsMalformedLessons(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.WriteFile(cfg.Assets.LessonsFile, []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := curriculum.Load(cfg); err == nil {
		t.Fatal("expected malformed lessons file to fail")
	}
}

func TestLoadMissingVideosFileIsFine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteLessons(t, cfg, []string{"a", "b"})

	repo, err := curriculum.Load(cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := 0; i < repo.TotalLessons(); i++ {
		lesson, _ := repo.Lesson(i)
		if lesson.Video != nil {
			t.Errorf("lesson %d unexpectedly has a video", i)
		}
	}
}
