package progress_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dripfeed/internal/progress"
)

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.json")

	store, err := progress.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := store.Ensure(ctx, "42"); err != nil {
		t.Fatal(err)
	}
	if err := store.Advance(ctx, "42", 0); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := progress.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	record, ok, err := reopened.Get(ctx, "42")
	if err != nil || !ok {
		t.Fatalf("Get after reopen: ok=%v err=%v", ok, err)
	}
	if record.NextLesson != 1 {
		t.Errorf("NextLesson after reopen = %d, want 1", record.NextLesson)
	}
	if record.LastSentAt == nil {
		t.Error("LastSentAt lost across reopen")
	}
	if record.JoinedAt.IsZero() {
		t.Error("JoinedAt lost across reopen")
	}
}

func TestFileStoreWritesDocumentedShape(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.json")

	store, err := progress.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Ensure(ctx, "42"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read progress file: %v", err)
	}
	var doc struct {
		Users map[string]struct {
			CurrentLesson int     `json:"currentLesson"`
			LastSentAt    *string `json:"lastSentAt"`
			JoinedAt      string  `json:"joinedAt"`
		} `json:"users"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("progress file is not the documented shape: %v", err)
	}
	user, ok := doc.Users["42"]
	if !ok {
		t.Fatal("user 42 missing from document")
	}
	if user.CurrentLesson != 0 {
		t.Errorf("currentLesson = %d", user.CurrentLesson)
	}
	if user.LastSentAt != nil {
		t.Errorf("lastSentAt = %v, want null before first delivery", *user.LastSentAt)
	}
	if user.JoinedAt == "" {
		t.Error("joinedAt missing")
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "progress.json")

	store, err := progress.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, chatID := range []string{"1", "2", "3"} {
		if _, err := store.Ensure(ctx, chatID); err != nil {
			t.Fatal(err)
		}
		if err := store.Advance(ctx, chatID, 0); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".progress-") {
			t.Errorf("stray temp file left behind: %s", entry.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected only progress.json in %s, found %d entries", dir, len(entries))
	}
}

func TestOpenFileMissingStartsEmpty(t *testing.T) {
	store, err := progress.OpenFile(filepath.Join(t.TempDir(), "progress.json"))
	if err != nil {
		t.Fatalf("OpenFile on missing path: %v", err)
	}
	records, err := store.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("fresh store has %d records", len(records))
	}
}

func TestOpenFileRejectsCorruption(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{{{"},
		{"wrong types", `{"users": {"42": {"currentLesson": "three"}}}`},
		{"bad timestamp", `{"users": {"42": {"currentLesson": 1, "lastSentAt": "yesterday", "joinedAt": "2026-01-02T03:04:05Z"}}}`},
		{"negative lesson", `{"users": {"42": {"currentLesson": -2, "lastSentAt": null, "joinedAt": "2026-01-02T03:04:05Z"}}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "progress.json")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := progress.OpenFile(path); err == nil {
				t.Fatal("expected corrupted file to fail Open")
			}
		})
	}
}
