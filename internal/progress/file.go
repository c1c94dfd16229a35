package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileUser is the wire shape of one subscriber in the progress document.
type fileUser struct {
	CurrentLesson int     `json:"currentLesson"`
	LastSentAt    *string `json:"lastSentAt"`
	JoinedAt      string  `json:"joinedAt"`
}

type fileDocument struct {
	Users map[string]fileUser `json:"users"`
}

// FileStore keeps the whole subscriber map in memory and rewrites the backing
// JSON document atomically on every mutation.
type FileStore struct {
	mu    sync.Mutex
	path  string
	users map[string]Record
}

// OpenFile loads the progress document at path. A missing file starts an
// empty store; an unparsable file is a fatal corruption error.
func OpenFile(path string) (*FileStore, error) {
	store := &FileStore{path: path, users: make(map[string]Record)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("read progress file %q: %w", path, err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("progress file %q is corrupted: %w", path, err)
	}

	for chatID, user := range doc.Users {
		record := Record{ChatID: chatID, NextLesson: user.CurrentLesson}
		if user.JoinedAt != "" {
			joined, err := time.Parse(time.RFC3339, user.JoinedAt)
			if err != nil {
				return nil, fmt.Errorf("progress file %q is corrupted: user %s joinedAt: %w", path, chatID, err)
			}
			record.JoinedAt = joined
		}
		if user.LastSentAt != nil {
			sent, err := time.Parse(time.RFC3339, *user.LastSentAt)
			if err != nil {
				return nil, fmt.Errorf("progress file %q is corrupted: user %s lastSentAt: %w", path, chatID, err)
			}
			record.LastSentAt = &sent
		}
		if record.NextLesson < 0 {
			return nil, fmt.Errorf("progress file %q is corrupted: user %s has negative currentLesson", path, chatID)
		}
		store.users[chatID] = record
	}

	return store, nil
}

func (s *FileStore) Get(ctx context.Context, chatID string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.users[chatID]
	return record, ok, nil
}

func (s *FileStore) Ensure(ctx context.Context, chatID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.users[chatID]; ok {
		return record, nil
	}

	record := Record{ChatID: chatID, JoinedAt: time.Now().UTC()}
	s.users[chatID] = record
	if err := s.persistLocked(); err != nil {
		delete(s.users, chatID)
		return Record{}, err
	}
	return record, nil
}

func (s *FileStore) Advance(ctx context.Context, chatID string, deliveredLesson int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[chatID]
	if !ok {
		return fmt.Errorf("advance: unknown chat %s", chatID)
	}

	previous := record
	if next := deliveredLesson + 1; next > record.NextLesson {
		record.NextLesson = next
	}
	now := time.Now().UTC()
	record.LastSentAt = &now
	s.users[chatID] = record

	if err := s.persistLocked(); err != nil {
		s.users[chatID] = previous
		return err
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(), nil
}

func (s *FileStore) ListDue(ctx context.Context, totalLessons int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Record
	for _, record := range s.sortedLocked() {
		if record.NextLesson < totalLessons {
			due = append(due, record)
		}
	}
	return due, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) sortedLocked() []Record {
	return sortRecords(s.users)
}

// persistLocked writes the full document to a temp file in the progress
// file's directory and renames it into place, so a crash mid-write leaves
// the previous snapshot intact.
func (s *FileStore) persistLocked() error {
	doc := fileDocument{Users: make(map[string]fileUser, len(s.users))}
	for chatID, record := range s.users {
		user := fileUser{
			CurrentLesson: record.NextLesson,
			JoinedAt:      record.JoinedAt.Format(time.RFC3339),
		}
		if record.LastSentAt != nil {
			sent := record.LastSentAt.Format(time.RFC3339)
			user.LastSentAt = &sent
		}
		doc.Users[chatID] = user
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure progress directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".progress-*.json")
	if err != nil {
		return fmt.Errorf("create temp progress file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp progress file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}
