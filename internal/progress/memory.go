package progress

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is a volatile Store used in tests and composition wiring that
// does not need durability.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]Record
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{users: make(map[string]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, chatID string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.users[chatID]
	return record, ok, nil
}

func (s *MemoryStore) Ensure(ctx context.Context, chatID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.users[chatID]; ok {
		return record, nil
	}
	record := Record{ChatID: chatID, JoinedAt: time.Now().UTC()}
	s.users[chatID] = record
	return record, nil
}

func (s *MemoryStore) Advance(ctx context.Context, chatID string, deliveredLesson int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.users[chatID]
	if !ok {
		return fmt.Errorf("advance: unknown chat %s", chatID)
	}
	if next := deliveredLesson + 1; next > record.NextLesson {
		record.NextLesson = next
	}
	now := time.Now().UTC()
	record.LastSentAt = &now
	s.users[chatID] = record
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortRecords(s.users), nil
}

func (s *MemoryStore) ListDue(ctx context.Context, totalLessons int) ([]Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var due []Record
	for _, record := range records {
		if record.NextLesson < totalLessons {
			due = append(due, record)
		}
	}
	return due, nil
}

func (s *MemoryStore) Close() error { return nil }
