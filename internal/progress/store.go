package progress

import (
	"context"
	"fmt"
	"sort"
	"time"

	"dripfeed/internal/config"
)

// Record is one subscriber's durable delivery state. NextLesson counts
// lessons already delivered, so it doubles as the 0-based index of the next
// lesson due.
type Record struct {
	ChatID     string
	NextLesson int
	LastSentAt *time.Time
	JoinedAt   time.Time
}

// Store is the single source of truth for subscriber progress. Advance is
// monotonic and every mutation is durable before the call returns.
type Store interface {
	// Get returns the record for the chat, reporting whether it exists.
	Get(ctx context.Context, chatID string) (Record, bool, error)
	// Ensure returns the existing record or creates a fresh one at lesson 0.
	// Calling it again for the same chat never resets progress.
	Ensure(ctx context.Context, chatID string) (Record, error)
	// Advance records a successful delivery of the given 0-based lesson.
	// NextLesson never regresses, even when calls arrive out of order.
	Advance(ctx context.Context, chatID string, deliveredLesson int) error
	// List returns every record ordered by join time then chat ID.
	List(ctx context.Context) ([]Record, error)
	// ListDue filters List down to subscribers with lessons remaining.
	ListDue(ctx context.Context, totalLessons int) ([]Record, error)
	Close() error
}

// sortRecords orders records by join time then chat ID, the stable fan-out
// order every backend's List and ListDue share.
func sortRecords(users map[string]Record) []Record {
	records := make([]Record, 0, len(users))
	for _, record := range users {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].JoinedAt.Equal(records[j].JoinedAt) {
			return records[i].JoinedAt.Before(records[j].JoinedAt)
		}
		return records[i].ChatID < records[j].ChatID
	})
	return records
}

// Open constructs the configured store backend. A progress file that exists
// but cannot be parsed fails Open: starting over with an empty store would
// re-send the whole curriculum to every existing subscriber.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Progress.Backend {
	case config.BackendFile:
		return OpenFile(cfg.Progress.Path)
	case config.BackendSQLite:
		return OpenSQLite(cfg.Progress.Path)
	default:
		return nil, fmt.Errorf("unknown progress backend %q", cfg.Progress.Backend)
	}
}
