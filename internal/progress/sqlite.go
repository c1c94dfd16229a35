package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS subscribers (
    chat_id      TEXT PRIMARY KEY,
    next_lesson  INTEGER NOT NULL DEFAULT 0,
    last_sent_at TEXT,
    joined_at    TEXT NOT NULL
);
`

// SQLiteStore persists subscriber progress in a SQLite database. Durability
// per mutation falls out of SQLite's transactional writes, so no snapshot
// rewriting is needed.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite initializes or connects to the progress database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure progress directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, chatID string) (Record, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT chat_id, next_lesson, last_sent_at, joined_at FROM subscribers WHERE chat_id = ?`,
		chatID,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get subscriber: %w", err)
	}
	return record, true, nil
}

func (s *SQLiteStore) Ensure(ctx context.Context, chatID string) (Record, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO subscribers (chat_id, next_lesson, joined_at) VALUES (?, 0, ?)
         ON CONFLICT(chat_id) DO NOTHING`,
		chatID,
		now,
	)
	if err != nil {
		return Record{}, fmt.Errorf("ensure subscriber: %w", err)
	}

	record, ok, err := s.Get(ctx, chatID)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, fmt.Errorf("ensure subscriber: %s missing after insert", chatID)
	}
	return record, nil
}

func (s *SQLiteStore) Advance(ctx context.Context, chatID string, deliveredLesson int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE subscribers
         SET next_lesson = MAX(next_lesson, ?), last_sent_at = ?
         WHERE chat_id = ?`,
		deliveredLesson+1,
		now,
		chatID,
	)
	if err != nil {
		return fmt.Errorf("advance subscriber: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance subscriber: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("advance: unknown chat %s", chatID)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	return s.queryRecords(
		ctx,
		`SELECT chat_id, next_lesson, last_sent_at, joined_at
         FROM subscribers ORDER BY joined_at, chat_id`,
	)
}

func (s *SQLiteStore) ListDue(ctx context.Context, totalLessons int) ([]Record, error) {
	return s.queryRecords(
		ctx,
		`SELECT chat_id, next_lesson, last_sent_at, joined_at
         FROM subscribers WHERE next_lesson < ? ORDER BY joined_at, chat_id`,
		totalLessons,
	)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		record   Record
		lastSent sql.NullString
		joinedAt string
	)
	if err := row.Scan(&record.ChatID, &record.NextLesson, &lastSent, &joinedAt); err != nil {
		return Record{}, err
	}

	joined, err := time.Parse(time.RFC3339Nano, joinedAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse joined_at: %w", err)
	}
	record.JoinedAt = joined

	if lastSent.Valid {
		sent, err := time.Parse(time.RFC3339Nano, lastSent.String)
		if err != nil {
			return Record{}, fmt.Errorf("parse last_sent_at: %w", err)
		}
		record.LastSentAt = &sent
	}
	return record, nil
}
