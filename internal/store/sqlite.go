// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides durable single-file session persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists sessions in a single SQLite file. Each session row
// holds the full conversation as a JSON blob, so a write replaces the
// history atomically just like the key-value backends.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a SQLite session store at the given path.
// The schema is created automatically; parent directories are created
// if needed. Use ":memory:" for tests.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for concurrent readers while a turn is being persisted
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite session store initialized", "path", path)
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			conversation TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// NewSession creates an empty session row and returns its generated id.
func (s *SQLiteStore) NewSession(ctx context.Context) (string, error) {
	id := uuid.New().String()
	if err := s.SetConversation(ctx, id, Conversation{}); err != nil {
		return "", err
	}
	return id, nil
}

// GetConversation loads a session's conversation. Unknown ids and rows with
// corrupt JSON yield an empty conversation.
func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (Conversation, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT conversation FROM sessions WHERE id = ?", id).Scan(&raw)
	if err == sql.ErrNoRows {
		return Conversation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query session %s: %v", ErrUnavailable, id, err)
	}

	conv, ok := decodeConversation([]byte(raw))
	if !ok {
		s.logger.Warn("discarding malformed session row", "session_id", id)
		return Conversation{}, nil
	}
	return conv, nil
}

// SetConversation upserts the session row, replacing the conversation blob
// in a single statement.
func (s *SQLiteStore) SetConversation(ctx context.Context, id string, conv Conversation) error {
	payload, err := encodeConversation(conv)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", id, err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, conversation, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET conversation = excluded.conversation,
			updated_at = excluded.updated_at
	`, id, string(payload), now, now)
	if err != nil {
		return fmt.Errorf("%w: upsert session %s: %v", ErrUnavailable, id, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
