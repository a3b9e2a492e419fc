// ABOUTME: Tests for the SQLite session store
// ABOUTME: Uses a temp-dir database file to exercise real SQL round-trips

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.NewSession(ctx)
	require.NoError(t, err)

	conv := Conversation{
		{Role: RoleUser, Content: "what's the weather"},
		{Role: RoleAssistant, Content: "sunny"},
	}
	require.NoError(t, s.SetConversation(ctx, id, conv))

	got, err := s.GetConversation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, conv, got)
}

func TestSQLiteStore_UnknownIDReturnsEmpty(t *testing.T) {
	s := createTestStore(t)

	conv, err := s.GetConversation(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, conv)
}

func TestSQLiteStore_OverwriteReplacesWholesale(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.NewSession(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SetConversation(ctx, id, Conversation{
		{Role: RoleUser, Content: "one"},
		{Role: RoleAssistant, Content: "two"},
		{Role: RoleUser, Content: "three"},
	}))

	// Edit/regenerate truncates then rewrites; the store must not merge.
	truncated := Conversation{{Role: RoleUser, Content: "one"}}
	require.NoError(t, s.SetConversation(ctx, id, truncated))

	got, err := s.GetConversation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, truncated, got)
}

func TestSQLiteStore_MalformedRowDegradesToEmpty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, conversation, created_at, updated_at)
		VALUES ('corrupt', 'not-json', datetime('now'), datetime('now'))
	`)
	require.NoError(t, err)

	conv, err := s.GetConversation(ctx, "corrupt")
	require.NoError(t, err)
	assert.Empty(t, conv)
}
