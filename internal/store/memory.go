// ABOUTME: In-memory Store implementation for single-process deployments
// ABOUTME: No persistence and no expiry; used when no durable backend is configured

package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in a process-local map. Contents are lost on
// restart and never expire.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Conversation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Conversation),
	}
}

// NewSession creates an empty session and returns its generated id.
func (s *MemoryStore) NewSession(_ context.Context) (string, error) {
	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = Conversation{}
	s.mu.Unlock()
	return id, nil
}

// GetConversation returns a copy of the stored conversation, or an empty
// conversation for unknown ids.
func (s *MemoryStore) GetConversation(_ context.Context, id string) (Conversation, error) {
	s.mu.RLock()
	conv, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return Conversation{}, nil
	}
	return conv.Clone(), nil
}

// SetConversation replaces the session's conversation.
func (s *MemoryStore) SetConversation(_ context.Context, id string, conv Conversation) error {
	s.mu.Lock()
	s.sessions[id] = conv.Clone()
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
