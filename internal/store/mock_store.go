// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows failure injection without a real backend

package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store for tests with optional failure injection.
type MockStore struct {
	mu       sync.RWMutex
	sessions map[string]Conversation

	// GetErr/SetErr, when non-nil, are returned by the corresponding calls.
	GetErr error
	SetErr error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		sessions: make(map[string]Conversation),
	}
}

// Seed installs a conversation under the given id without error injection.
func (m *MockStore) Seed(id string, conv Conversation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = conv.Clone()
}

// NewSession creates an empty session.
func (m *MockStore) NewSession(_ context.Context) (string, error) {
	if m.SetErr != nil {
		return "", m.SetErr
	}
	id := uuid.New().String()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = Conversation{}
	return id, nil
}

// GetConversation returns the stored conversation or the injected error.
func (m *MockStore) GetConversation(_ context.Context, id string) (Conversation, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.sessions[id]
	if !ok {
		return Conversation{}, nil
	}
	return conv.Clone(), nil
}

// SetConversation replaces the stored conversation or returns the injected error.
func (m *MockStore) SetConversation(_ context.Context, id string, conv Conversation) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = conv.Clone()
	return nil
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}
