// ABOUTME: Store interface and data types for scry-gateway session persistence
// ABOUTME: Defines Message, Conversation and the Store interface for session backends

package store

import (
	"context"
	"errors"
)

// ErrUnavailable is returned (wrapped) when a store backend cannot be reached.
// It lets callers distinguish "new session" from "store down": unknown ids
// yield an empty conversation and a nil error, never ErrUnavailable.
var ErrUnavailable = errors.New("session store unavailable")

// Message roles. A conversation only ever contains these three.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single entry in a conversation. Immutable once created.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered message history. Insertion order is
// conversational order. It is read and replaced wholesale by the
// orchestrator; the store never mutates it.
type Conversation []Message

// Clone returns an independent copy so callers can truncate or append
// without aliasing the store's view of the history.
func (c Conversation) Clone() Conversation {
	if c == nil {
		return nil
	}
	out := make(Conversation, len(c))
	copy(out, c)
	return out
}

// Store is the session persistence interface. Implementations must be safe
// for concurrent use by multiple simultaneous turns; writes are atomic at
// single-session granularity.
type Store interface {
	// NewSession creates an empty session and returns its id.
	NewSession(ctx context.Context) (string, error)

	// GetConversation returns the conversation for a session id. Unknown ids
	// and malformed stored data yield an empty conversation and a nil error.
	// A backend connectivity failure returns an error wrapping ErrUnavailable.
	GetConversation(ctx context.Context, id string) (Conversation, error)

	// SetConversation replaces the session's conversation as a single unit.
	SetConversation(ctx context.Context, id string, conv Conversation) error

	// Close releases backend resources.
	Close() error
}

// sessionBlob is the serialized form shared by the networked backends.
// Kept self-describing so a session value can be inspected by hand.
type sessionBlob struct {
	Messages []Message `json:"messages"`
}
