// ABOUTME: Provider capability interfaces and the fixed fallback reply set
// ABOUTME: Normalizes full-history and single-turn AI backends behind two contracts

package provider

import (
	"context"
	"errors"

	"github.com/2389/scry-gateway/internal/store"
)

// Fallback replies. The dispatcher converts every backend failure into one
// of these fixed, user-safe strings; the orchestrator persists them as a
// normal assistant message so the exchange stays coherent.
const (
	// FallbackUnavailable covers transport failures and provider errors.
	FallbackUnavailable = "Sorry, the AI service is currently unavailable."
	// FallbackNoResponse covers empty or unusable provider output.
	FallbackNoResponse = "Sorry, I couldn't generate a response."
	// FallbackWarmingUp covers cold-start conditions reported by the backend.
	FallbackWarmingUp = "Model is warming up, please try again shortly."
)

// ErrWarmingUp is returned (wrapped) by clients when the backend reports a
// cold-start condition. The dispatcher maps it to FallbackWarmingUp instead
// of the generic unavailable reply.
var ErrWarmingUp = errors.New("model warming up")

// HistoryClient is a provider that accepts the entire ordered conversation
// and manages multi-turn context itself.
type HistoryClient interface {
	Chat(ctx context.Context, conv store.Conversation) (string, error)
}

// PromptClient is a provider that accepts only a flattened prompt string.
// Recent search snippets, when available, are concatenated into the prompt
// by the dispatcher since the backend has no history awareness.
type PromptClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
