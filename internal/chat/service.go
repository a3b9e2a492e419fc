// ABOUTME: Conversation orchestrator - composes store, router, search, and dispatch per turn
// ABOUTME: Owns the edit/regenerate truncation protocol and the turn state transition

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/2389/scry-gateway/internal/provider"
	"github.com/2389/scry-gateway/internal/router"
	"github.com/2389/scry-gateway/internal/search"
	"github.com/2389/scry-gateway/internal/store"
)

// ProviderAuto asks the router to pick the provider from prompt content.
const ProviderAuto = "auto"

// Service orchestrates one chat turn: load session, apply edit truncation,
// route, augment, dispatch, persist. Turns for different sessions run fully
// in parallel; within a turn the steps are strictly sequential because
// search output feeds dispatch input.
//
// Two turns racing on the same session id are independent read-modify-write
// cycles; the later write wins and silently discards the other update. That
// is the reference behavior, accepted and documented rather than hidden.
type Service struct {
	store      store.Store
	rules      *router.Rules
	augmentor  *search.Augmentor
	dispatcher *provider.Dispatcher
	logger     *slog.Logger
}

// New creates the orchestrator. The augmentor may be nil to disable search
// augmentation entirely.
func New(st store.Store, rules *router.Rules, augmentor *search.Augmentor, dispatcher *provider.Dispatcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      st,
		rules:      rules,
		augmentor:  augmentor,
		dispatcher: dispatcher,
		logger:     logger.With("component", "chat"),
	}
}

// TurnRequest is one incoming chat turn.
type TurnRequest struct {
	// SessionID is the opaque session handle; empty means "new session".
	SessionID string
	// Prompt is the user's message. Must be non-empty.
	Prompt string
	// Provider is "auto" (or empty) for content-based routing, or an
	// explicit provider id. Invalid explicit choices fall back to the
	// configured default.
	Provider string
	// EditIndex, when set, truncates the conversation to its first
	// EditIndex messages before the turn proceeds (edit/regenerate).
	EditIndex *int
}

// TurnResponse is the completed turn.
type TurnResponse struct {
	SessionID    string
	Reply        string
	Provider     string
	Conversation store.Conversation
}

// Turn runs one full orchestration cycle. Validation failures return a
// *ValidationError with no persisted change; store failures propagate
// wrapping store.ErrUnavailable; search and provider failures never escape -
// the turn completes with degraded content instead.
func (s *Service) Turn(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, validationf("prompt must not be empty")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		id, err := s.store.NewSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating session: %w", err)
		}
		sessionID = id
	}

	conv, err := s.store.GetConversation(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}

	// Edit/regenerate: truncate history before the turn proceeds. The index
	// must land inside [0, len]; out-of-range is a caller error, never
	// silently clamped.
	if req.EditIndex != nil {
		idx := *req.EditIndex
		if idx < 0 || idx > len(conv) {
			return nil, validationf("edit_index %d out of range [0, %d]", idx, len(conv))
		}
		conv = conv[:idx]
	}

	providerID := s.selectProvider(req.Provider, req.Prompt)

	// Search context goes in before the user message so the provider call
	// can see it.
	var searchContext string
	if s.augmentor != nil {
		if msg, results, ok := s.augmentor.Augment(ctx, req.Prompt); ok {
			conv = append(conv, msg)
			searchContext = search.FlattenSnippets(results)
		}
	}

	conv = append(conv, store.Message{Role: store.RoleUser, Content: req.Prompt})

	reply := s.dispatcher.Dispatch(ctx, providerID, conv, searchContext)

	conv = append(conv, store.Message{Role: store.RoleAssistant, Content: reply})

	// The whole updated conversation is written back as a single unit,
	// fallback replies included, so the user always sees a recorded
	// coherent exchange.
	if err := s.store.SetConversation(ctx, sessionID, conv); err != nil {
		return nil, fmt.Errorf("persisting session %s: %w", sessionID, err)
	}

	s.logger.Info("turn completed",
		"session_id", sessionID,
		"provider", providerID,
		"messages", len(conv),
		"searched", searchContext != "")

	return &TurnResponse{
		SessionID:    sessionID,
		Reply:        reply,
		Provider:     providerID,
		Conversation: conv,
	}, nil
}

// selectProvider resolves "auto" through the router and validates explicit
// choices against the closed provider set, falling back to the default for
// anything unknown. It always returns a provider id, never "no provider".
func (s *Service) selectProvider(requested, prompt string) string {
	name := requested
	if name == "" || name == ProviderAuto {
		name = s.rules.Route(prompt)
	}
	if !s.dispatcher.Has(name) {
		s.logger.Debug("provider not configured, using default", "requested", name)
		name = s.rules.Default()
	}
	return name
}
