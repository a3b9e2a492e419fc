// ABOUTME: Tests for the conversation orchestrator
// ABOUTME: Covers edit truncation bounds, message ordering, routing, and failure paths

package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/scry-gateway/internal/provider"
	"github.com/2389/scry-gateway/internal/router"
	"github.com/2389/scry-gateway/internal/search"
	"github.com/2389/scry-gateway/internal/store"
)

// scriptedHistory implements provider.HistoryClient for testing
type scriptedHistory struct {
	reply    string
	err      error
	lastConv store.Conversation
}

func (f *scriptedHistory) Chat(_ context.Context, conv store.Conversation) (string, error) {
	f.lastConv = conv.Clone()
	return f.reply, f.err
}

// scriptedSearcher implements search.Searcher for testing
type scriptedSearcher struct {
	results []search.Result
	err     error
}

func (f *scriptedSearcher) Search(_ context.Context, _ string, _ int) ([]search.Result, error) {
	return f.results, f.err
}

type fixture struct {
	store      *store.MockStore
	backend    *scriptedHistory
	dispatcher *provider.Dispatcher
	service    *Service
}

func newFixture(t *testing.T, searcher search.Searcher) *fixture {
	t.Helper()

	rules, err := router.NewRules([]router.Rule{
		{Trigger: "code", Provider: "groq"},
	}, "gemini")
	require.NoError(t, err)

	backend := &scriptedHistory{reply: "a reply"}
	dispatcher := provider.NewDispatcher(nil)
	dispatcher.RegisterHistory("gemini", backend)
	dispatcher.RegisterHistory("groq", &scriptedHistory{reply: "groq reply"})

	var augmentor *search.Augmentor
	if searcher != nil {
		augmentor = search.NewAugmentor(searcher, 3, 0, nil)
	}

	mockStore := store.NewMockStore()
	return &fixture{
		store:      mockStore,
		backend:    backend,
		dispatcher: dispatcher,
		service:    New(mockStore, rules, augmentor, dispatcher, nil),
	}
}

func intPtr(i int) *int { return &i }

func TestTurn_NewSessionCreated(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := f.service.Turn(context.Background(), &TurnRequest{Prompt: "hello"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "a reply", resp.Reply)
	require.Len(t, resp.Conversation, 2)
	assert.Equal(t, store.Message{Role: store.RoleUser, Content: "hello"}, resp.Conversation[0])
	assert.Equal(t, store.Message{Role: store.RoleAssistant, Content: "a reply"}, resp.Conversation[1])

	persisted, err := f.store.GetConversation(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, resp.Conversation, persisted)
}

func TestTurn_EmptyPromptRejected(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.service.Turn(context.Background(), &TurnRequest{Prompt: "   "})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestTurn_EditIndexTruncates(t *testing.T) {
	f := newFixture(t, nil)
	f.store.Seed("s1", store.Conversation{
		{Role: store.RoleUser, Content: "q1"},
		{Role: store.RoleAssistant, Content: "a1"},
		{Role: store.RoleUser, Content: "q2"},
		{Role: store.RoleAssistant, Content: "a2"},
	})

	resp, err := f.service.Turn(context.Background(), &TurnRequest{
		SessionID: "s1",
		Prompt:    "q2 revised",
		EditIndex: intPtr(2),
	})
	require.NoError(t, err)

	// First 2 messages kept, then the new exchange
	require.Len(t, resp.Conversation, 4)
	assert.Equal(t, "q1", resp.Conversation[0].Content)
	assert.Equal(t, "a1", resp.Conversation[1].Content)
	assert.Equal(t, "q2 revised", resp.Conversation[2].Content)
	assert.Equal(t, "a reply", resp.Conversation[3].Content)
}

func TestTurn_EditIndexBounds(t *testing.T) {
	seeded := store.Conversation{
		{Role: store.RoleUser, Content: "q"},
		{Role: store.RoleAssistant, Content: "a"},
	}

	tests := []struct {
		name    string
		idx     int
		wantErr bool
		wantLen int // conversation length after truncation, before the new turn
	}{
		{"zero clears history", 0, false, 0},
		{"mid", 1, false, 1},
		{"equal to length keeps all", 2, false, 2},
		{"negative rejected", -1, true, 0},
		{"past end rejected", 3, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.store.Seed("s1", seeded)

			resp, err := f.service.Turn(context.Background(), &TurnRequest{
				SessionID: "s1",
				Prompt:    "new",
				EditIndex: intPtr(tt.idx),
			})

			if tt.wantErr {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))

				// No persisted change on validation failure
				conv, err := f.store.GetConversation(context.Background(), "s1")
				require.NoError(t, err)
				assert.Equal(t, seeded, conv)
				return
			}

			require.NoError(t, err)
			assert.Len(t, resp.Conversation, tt.wantLen+2)
		})
	}
}

func TestTurn_AutoRouting(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := f.service.Turn(context.Background(), &TurnRequest{Prompt: "write some code", Provider: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "groq", resp.Provider)
	assert.Equal(t, "groq reply", resp.Reply)

	resp, err = f.service.Turn(context.Background(), &TurnRequest{Prompt: "hello there"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", resp.Provider)
}

func TestTurn_ExplicitProviderValidated(t *testing.T) {
	f := newFixture(t, nil)

	// Explicit valid choice is honored even when routing disagrees
	resp, err := f.service.Turn(context.Background(), &TurnRequest{Prompt: "write some code", Provider: "gemini"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", resp.Provider)

	// Unknown explicit choice falls back to the default
	resp, err = f.service.Turn(context.Background(), &TurnRequest{Prompt: "hello", Provider: "not-a-provider"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", resp.Provider)
}

func TestTurn_SearchContextOrdering(t *testing.T) {
	searcher := &scriptedSearcher{results: []search.Result{
		{Title: "T", Snippet: "S", URL: "u"},
	}}
	f := newFixture(t, searcher)

	resp, err := f.service.Turn(context.Background(), &TurnRequest{Prompt: "search hello"})
	require.NoError(t, err)

	// Order: search-context system message, user message, assistant reply
	require.Len(t, resp.Conversation, 3)
	assert.Equal(t, store.RoleSystem, resp.Conversation[0].Role)
	assert.Equal(t, "Search context:\nTitle: T\nSnippet: S", resp.Conversation[0].Content)
	assert.Equal(t, store.Message{Role: store.RoleUser, Content: "search hello"}, resp.Conversation[1])
	assert.Equal(t, store.RoleAssistant, resp.Conversation[2].Role)

	// The provider call saw the injected context before the user message
	require.Len(t, f.backend.lastConv, 2)
	assert.Equal(t, store.RoleSystem, f.backend.lastConv[0].Role)
}

func TestTurn_SearchFailureDegrades(t *testing.T) {
	f := newFixture(t, &scriptedSearcher{err: errors.New("search down")})

	resp, err := f.service.Turn(context.Background(), &TurnRequest{Prompt: "search hello"})
	require.NoError(t, err)

	// No context message; the turn still replied and persisted
	require.Len(t, resp.Conversation, 2)
	assert.Equal(t, store.RoleUser, resp.Conversation[0].Role)
	assert.Equal(t, "a reply", resp.Reply)

	persisted, err := f.store.GetConversation(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, resp.Conversation, persisted)
}

func TestTurn_ProviderFailurePersistsFallback(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.err = errors.New("backend exploded")

	resp, err := f.service.Turn(context.Background(), &TurnRequest{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, provider.FallbackUnavailable, resp.Reply)

	persisted, err := f.store.GetConversation(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, persisted, 2)
	assert.Equal(t, provider.FallbackUnavailable, persisted[1].Content)
}

func TestTurn_StoreFailuresSurface(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		f := newFixture(t, nil)
		f.store.GetErr = fmt.Errorf("%w: boom", store.ErrUnavailable)

		_, err := f.service.Turn(context.Background(), &TurnRequest{SessionID: "s1", Prompt: "hi"})
		assert.True(t, errors.Is(err, store.ErrUnavailable))
	})

	t.Run("persist", func(t *testing.T) {
		f := newFixture(t, nil)
		f.store.Seed("s1", store.Conversation{})
		f.store.SetErr = fmt.Errorf("%w: boom", store.ErrUnavailable)

		_, err := f.service.Turn(context.Background(), &TurnRequest{SessionID: "s1", Prompt: "hi"})
		assert.True(t, errors.Is(err, store.ErrUnavailable))
	})
}

func TestTurn_ExistingSessionAppends(t *testing.T) {
	f := newFixture(t, nil)
	f.store.Seed("s1", store.Conversation{
		{Role: store.RoleUser, Content: "earlier"},
		{Role: store.RoleAssistant, Content: "earlier reply"},
	})

	resp, err := f.service.Turn(context.Background(), &TurnRequest{SessionID: "s1", Prompt: "next"})
	require.NoError(t, err)

	assert.Equal(t, "s1", resp.SessionID)
	require.Len(t, resp.Conversation, 4)
	assert.Equal(t, "earlier", resp.Conversation[0].Content)
	assert.Equal(t, "next", resp.Conversation[2].Content)
}
