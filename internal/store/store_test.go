// ABOUTME: Tests for conversation encoding and the in-memory store
// ABOUTME: Covers round-trip, unknown-id degradation, and blob decoding

package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.NewSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	conv := Conversation{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi there"},
	}
	require.NoError(t, s.SetConversation(ctx, id, conv))

	got, err := s.GetConversation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, conv, got)
}

func TestMemoryStore_UnknownIDReturnsEmpty(t *testing.T) {
	s := NewMemoryStore()

	conv, err := s.GetConversation(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Empty(t, conv)
	assert.NotNil(t, conv)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.NewSession(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SetConversation(ctx, id, Conversation{{Role: RoleUser, Content: "a"}}))

	got, err := s.GetConversation(ctx, id)
	require.NoError(t, err)
	got[0].Content = "mutated"

	again, err := s.GetConversation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Content)
}

func TestMemoryStore_ConcurrentSessions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.NewSession(ctx)
			assert.NoError(t, err)
			assert.NoError(t, s.SetConversation(ctx, id, Conversation{{Role: RoleUser, Content: "x"}}))
			conv, err := s.GetConversation(ctx, id)
			assert.NoError(t, err)
			assert.Len(t, conv, 1)
		}()
	}
	wg.Wait()
}

func TestEncodeDecodeConversation(t *testing.T) {
	conv := Conversation{
		{Role: RoleSystem, Content: "Search context:\nTitle: X"},
		{Role: RoleUser, Content: "what is x?"},
	}

	raw, err := encodeConversation(conv)
	require.NoError(t, err)

	got, ok := decodeConversation(raw)
	require.True(t, ok)
	assert.Equal(t, conv, got)
}

func TestEncodeConversation_NilBecomesEmptyList(t *testing.T) {
	raw, err := encodeConversation(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"messages":[]}`, string(raw))
}

func TestDecodeConversation_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"garbage", "not json at all", false},
		{"wrong shape", `{"messages": "nope"}`, false},
		{"empty object", `{}`, true},
		{"valid", `{"messages":[{"role":"user","content":"hi"}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, ok := decodeConversation([]byte(tt.raw))
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.NotNil(t, conv)
			}
		})
	}
}

func TestConversationClone(t *testing.T) {
	var nilConv Conversation
	assert.Nil(t, nilConv.Clone())

	conv := Conversation{{Role: RoleUser, Content: "a"}}
	clone := conv.Clone()
	clone[0].Content = "b"
	assert.Equal(t, "a", conv[0].Content)
}
