// ABOUTME: Tests for the REST provider clients (Gemini, Hugging Face, Pollinations)
// ABOUTME: Uses httptest servers to verify role mapping, warm-up detection, and errors

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/scry-gateway/internal/store"
)

func TestGemini_Chat(t *testing.T) {
	var captured geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"bonjour"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})
	reply, err := g.Chat(context.Background(), store.Conversation{
		{Role: store.RoleSystem, Content: "be brief"},
		{Role: store.RoleUser, Content: "hello"},
		{Role: store.RoleAssistant, Content: "hi"},
		{Role: store.RoleUser, Content: "in french?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "bonjour", reply)

	require.Len(t, captured.Contents, 4)
	assert.Equal(t, "user", captured.Contents[0].Role)
	assert.Equal(t, "[System] be brief", captured.Contents[0].Parts[0].Text)
	assert.Equal(t, "user", captured.Contents[1].Role)
	assert.Equal(t, "model", captured.Contents[2].Role)
}

func TestGemini_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"garbage body", http.StatusOK, "not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := NewGemini(GeminiConfig{APIKey: "k", BaseURL: srv.URL})
			_, err := g.Chat(context.Background(), store.Conversation{{Role: store.RoleUser, Content: "hi"}})
			assert.Error(t, err)
		})
	}
}

func TestHuggingFace_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/HuggingFaceH4/zephyr-7b-beta", r.URL.Path)
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))

		var req hfRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Inputs)

		w.Write([]byte(`[{"generated_text":"world"}]`))
	}))
	defer srv.Close()

	h := NewHuggingFace(HFConfig{APIKey: "hf-key", BaseURL: srv.URL})
	reply, err := h.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "world", reply)
}

func TestHuggingFace_WarmUp(t *testing.T) {
	t.Run("503", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		h := NewHuggingFace(HFConfig{APIKey: "k", BaseURL: srv.URL})
		_, err := h.Complete(context.Background(), "hi")
		assert.True(t, errors.Is(err, ErrWarmingUp))
	})

	t.Run("estimated_time body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"Model is loading","estimated_time":20.5}`))
		}))
		defer srv.Close()

		h := NewHuggingFace(HFConfig{APIKey: "k", BaseURL: srv.URL})
		_, err := h.Complete(context.Background(), "hi")
		assert.True(t, errors.Is(err, ErrWarmingUp))
	})
}

func TestParseHFResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"list shape", `[{"generated_text":"a"}]`, "a", false},
		{"object shape", `{"generated_text":"b"}`, "b", false},
		{"plain error", `{"error":"bad input"}`, "", true},
		{"unexpected", `42`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHFResponse([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPollinations_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hello+world", r.URL.Path)
		w.Write([]byte("  a generated poem \n"))
	}))
	defer srv.Close()

	p := NewPollinations(PollinationsConfig{TextURL: srv.URL})
	reply, err := p.Complete(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, "a generated poem", reply)
}

func TestPollinations_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPollinations(PollinationsConfig{TextURL: srv.URL})
	_, err := p.Complete(context.Background(), "hi")
	assert.Error(t, err)
}
