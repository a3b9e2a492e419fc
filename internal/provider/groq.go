// ABOUTME: Groq full-history client speaking the OpenAI chat-completions protocol
// ABOUTME: Uses the openai-go SDK pointed at Groq's compatible endpoint

package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/2389/scry-gateway/internal/store"
)

// DefaultGroqBaseURL is Groq's OpenAI-compatible API endpoint.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqConfig holds settings for the Groq client.
type GroqConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Groq is a full-history HistoryClient. Groq speaks the OpenAI protocol, so
// system messages pass through natively.
type Groq struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewGroq creates a Groq client. Model defaults to llama-3.3-70b-versatile.
func NewGroq(cfg GroqConfig) *Groq {
	model := cfg.Model
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
	)
	return &Groq{
		client:  client,
		model:   model,
		timeout: timeout,
	}
}

// Chat sends the full conversation as a chat-completions request.
func (g *Groq) Chat(ctx context.Context, conv store.Conversation) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(conv))
	for _, m := range conv {
		switch m.Role {
		case store.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case store.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			// Unknown roles degrade to user to avoid API rejections
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               openai.ChatModel(g.model),
		Temperature:         openai.Float(0.7),
		MaxCompletionTokens: openai.Int(1024),
	})
	if err != nil {
		return "", fmt.Errorf("groq api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
