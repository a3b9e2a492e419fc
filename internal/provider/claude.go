// ABOUTME: Claude full-history client using the Anthropic Messages API
// ABOUTME: System messages are lifted into the request-level system parameter

package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/2389/scry-gateway/internal/store"
)

// ClaudeConfig holds settings for the Claude client.
type ClaudeConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
	Timeout   time.Duration
}

// Claude is a full-history HistoryClient for Anthropic models.
type Claude struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
}

// NewClaude creates a Claude client.
func NewClaude(cfg ClaudeConfig) *Claude {
	model := cfg.Model
	if model == "" {
		model = string(anthropic.ModelClaude3_5Sonnet20241022)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Claude{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		timeout:   timeout,
	}
}

// Chat sends the conversation to the Messages API. The Messages API has a
// native system parameter, so system-role messages are extracted there
// instead of being relabeled.
func (c *Claude) Chat(ctx context.Context, conv store.Conversation) (string, error) {
	var messages []anthropic.MessageParam
	var system []anthropic.TextBlockParam
	for _, m := range conv {
		switch m.Role {
		case store.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case store.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return sb.String(), nil
}
