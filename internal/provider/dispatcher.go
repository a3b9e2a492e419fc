// ABOUTME: Dispatcher normalizing calling conventions across AI backends
// ABOUTME: Converts every failure into a fixed fallback string - never errors past its boundary

package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/2389/scry-gateway/internal/store"
)

// Dispatcher holds the registry of configured providers and routes a
// conversation to one of them. Dispatch never fails: any transport error,
// malformed response, empty response, or warm-up condition becomes one of
// the fixed fallback replies.
type Dispatcher struct {
	history map[string]HistoryClient
	prompt  map[string]PromptClient
	order   []string
	logger  *slog.Logger
}

// NewDispatcher creates an empty provider registry.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		history: make(map[string]HistoryClient),
		prompt:  make(map[string]PromptClient),
		logger:  logger.With("component", "dispatch"),
	}
}

// RegisterHistory adds a full-history provider under the given id.
func (d *Dispatcher) RegisterHistory(name string, client HistoryClient) {
	d.history[name] = client
	d.order = append(d.order, name)
}

// RegisterPrompt adds a single-turn provider under the given id.
func (d *Dispatcher) RegisterPrompt(name string, client PromptClient) {
	d.prompt[name] = client
	d.order = append(d.order, name)
}

// Has reports whether a provider id is registered. The registry is the
// closed provider set the orchestrator validates explicit choices against.
func (d *Dispatcher) Has(name string) bool {
	_, okH := d.history[name]
	_, okP := d.prompt[name]
	return okH || okP
}

// Names returns the registered provider ids in registration order.
func (d *Dispatcher) Names() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Dispatch sends the conversation to the named provider and returns reply
// text. searchContext carries flattened search snippets for single-turn
// providers; full-history providers see the injected system message in the
// conversation instead.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, conv store.Conversation, searchContext string) string {
	reply, err := d.generate(ctx, name, conv, searchContext)
	if err != nil {
		if errors.Is(err, ErrWarmingUp) {
			d.logger.Info("provider warming up", "provider", name)
			return FallbackWarmingUp
		}
		d.logger.Warn("provider call failed", "provider", name, "error", err)
		return FallbackUnavailable
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		d.logger.Warn("provider returned empty reply", "provider", name)
		return FallbackNoResponse
	}
	return reply
}

func (d *Dispatcher) generate(ctx context.Context, name string, conv store.Conversation, searchContext string) (string, error) {
	if client, ok := d.history[name]; ok {
		return client.Chat(ctx, conv)
	}
	if client, ok := d.prompt[name]; ok {
		return client.Complete(ctx, flattenPrompt(conv, searchContext))
	}
	return "", fmt.Errorf("unknown provider %q", name)
}

// flattenPrompt reduces a conversation to the latest user prompt for
// providers without history awareness, prefixing search context when
// available.
func flattenPrompt(conv store.Conversation, searchContext string) string {
	var prompt string
	for i := len(conv) - 1; i >= 0; i-- {
		if conv[i].Role == store.RoleUser {
			prompt = conv[i].Content
			break
		}
	}
	if searchContext != "" {
		return fmt.Sprintf("Context: %s\n\nQuestion: %s", searchContext, prompt)
	}
	return prompt
}
