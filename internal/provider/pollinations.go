// ABOUTME: Pollinations single-turn client using the free text-generation URL API
// ABOUTME: The prompt rides in the URL path; the body is the raw reply text

package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultPollinationsTextURL is the Pollinations text API base.
const DefaultPollinationsTextURL = "https://text.pollinations.ai/"

// PollinationsConfig holds settings for the Pollinations client.
type PollinationsConfig struct {
	TextURL string
	Timeout time.Duration
}

// Pollinations is a single-turn PromptClient. The API needs no key.
type Pollinations struct {
	textURL    string
	httpClient *http.Client
}

// NewPollinations creates a Pollinations text client.
func NewPollinations(cfg PollinationsConfig) *Pollinations {
	textURL := cfg.TextURL
	if textURL == "" {
		textURL = DefaultPollinationsTextURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Pollinations{
		textURL:    strings.TrimSuffix(textURL, "/") + "/",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Complete fetches generated text for a URL-escaped prompt.
func (p *Pollinations) Complete(ctx context.Context, prompt string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.textURL+url.QueryEscape(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pollinations request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pollinations returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading pollinations response: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}
