// ABOUTME: Hugging Face single-turn client against the Inference API
// ABOUTME: Cold-start responses surface as ErrWarmingUp for the dispatcher to map

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultHFBaseURL is the Hugging Face Inference API endpoint prefix.
const DefaultHFBaseURL = "https://api-inference.huggingface.co/models/"

// HFConfig holds settings for the Hugging Face client.
type HFConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// HuggingFace is a single-turn PromptClient. The Inference API takes a flat
// input string and has no conversation state.
type HuggingFace struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewHuggingFace creates an Inference API client.
func NewHuggingFace(cfg HFConfig) *HuggingFace {
	model := cfg.Model
	if model == "" {
		model = "HuggingFaceH4/zephyr-7b-beta"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultHFBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HuggingFace{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type hfRequest struct {
	Inputs     string         `json:"inputs"`
	Options    map[string]any `json:"options"`
	Parameters map[string]any `json:"parameters"`
}

// hfErrorBody is the error shape the API returns while a model loads.
type hfErrorBody struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Complete sends a single-turn prompt. A 503 or an error body carrying
// estimated_time means the model is still loading.
func (h *HuggingFace) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs:  prompt,
		Options: map[string]any{"wait_for_model": true},
		Parameters: map[string]any{
			"max_new_tokens":     256,
			"temperature":        0.7,
			"top_p":              0.9,
			"repetition_penalty": 1.05,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(h.baseURL, "/")+"/"+h.model, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("hf request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading hf response: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return "", fmt.Errorf("hf model loading: %w", ErrWarmingUp)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("hf returned status %d", resp.StatusCode)
	}

	return parseHFResponse(raw)
}

// parseHFResponse handles the three shapes the Inference API produces:
// a list of generations, a single generation object, or an error object.
func parseHFResponse(raw []byte) (string, error) {
	var list []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0].GeneratedText, nil
	}

	var single struct {
		GeneratedText *string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &single); err == nil && single.GeneratedText != nil {
		return *single.GeneratedText, nil
	}

	var apiErr hfErrorBody
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
		if apiErr.EstimatedTime > 0 {
			return "", fmt.Errorf("hf model loading (eta %.0fs): %w", apiErr.EstimatedTime, ErrWarmingUp)
		}
		return "", fmt.Errorf("hf api error: %s", apiErr.Error)
	}

	return "", fmt.Errorf("unexpected hf response shape")
}
