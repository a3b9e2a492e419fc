// ABOUTME: DuckDuckGo Instant Answer client implementing the Searcher interface
// ABOUTME: Extracts abstract and related topics, deduplicated by URL

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the DuckDuckGo Instant Answer API endpoint.
const DefaultBaseURL = "https://api.duckduckgo.com/"

// Result is a single search hit. Results are deduplicated by URL; no
// relevance ordering is guaranteed.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Searcher is the external search collaborator boundary. Implementations
// may fail or time out; callers treat every failure as non-fatal.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// DuckDuckGo queries the Instant Answer API. It needs no authentication.
type DuckDuckGo struct {
	baseURL    string
	httpClient *http.Client
	safeSearch bool
	region     string
}

// DuckDuckGoOption configures a DuckDuckGo client.
type DuckDuckGoOption func(*DuckDuckGo)

// WithBaseURL overrides the API endpoint (used in tests).
func WithBaseURL(u string) DuckDuckGoOption {
	return func(d *DuckDuckGo) { d.baseURL = u }
}

// WithRegion sets the region code (e.g. "us", "de"). Default is worldwide.
func WithRegion(region string) DuckDuckGoOption {
	return func(d *DuckDuckGo) { d.region = region }
}

// WithSafeSearch toggles safe search. Enabled by default.
func WithSafeSearch(on bool) DuckDuckGoOption {
	return func(d *DuckDuckGo) { d.safeSearch = on }
}

// NewDuckDuckGo creates an Instant Answer client.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		safeSearch: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// instantAnswer is the subset of the API response we consume.
type instantAnswer struct {
	Heading       string         `json:"Heading"`
	Abstract      string         `json:"Abstract"`
	AbstractURL   string         `json:"AbstractURL"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

// Search queries the Instant Answer API and returns up to limit results.
// The abstract (if any) comes first, followed by related topics;
// duplicates by URL are dropped.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")
	if d.safeSearch {
		params.Set("safe", "on")
	} else {
		params.Set("safe", "off")
	}
	region := d.region
	if region == "" {
		region = "wt-wt"
	}
	params.Set("region", region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	return collectResults(query, &answer, limit), nil
}

// collectResults flattens an instant answer into deduplicated results.
func collectResults(query string, answer *instantAnswer, limit int) []Result {
	var results []Result

	if answer.Abstract != "" {
		title := answer.Heading
		if title == "" {
			title = query
		}
		results = append(results, Result{
			Title:   title,
			Snippet: answer.Abstract,
			URL:     answer.AbstractURL,
		})
	}

	for _, topic := range answer.RelatedTopics {
		if topic.FirstURL == "" || topic.Text == "" {
			continue
		}
		results = append(results, Result{
			Title:   topicTitle(topic.Text),
			Snippet: topic.Text,
			URL:     topic.FirstURL,
		})
	}

	seen := make(map[string]bool)
	unique := results[:0]
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		unique = append(unique, r)
	}

	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

// topicTitle derives a short title from a related-topic text blob.
func topicTitle(text string) string {
	if idx := strings.Index(text, " - "); idx > 0 {
		return text[:idx]
	}
	if len(text) > 60 {
		return text[:60]
	}
	return text
}
