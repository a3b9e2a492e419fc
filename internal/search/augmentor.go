// ABOUTME: Search augmentation - turns search hits into conversation context
// ABOUTME: Failures are logged and swallowed; augmentation never aborts a turn

package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/2389/scry-gateway/internal/router"
	"github.com/2389/scry-gateway/internal/store"
)

// DefaultMaxResults is how many hits end up in the injected context message.
const DefaultMaxResults = 3

// DefaultTimeout bounds a single search call.
const DefaultTimeout = 8 * time.Second

// Augmentor decides whether a prompt wants search context and, if so,
// fetches it and formats it as a synthetic system message.
type Augmentor struct {
	searcher   Searcher
	maxResults int
	timeout    time.Duration
	logger     *slog.Logger
}

// NewAugmentor wraps a Searcher. maxResults <= 0 and timeout <= 0 take the
// package defaults.
func NewAugmentor(searcher Searcher, maxResults int, timeout time.Duration, logger *slog.Logger) *Augmentor {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Augmentor{
		searcher:   searcher,
		maxResults: maxResults,
		timeout:    timeout,
		logger:     logger.With("component", "search"),
	}
}

// Augment checks the prompt for a search trigger and, when present, returns
// a "Search context:" system message plus the raw results (for single-turn
// providers that want a flattened context prefix). The boolean reports
// whether context was produced. All failure paths return false: a timeout,
// transport error, or empty result set degrades to an unaugmented turn.
func (a *Augmentor) Augment(ctx context.Context, prompt string) (store.Message, []Result, bool) {
	if !router.ShouldSearch(prompt) {
		return store.Message{}, nil, false
	}

	query := router.ExtractQuery(prompt)
	if query == "" {
		// The prompt was nothing but trigger verbs; search for it verbatim
		// rather than sending an empty query.
		query = prompt
	}

	searchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results, err := a.searcher.Search(searchCtx, query, a.maxResults)
	if err != nil {
		a.logger.Warn("search failed, continuing without context", "query", query, "error", err)
		return store.Message{}, nil, false
	}
	if len(results) == 0 {
		a.logger.Debug("search returned no results", "query", query)
		return store.Message{}, nil, false
	}
	if len(results) > a.maxResults {
		results = results[:a.maxResults]
	}

	return store.Message{
		Role:    store.RoleSystem,
		Content: FormatContext(results),
	}, results, true
}

// FormatContext renders results as the injected system-message body.
func FormatContext(results []Result) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("Title: %s\nSnippet: %s", r.Title, r.Snippet)
	}
	return "Search context:\n" + strings.Join(blocks, "\n")
}

// FlattenSnippets joins result snippets into a single context string for
// providers without history awareness.
func FlattenSnippets(results []Result) string {
	snippets := make([]string, len(results))
	for i, r := range results {
		snippets[i] = r.Snippet
	}
	return strings.Join(snippets, " ")
}
