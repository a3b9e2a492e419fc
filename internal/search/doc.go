// Package search provides optional live-search context for chat turns.
//
// The Searcher interface is the boundary to the external search backend;
// DuckDuckGo implements it against the Instant Answer API. The Augmentor
// sits above a Searcher: it applies the router's search-trigger heuristics,
// bounds the call with a short timeout, and formats the top hits into a
// single system-role "Search context:" message injected ahead of the user's
// prompt.
//
// Augmentation is strictly best-effort. A slow, failing, or empty search
// never aborts a chat turn - the turn just proceeds without context.
package search
