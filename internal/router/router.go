// ABOUTME: Content-based model routing for scry-gateway
// ABOUTME: Maps prompt text to a provider via an ordered trigger-phrase table

package router

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule maps a trigger phrase to a provider id. Phrases match as whole words
// (or whole phrases) in the lower-cased prompt.
type Rule struct {
	Trigger  string
	Provider string
}

// Rules is an immutable, ordered routing table. Order is a first-class
// contract: the first matching rule wins, not the longest or most specific.
type Rules struct {
	rules           []Rule
	patterns        []*regexp.Regexp
	defaultProvider string
}

// NewRules compiles an ordered routing table. The default provider is
// returned when no trigger matches; it must be non-empty.
func NewRules(rules []Rule, defaultProvider string) (*Rules, error) {
	if defaultProvider == "" {
		return nil, fmt.Errorf("default provider is required")
	}

	compiled := make([]*regexp.Regexp, len(rules))
	for i, r := range rules {
		if r.Trigger == "" || r.Provider == "" {
			return nil, fmt.Errorf("rule %d: trigger and provider are required", i)
		}
		pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(r.Trigger)) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, r.Trigger, err)
		}
		compiled[i] = pattern
	}

	// Copy so callers cannot mutate the table after construction
	owned := make([]Rule, len(rules))
	copy(owned, rules)

	return &Rules{
		rules:           owned,
		patterns:        compiled,
		defaultProvider: defaultProvider,
	}, nil
}

// Default returns the configured default provider.
func (r *Rules) Default() string {
	return r.defaultProvider
}

// Route returns the provider for a prompt. Deterministic and side-effect
// free: the same prompt always routes identically for a given table.
func (r *Rules) Route(prompt string) string {
	lowered := strings.ToLower(prompt)
	for i, pattern := range r.patterns {
		if pattern.MatchString(lowered) {
			return r.rules[i].Provider
		}
	}
	return r.defaultProvider
}

// searchTriggers are the verbs that mark a prompt as wanting live search
// context. ShouldSearch tests substring membership; ExtractQuery strips
// them as whole words.
var searchTriggers = []string{"search", "find", "look up", "google", "duckduckgo"}

var triggerPattern = func() *regexp.Regexp {
	quoted := make([]string, len(searchTriggers))
	for i, t := range searchTriggers {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}()

var whitespacePattern = regexp.MustCompile(`\s+`)

// ShouldSearch reports whether the prompt contains a search trigger
// (case-insensitive substring test).
func ShouldSearch(prompt string) bool {
	lowered := strings.ToLower(prompt)
	for _, trigger := range searchTriggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}

// ExtractQuery strips the search trigger verbs from the prompt and collapses
// whitespace, producing the text sent to the search backend. Callers must
// fall back to the original prompt when the result is empty.
func ExtractQuery(prompt string) string {
	cleaned := triggerPattern.ReplaceAllString(prompt, "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
