// ABOUTME: TOML routing-rules file loading for the model router
// ABOUTME: The rules file is an ordered trigger-to-provider table plus a default

package router

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// rulesFile mirrors the on-disk rules format:
//
//	default = "gemini"
//
//	[[rule]]
//	trigger = "code"
//	provider = "groq"
type rulesFile struct {
	Default string     `toml:"default"`
	Rule    []ruleSpec `toml:"rule"`
}

type ruleSpec struct {
	Trigger  string `toml:"trigger"`
	Provider string `toml:"provider"`
}

// LoadRules reads an ordered routing table from a TOML file. Array-of-tables
// order in the file is the match order.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var file rulesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	rules := make([]Rule, len(file.Rule))
	for i, spec := range file.Rule {
		rules[i] = Rule{Trigger: spec.Trigger, Provider: spec.Provider}
	}

	compiled, err := NewRules(rules, file.Default)
	if err != nil {
		return nil, fmt.Errorf("validating rules file: %w", err)
	}
	return compiled, nil
}
