// Package config handles configuration loading for scry-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from SCRY_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/scry/gateway.yaml
//  3. ~/.config/scry/gateway.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	providers:
//	  gemini:
//	    api_key: "${GEMINI_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	store:
//	  redis:
//	    ttl: "24h"
//	search:
//	  timeout: "8s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Session store:
//
//	store:
//	  backend: "redis"            # memory, redis, or sqlite
//	  redis:
//	    url: "${REDIS_URL}"
//	    key_prefix: "scry:sessions:"
//	    ttl: "24h"
//	  sqlite:
//	    path: "/var/lib/scry/sessions.db"
//
// Providers:
//
//	providers:
//	  gemini:
//	    api_key: "${GEMINI_API_KEY}"
//	    model: "gemini-2.0-flash"
//	  groq:
//	    api_key: "${GROQ_API_KEY}"
//	  claude:
//	    api_key: "${ANTHROPIC_API_KEY}"
//	  huggingface:
//	    api_key: "${HF_API_KEY}"
//	  pollinations:
//	    enabled: true
//
// Routing:
//
//	router:
//	  default: "gemini"
//	  rules_path: "rules.toml"    # or inline rules:
//	  rules:
//	    - trigger: "code"
//	      provider: "groq"
//
// Search augmentation:
//
//	search:
//	  enabled: true
//	  max_results: 3
//	  timeout: "8s"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
