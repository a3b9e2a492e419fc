// ABOUTME: Entry point for the scry-gateway chat server
// ABOUTME: Wires config, store, router, search, and providers into the HTTP gateway

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/scry-gateway/internal/chat"
	"github.com/2389/scry-gateway/internal/config"
	"github.com/2389/scry-gateway/internal/gateway"
	"github.com/2389/scry-gateway/internal/provider"
	"github.com/2389/scry-gateway/internal/router"
	"github.com/2389/scry-gateway/internal/search"
	"github.com/2389/scry-gateway/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 ___  ___ _ __ _   _        __ _  __ _| |_ _____      ____ _ _   _
/ __|/ __| '__| | | |_____ / _' |/ _' | __/ _ \ \ /\ / / _' | | | |
\__ \ (__| |  | |_| |_____| (_| | (_| | ||  __/\ V  V / (_| | |_| |
|___/\___|_|   \__, |      \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
               |___/       |___/                             |___/
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: scry-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the gateway server")
		fmt.Println("  init     Create a new config file interactively")
		fmt.Println("  health   Check gateway health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := config.DefaultPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Store:     %s\n", storeBackendName(cfg))

	dispatcher := buildDispatcher(cfg, logger)
	green.Print("    ▶ ")
	fmt.Printf("Providers: %s\n", strings.Join(dispatcher.Names(), ", "))

	if cfg.Search.Enabled {
		green.Print("    ▶ ")
		fmt.Println("Search:    duckduckgo")
	}

	fmt.Println()

	logger.Info("starting scry-gateway",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"store", storeBackendName(cfg),
	)

	st, err := buildStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	rules, err := buildRules(cfg)
	if err != nil {
		return fmt.Errorf("loading routing rules: %w", err)
	}

	searcher, augmentor := buildSearch(cfg, logger)

	chatSvc := chat.New(st, rules, augmentor, dispatcher, logger)
	gw := gateway.New(cfg, chatSvc, searcher, st, logger)

	return gw.Run(ctx)
}

func storeBackendName(cfg *config.Config) string {
	if cfg.Store.Backend == "" {
		return "memory"
	}
	return cfg.Store.Backend
}

// buildStore selects the session store backend from config.
func buildStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		return store.NewRedisStore(store.RedisConfig{
			URL:       cfg.Store.Redis.URL,
			KeyPrefix: cfg.Store.Redis.KeyPrefix,
			TTL:       cfg.Store.Redis.TTL,
		}, logger)
	case "sqlite":
		return store.NewSQLiteStore(cfg.Store.SQLite.Path, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildRules assembles routing rules from inline config or a TOML rules file.
func buildRules(cfg *config.Config) (*router.Rules, error) {
	if len(cfg.Router.Rules) > 0 {
		rules := make([]router.Rule, 0, len(cfg.Router.Rules))
		for _, r := range cfg.Router.Rules {
			rules = append(rules, router.Rule{Trigger: r.Trigger, Provider: r.Provider})
		}
		return router.NewRules(rules, cfg.Router.Default)
	}
	if cfg.Router.RulesPath != "" {
		return router.LoadRules(cfg.Router.RulesPath)
	}
	return router.NewRules(nil, cfg.Router.Default)
}

// buildDispatcher registers every provider the config supplies credentials
// for. Pollinations needs no key, so it is opt-in via enabled.
func buildDispatcher(cfg *config.Config, logger *slog.Logger) *provider.Dispatcher {
	d := provider.NewDispatcher(logger)

	if cfg.Providers.Gemini.APIKey != "" {
		d.RegisterHistory("gemini", provider.NewGemini(provider.GeminiConfig{
			APIKey:  cfg.Providers.Gemini.APIKey,
			Model:   cfg.Providers.Gemini.Model,
			BaseURL: cfg.Providers.Gemini.BaseURL,
		}))
	}
	if cfg.Providers.Groq.APIKey != "" {
		d.RegisterHistory("groq", provider.NewGroq(provider.GroqConfig{
			APIKey:  cfg.Providers.Groq.APIKey,
			Model:   cfg.Providers.Groq.Model,
			BaseURL: cfg.Providers.Groq.BaseURL,
		}))
	}
	if cfg.Providers.Claude.APIKey != "" {
		d.RegisterHistory("claude", provider.NewClaude(provider.ClaudeConfig{
			APIKey:    cfg.Providers.Claude.APIKey,
			Model:     cfg.Providers.Claude.Model,
			MaxTokens: cfg.Providers.Claude.MaxTokens,
		}))
	}
	if cfg.Providers.HuggingFace.APIKey != "" {
		d.RegisterPrompt("hf", provider.NewHuggingFace(provider.HFConfig{
			APIKey:  cfg.Providers.HuggingFace.APIKey,
			Model:   cfg.Providers.HuggingFace.Model,
			BaseURL: cfg.Providers.HuggingFace.BaseURL,
		}))
	}
	if cfg.Providers.Pollinations.Enabled {
		d.RegisterPrompt("pollinations", provider.NewPollinations(provider.PollinationsConfig{
			TextURL: cfg.Providers.Pollinations.TextURL,
		}))
	}

	return d
}

// buildSearch creates the DuckDuckGo searcher and augmentor when enabled.
func buildSearch(cfg *config.Config, logger *slog.Logger) (search.Searcher, *search.Augmentor) {
	if !cfg.Search.Enabled {
		return nil, nil
	}

	var opts []search.DuckDuckGoOption
	if cfg.Search.BaseURL != "" {
		opts = append(opts, search.WithBaseURL(cfg.Search.BaseURL))
	}
	if cfg.Search.Region != "" {
		opts = append(opts, search.WithRegion(cfg.Search.Region))
	}
	if cfg.Search.SafeSearch {
		opts = append(opts, search.WithSafeSearch(true))
	}

	searcher := search.NewDuckDuckGo(opts...)
	augmentor := search.NewAugmentor(searcher, cfg.Search.MaxResults, cfg.Search.Timeout, logger)
	return searcher, augmentor
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := strings.TrimPrefix(cfg.Server.HTTPAddr, "0.0.0.0")
	url := fmt.Sprintf("http://%s/health", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("scry-gateway configuration setup")
	fmt.Println("================================")
	fmt.Println()

	defaultConfigPath := config.DefaultPath()

	// Output filename
	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	// Check if file exists
	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Server configuration
	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:8080")

	// Session store
	fmt.Println("\n--- Session Store ---")
	backend := prompt(reader, "Store backend (memory/redis/sqlite)", "memory")

	var redisURL, sqlitePath string
	switch backend {
	case "redis":
		redisURL = prompt(reader, "Redis URL", "redis://localhost:6379/0")
	case "sqlite":
		sqlitePath = prompt(reader, "SQLite database path", "sessions.db")
	}

	// Routing
	fmt.Println("\n--- Routing ---")
	defaultProvider := prompt(reader, "Default provider (gemini/groq/claude/hf/pollinations)", "gemini")
	rulesPath := prompt(reader, "Rules file path (empty for none)", "")

	// Search
	fmt.Println("\n--- Search ---")
	enableSearch := prompt(reader, "Enable search augmentation?", "yes")
	searchEnabled := strings.ToLower(enableSearch) == "yes" || strings.ToLower(enableSearch) == "y"

	// Logging
	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	// Generate config
	var cfg strings.Builder
	cfg.WriteString("# scry-gateway configuration\n")
	cfg.WriteString("# Generated by scry-gateway init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: \"%s\"\n", httpAddr))
	cfg.WriteString("\n")

	cfg.WriteString("store:\n")
	cfg.WriteString(fmt.Sprintf("  backend: \"%s\"\n", backend))
	switch backend {
	case "redis":
		cfg.WriteString("  redis:\n")
		cfg.WriteString(fmt.Sprintf("    url: \"%s\"\n", redisURL))
		cfg.WriteString("    ttl: \"24h\"\n")
	case "sqlite":
		cfg.WriteString("  sqlite:\n")
		cfg.WriteString(fmt.Sprintf("    path: \"%s\"\n", sqlitePath))
	}
	cfg.WriteString("\n")

	cfg.WriteString("providers:\n")
	cfg.WriteString("  gemini:\n")
	cfg.WriteString("    api_key: \"${GEMINI_API_KEY}\"\n")
	cfg.WriteString("  groq:\n")
	cfg.WriteString("    api_key: \"${GROQ_API_KEY}\"\n")
	cfg.WriteString("  claude:\n")
	cfg.WriteString("    api_key: \"${ANTHROPIC_API_KEY}\"\n")
	cfg.WriteString("  huggingface:\n")
	cfg.WriteString("    api_key: \"${HF_API_KEY}\"\n")
	cfg.WriteString("  pollinations:\n")
	cfg.WriteString("    enabled: true\n")
	cfg.WriteString("\n")

	cfg.WriteString("router:\n")
	cfg.WriteString(fmt.Sprintf("  default: \"%s\"\n", defaultProvider))
	if rulesPath != "" {
		cfg.WriteString(fmt.Sprintf("  rules_path: \"%s\"\n", rulesPath))
	}
	cfg.WriteString("\n")

	cfg.WriteString("search:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", searchEnabled))
	cfg.WriteString("  max_results: 3\n")
	cfg.WriteString("  timeout: \"8s\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	// Ensure config directory exists
	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write config file
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)

	// Write a starter rules file alongside the config when requested
	if rulesPath != "" {
		if _, err := os.Stat(rulesPath); os.IsNotExist(err) {
			if err := os.WriteFile(rulesPath, []byte(starterRules(defaultProvider)), 0644); err != nil {
				return fmt.Errorf("writing rules file: %w", err)
			}
			fmt.Printf("Rules written to %s\n", rulesPath)
		}
	}

	fmt.Println("\nTo start the server:")
	fmt.Printf("  scry-gateway serve\n")

	return nil
}

func starterRules(defaultProvider string) string {
	var b strings.Builder
	b.WriteString("# scry-gateway routing rules\n")
	b.WriteString("# First matching trigger wins; triggers match whole words.\n\n")
	b.WriteString(fmt.Sprintf("default = %q\n\n", defaultProvider))
	b.WriteString("[[rule]]\ntrigger = \"code\"\nprovider = \"groq\"\n\n")
	b.WriteString("[[rule]]\ntrigger = \"story\"\nprovider = \"claude\"\n\n")
	b.WriteString("[[rule]]\ntrigger = \"image\"\nprovider = \"pollinations\"\n")
	return b.String()
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
