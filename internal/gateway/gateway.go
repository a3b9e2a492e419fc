// ABOUTME: Gateway orchestrator that owns the HTTP server lifecycle
// ABOUTME: Wires the chat service and search augmentor behind the public API

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/2389/scry-gateway/internal/chat"
	"github.com/2389/scry-gateway/internal/config"
	"github.com/2389/scry-gateway/internal/search"
	"github.com/2389/scry-gateway/internal/store"
)

// Gateway coordinates the scry-gateway HTTP server. It owns the listener
// lifecycle; the chat service owns all conversation semantics.
type Gateway struct {
	config     *config.Config
	chat       *chat.Service
	searcher   search.Searcher
	store      store.Store
	httpServer *http.Server
	logger     *slog.Logger
}

// New assembles a Gateway from its already-constructed components. The
// searcher may be nil when search is disabled; the standalone search
// endpoint then reports unavailable.
func New(cfg *config.Config, chatSvc *chat.Service, searcher search.Searcher, st store.Store, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		config:   cfg,
		chat:     chatSvc,
		searcher: searcher,
		store:    st,
		logger:   logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", g.handleChat)
	mux.HandleFunc("/api/search", g.handleSearch)
	mux.HandleFunc("/health", g.handleHealth)

	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           g.recoverMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return g
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails, then performs a graceful shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", g.config.Server.HTTPAddr, err)
	}

	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// startServer starts the HTTP server in a goroutine, returning an error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the HTTP server and closes the session store.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down")

	if err := g.httpServer.Shutdown(ctx); err != nil {
		g.logger.Error("HTTP server shutdown", "error", err)
	}

	if g.store != nil {
		if err := g.store.Close(); err != nil {
			return fmt.Errorf("closing store: %w", err)
		}
	}

	g.logger.Info("shutdown complete")
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// recoverMiddleware converts handler panics into a generic 500 so internal
// details never reach the client.
func (g *Gateway) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				g.logger.Error("handler panic", "path", r.URL.Path, "panic", rec)
				g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
