// ABOUTME: HTTP API handlers for the chat and search endpoints
// ABOUTME: Maps service errors onto status codes without leaking internals

package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/2389/scry-gateway/internal/chat"
	"github.com/2389/scry-gateway/internal/store"
)

// SessionHeader carries the session id on chat requests and responses.
const SessionHeader = "Session-Id"

// ChatRequest is the JSON request body for POST /api/chat.
type ChatRequest struct {
	Prompt    string `json:"prompt"`
	Provider  string `json:"provider,omitempty"`
	EditIndex *int   `json:"edit_index,omitempty"`
}

// ChatResponse is the JSON response for POST /api/chat.
type ChatResponse struct {
	SessionID    string          `json:"session_id"`
	Reply        string          `json:"reply"`
	Provider     string          `json:"provider"`
	Conversation []store.Message `json:"conversation"`
}

// SearchResultResponse is one hit in the GET /api/search response.
type SearchResultResponse struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// handleChat handles POST /api/chat requests. The session id travels in the
// Session-Id header both ways; an absent header starts a new session.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, err := parseChatRequest(r.Body)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := g.chat.Turn(r.Context(), &chat.TurnRequest{
		SessionID: r.Header.Get(SessionHeader),
		Prompt:    req.Prompt,
		Provider:  req.Provider,
		EditIndex: req.EditIndex,
	})
	if err != nil {
		var verr *chat.ValidationError
		switch {
		case errors.As(err, &verr):
			g.sendJSONError(w, http.StatusBadRequest, verr.Error())
		case errors.Is(err, store.ErrUnavailable):
			g.logger.Error("session store unavailable", "error", err)
			g.sendJSONError(w, http.StatusBadGateway, "session store unavailable")
		default:
			g.logger.Error("chat turn failed", "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	w.Header().Set(SessionHeader, resp.SessionID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ChatResponse{
		SessionID:    resp.SessionID,
		Reply:        resp.Reply,
		Provider:     resp.Provider,
		Conversation: resp.Conversation,
	})
}

// handleSearch handles GET /api/search?q=&limit= requests. It exposes the
// search backend directly, without any conversation involvement.
func (g *Gateway) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if g.searcher == nil {
		g.sendJSONError(w, http.StatusServiceUnavailable, "search is not enabled")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		g.sendJSONError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			g.sendJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := g.searcher.Search(r.Context(), query, limit)
	if err != nil {
		g.logger.Error("search failed", "query", query, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if len(results) == 0 {
		g.sendJSONError(w, http.StatusNotFound, "no results")
		return
	}

	response := make([]SearchResultResponse, 0, len(results))
	for _, res := range results {
		response = append(response, SearchResultResponse{
			Title:   res.Title,
			Snippet: res.Snippet,
			URL:     res.URL,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// sendJSONError writes a JSON error response with the given status code.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// parseChatRequest parses and validates a ChatRequest from the given reader.
// Returns an error if the JSON is invalid or the prompt is missing.
func parseChatRequest(r io.Reader) (*ChatRequest, error) {
	var req ChatRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	if req.Prompt == "" {
		return nil, errors.New("prompt is required")
	}
	return &req, nil
}
