// Package gateway owns the scry-gateway HTTP surface.
//
// # Overview
//
// The gateway is deliberately thin. It translates HTTP into chat.TurnRequest
// values and translates service errors back into status codes; everything
// about conversations, routing, and providers lives below it.
//
// # HTTP API
//
// POST /api/chat
//
// Runs one conversation turn. The session id travels in the Session-Id
// header in both directions; omitting it starts a new session. Body:
//
//	{"prompt": "...", "provider": "auto", "edit_index": 2}
//
// Status codes:
//
//   - 400: validation failure (empty prompt, edit_index out of range)
//   - 502: session store unavailable
//   - 500: anything else, reported without internal detail
//
// GET /api/search?q=...&limit=5
//
// Standalone search, no conversation involved. 404 when the backend
// returns no results, 503 when search is disabled.
//
// GET /health
//
// Liveness probe, always 200 while the process serves traffic.
//
// # Lifecycle
//
// Run(ctx) serves until the context is canceled, then drains in-flight
// requests with a 5 second grace period and closes the session store.
package gateway
