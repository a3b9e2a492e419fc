// Package store provides session persistence for scry-gateway.
//
// # Architecture
//
// A session maps an opaque id to a Conversation, an ordered list of
// Messages. The orchestrator reads a conversation, rebuilds it for the
// turn, and writes it back wholesale; the store's only job is to make that
// read-modify-write cycle safe per key.
//
// Three backends implement the Store interface:
//
//   - MemoryStore: process-local map, no persistence, no expiry
//   - RedisStore: JSON blob per session under a namespaced key, optional TTL
//   - SQLiteStore: durable single-file store, one row per session
//
// # Degradation
//
// Reads never fail on unknown or malformed data: both degrade to an empty
// conversation so a stale or corrupted session simply restarts. Backend
// connectivity failures are different - they wrap ErrUnavailable so callers
// can tell "new session" apart from "store unreachable".
//
// # Concurrency
//
// All backends are safe for concurrent use. Writes are atomic at
// single-session granularity; two turns racing on the same session id are
// last-write-wins by design.
//
// # Testing
//
// Use NewMockStore() for unit tests, or NewSQLiteStore(":memory:", nil) for
// integration tests against real SQL.
package store
