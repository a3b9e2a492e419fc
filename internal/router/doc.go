// Package router implements content-based provider selection.
//
// Routing is a pure function from prompt text to a provider id, driven by an
// ordered table of trigger phrases. The table is compiled once at startup
// (from config or a TOML rules file) and passed explicitly, never held as
// mutable global state, so routing is deterministic and testable without
// reloads.
//
// The package also owns the search-trigger heuristics: ShouldSearch decides
// whether a prompt wants live search context, and ExtractQuery strips the
// trigger verbs to produce the actual search query.
package router
