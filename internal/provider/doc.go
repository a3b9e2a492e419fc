// Package provider normalizes the gateway's AI backends.
//
// # Calling conventions
//
// Backends come in two shapes. Full-history providers (Gemini, Groq,
// Claude) accept the entire ordered conversation and manage multi-turn
// context themselves; they implement HistoryClient. Single-turn providers
// (Hugging Face, Pollinations) accept only a flattened prompt string and
// implement PromptClient. The Dispatcher holds both registries and presents
// one dispatch call to the orchestrator.
//
// # Failure contract
//
// Dispatch never returns an error. Transport failures, malformed or empty
// responses, and backend warm-up conditions are converted into one of three
// fixed fallback strings (FallbackUnavailable, FallbackNoResponse,
// FallbackWarmingUp). The orchestrator treats the returned text as a normal
// reply, so a turn always completes and is persisted even when the backend
// failed.
//
// # System-role handling
//
// Providers without a native system-role concept get system messages
// relabeled: Gemini sees them as "[System] ..." user asides; Claude lifts
// them into the Messages API system parameter; Groq passes them natively.
// Single-turn providers receive recent search snippets concatenated into
// the prompt instead ("Context: ...\n\nQuestion: ...").
package provider
