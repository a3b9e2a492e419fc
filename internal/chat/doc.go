// Package chat is the conversation orchestration engine.
//
// A turn moves through a fixed state sequence: loaded, optionally truncated
// (edit/regenerate), optionally augmented with search context, dispatched,
// persisted. The orchestrator composes the session store, the model router,
// the search augmentor, and the provider dispatcher; it owns the
// edit-index validation rule and the message ordering contract (search
// context before the user message, user message before dispatch, assistant
// reply before persistence).
//
// Failure handling follows a strict taxonomy: caller mistakes surface as
// *ValidationError with no side effects, store connectivity failures
// propagate to the transport layer, and search or provider failures are
// absorbed - the turn completes with degraded content and is still
// persisted.
package chat
