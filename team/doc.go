// Package team implements the multi-agent turn scheduler.
//
// A Team drives a fixed, ordered roster of agents over a shared
// ConversationContext: each turn one agent is selected, invoked with a
// read-only view of the full history, and its output is appended and thereby
// broadcast to every other agent's next view. After each turn the composed
// termination condition is evaluated; when it fires the run stops with a
// TaskResult describing why.
//
// Two run modes are provided. Run blocks until the run finishes. RunStream
// returns a lazily consumed channel that yields every message as it is
// appended and terminates with exactly one ResultEvent (or a terminal
// ErrorEvent). Both modes honor cooperative cancellation through the passed
// context: cancellation is observed at turn boundaries only, so an in-flight
// agent invocation always completes and the context is never left mid-turn.
//
// Speaker selection is polymorphic over the SelectionPolicy interface, with
// round-robin rotation as the default and a Selector-driven policy for
// content-aware speaker choice.
package team
