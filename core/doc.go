// Package core defines the shared data model and contracts of AgentTeam: the
// Message/Part content model, the append-only ConversationContext with its
// read-only views, the Agent capability interface consumed by the scheduler,
// and the typed error taxonomy (configuration, capability, cancellation and
// stall failures).
//
// Higher-level packages (team, termination, agent, model) depend on core;
// core depends on nothing but the standard library and uuid.
package core
