package core

import "context"

// Agent is the capability interface consumed by the scheduler.
//
// An agent receives a read-only view of the shared conversation and
// asynchronously produces zero or more messages. Producing nothing is legal
// and simply yields the turn. The scheduler appends whatever is returned, in
// order, so agents never mutate history themselves.
//
// Implementations must:
//   - Respect context cancellation on blocking work (model calls, I/O)
//   - Keep all conversational state in the shared context, not in the agent;
//     capabilities may be shared across concurrent runs and must be safe for
//     concurrent read-only invocation
//   - Return an error rather than partial silent output when production fails
type Agent interface {
	// Name is the agent's unique identifier within a roster.
	Name() string
	// Description is a short capability summary, used by selection policies
	// that pick speakers based on what each agent can do.
	Description() string
	// Produce generates this turn's output given the visible history.
	Produce(ctx context.Context, view *ContextView) ([]Message, error)
}

// AgentInfo carries identifying details about a roster member, handed to
// selection capabilities that should not see the full Agent value.
type AgentInfo struct{ Name, Description string }

// InfoOf builds AgentInfo values for a roster, preserving order.
func InfoOf(agents []Agent) []AgentInfo {
	infos := make([]AgentInfo, len(agents))
	for i, a := range agents {
		infos[i] = AgentInfo{Name: a.Name(), Description: a.Description()}
	}
	return infos
}
