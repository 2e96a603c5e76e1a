// Package agentteam provides a high-level façade over the team scheduler and
// its supporting abstractions (agents, termination conditions, models &
// logging) enabling rapid construction of multi-agent conversations. Most
// applications interact with this package by:
//  1. Building agents (model-backed, user proxy, or custom core.Agent)
//  2. Composing a termination condition (termination.Or/And over leaves)
//  3. Creating a team via NewRoundRobinTeam or NewSelectorTeam
//  4. Running tasks synchronously (Run) or as a lazy stream (RunStream)
//
// The façade delegates scheduling to team.Team while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a structured logger.
package agentteam

import (
	"github.com/hupe1980/agentteam/core"
	"github.com/hupe1980/agentteam/team"
	"github.com/hupe1980/agentteam/termination"
)

// NewRoundRobinTeam creates a team that rotates through the roster in fixed
// order, stopping when cond fires. Additional options (turn bound, logger,
// stream buffering) may be supplied.
func NewRoundRobinTeam(agents []core.Agent, cond termination.Condition, optFns ...func(o *team.Options)) (*team.Team, error) {
	fns := append([]func(o *team.Options){team.WithTermination(cond)}, optFns...)
	return team.New(agents, fns...)
}

// NewSelectorTeam creates a team whose next speaker is chosen by selector
// (e.g. agent.ModelSelector), falling back to round-robin order when the
// selector abstains. The team stops when cond fires.
func NewSelectorTeam(agents []core.Agent, selector team.Selector, cond termination.Condition, optFns ...func(o *team.Options)) (*team.Team, error) {
	fns := append([]func(o *team.Options){
		team.WithTermination(cond),
		team.WithSelector(selector),
	}, optFns...)
	return team.New(agents, fns...)
}
