package team

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentteam/core"
)

// SelectionPolicy decides which roster member takes the next turn. Policies
// may keep internal state (e.g. a rotation cursor); Reset rewinds it to the
// initial position. SelectNext is called from a single goroutine per run.
type SelectionPolicy interface {
	SelectNext(ctx context.Context, view *core.ContextView, roster []core.Agent) (core.Agent, error)
	Reset()
}

// RoundRobin cycles the roster in fixed order, wrapping after the last agent
// back to the first. It is deterministic and ignores message content.
type RoundRobin struct {
	cursor int
}

// NewRoundRobin creates a round-robin policy starting at the first agent.
func NewRoundRobin() *RoundRobin { return &RoundRobin{} }

// SelectNext implements SelectionPolicy.
func (r *RoundRobin) SelectNext(_ context.Context, _ *core.ContextView, roster []core.Agent) (core.Agent, error) {
	if len(roster) == 0 {
		return nil, core.NewConfigurationError("roster must not be empty")
	}
	a := roster[r.cursor%len(roster)]
	r.cursor++
	return a, nil
}

// Reset implements SelectionPolicy, rewinding the rotation to the first agent.
func (r *RoundRobin) Reset() { r.cursor = 0 }

// Selector is the external speaker-selection capability consulted by a
// SelectorPolicy before each turn. It inspects the conversation and the
// candidate roster and returns the name of the agent that should speak next.
// Returning an empty name abstains, handing the turn to the fallback
// rotation. A typical implementation prompts a language model with the
// candidates' descriptions (see agent.ModelSelector).
type Selector interface {
	SelectSpeaker(ctx context.Context, view *core.ContextView, candidates []core.AgentInfo) (string, error)
}

// SelectorFunc adapts a plain function to the Selector interface.
type SelectorFunc func(ctx context.Context, view *core.ContextView, candidates []core.AgentInfo) (string, error)

// SelectSpeaker implements Selector.
func (f SelectorFunc) SelectSpeaker(ctx context.Context, view *core.ContextView, candidates []core.AgentInfo) (string, error) {
	return f(ctx, view, candidates)
}

// SelectorPolicy consults a Selector before each turn and falls back to
// round-robin order when the selector abstains or names an agent that is not
// on the roster. Selector errors are propagated and fail the run; the
// scheduler does not retry speaker selection.
type SelectorPolicy struct {
	selector Selector
	fallback *RoundRobin
}

// NewSelectorPolicy creates a selector-driven policy with a round-robin
// fallback rotation.
func NewSelectorPolicy(selector Selector) *SelectorPolicy {
	return &SelectorPolicy{selector: selector, fallback: NewRoundRobin()}
}

// SelectNext implements SelectionPolicy.
func (p *SelectorPolicy) SelectNext(ctx context.Context, view *core.ContextView, roster []core.Agent) (core.Agent, error) {
	name, err := p.selector.SelectSpeaker(ctx, view, core.InfoOf(roster))
	if err != nil {
		return nil, fmt.Errorf("speaker selection failed: %w", err)
	}
	if name != "" {
		for _, a := range roster {
			if a.Name() == name {
				return a, nil
			}
		}
	}
	// Abstention or unknown name: hand the turn to the rotation.
	return p.fallback.SelectNext(ctx, view, roster)
}

// Reset implements SelectionPolicy, rewinding the fallback rotation.
func (p *SelectorPolicy) Reset() { p.fallback.Reset() }
