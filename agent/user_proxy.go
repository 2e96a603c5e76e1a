package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentteam/core"
)

// InputFunc obtains input from outside the roster, typically a human at a
// console. It receives a short prompt describing whose turn it is and
// returns the text to contribute. Returning an empty string yields the turn
// without producing a message.
type InputFunc func(prompt string) (string, error)

// UserProxyAgent hands its turns to an input function, injecting a human (or
// any external process) into the roster. The input call happens inside the
// turn, so cancellation is only observed once input returns.
type UserProxyAgent struct {
	name        string
	description string
	input       InputFunc
}

// NewUserProxyAgent creates a user proxy reading from the given input function.
func NewUserProxyAgent(name string, input InputFunc) *UserProxyAgent {
	return &UserProxyAgent{
		name:        name,
		description: "Forwards the turn to an external user for input.",
		input:       input,
	}
}

// Name implements core.Agent.
func (a *UserProxyAgent) Name() string { return a.name }

// Description implements core.Agent.
func (a *UserProxyAgent) Description() string { return a.description }

// Produce implements core.Agent.
func (a *UserProxyAgent) Produce(_ context.Context, _ *core.ContextView) ([]core.Message, error) {
	text, err := a.input(fmt.Sprintf("%s> ", a.name))
	if err != nil {
		return nil, fmt.Errorf("user input failed: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return []core.Message{core.NewReplyMessage(a.name, text)}, nil
}
