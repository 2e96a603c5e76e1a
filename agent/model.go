package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/agentteam/core"
	"github.com/hupe1980/agentteam/logging"
	"github.com/hupe1980/agentteam/model"
	"github.com/hupe1980/agentteam/tool"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	// Description summarizes the agent's capability for selection policies.
	Description string
	// Instruction is the system prompt sent with every model request.
	Instruction string
	// Tools are executable capabilities the model may call. Requested calls
	// are executed inside the turn; both the call and its result are recorded
	// in the shared conversation.
	Tools []tool.Tool
	// MaxHistoryMessages bounds the conversation window sent to the model.
	// The task message is always retained.
	MaxHistoryMessages int
	// Logger receives model call diagnostics.
	Logger logging.Logger
}

// ModelAgent replies through a language model.
//
// Each turn it converts the visible conversation into a normalized
// model.Request (its own prior messages as assistant turns, everyone else's
// as attributed user turns), drains the model's response stream and returns
// the final completion as a reply message. Function calls the model requests
// are recorded as tool-call messages and, when a matching tool is registered,
// executed inside the turn with their results recorded alongside.
//
// ModelAgent holds no per-run state; the same instance may serve concurrent
// runs on separate teams.
type ModelAgent struct {
	name        string
	description string
	instruction string
	llm         model.Model
	tools       map[string]tool.Tool
	toolDefs    []model.ToolDefinition
	maxHistory  int
	logger      logging.Logger
}

// NewModelAgent creates a model-backed agent with sensible defaults: a
// generated assistant instruction, a 20-message history window and silent
// logging.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Description:        fmt.Sprintf("Agent %s", name),
		Instruction:        fmt.Sprintf("You are %s, a helpful AI assistant.", name),
		MaxHistoryMessages: 20,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	tools := make(map[string]tool.Tool, len(opts.Tools))
	for _, t := range opts.Tools {
		tools[t.Name()] = t
	}

	return &ModelAgent{
		name:        name,
		description: opts.Description,
		instruction: opts.Instruction,
		llm:         llm,
		tools:       tools,
		toolDefs:    tool.Definitions(opts.Tools),
		maxHistory:  opts.MaxHistoryMessages,
		logger:      opts.Logger,
	}
}

// Name implements core.Agent.
func (a *ModelAgent) Name() string { return a.name }

// Description implements core.Agent.
func (a *ModelAgent) Description() string { return a.description }

// Produce implements core.Agent by generating one completion for the visible
// conversation.
func (a *ModelAgent) Produce(ctx context.Context, view *core.ContextView) ([]core.Message, error) {
	req := model.Request{
		Instructions: a.instruction,
		Self:         a.name,
		Messages:     a.window(view),
		Tools:        a.toolDefs,
	}

	start := time.Now()
	respCh, errCh := a.llm.Generate(ctx, req)
	final, err := drain(ctx, respCh, errCh)
	a.logModelCall(final, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if final == nil {
		return nil, fmt.Errorf("model returned no final response")
	}

	var out []core.Message

	var textParts []core.Part
	var calls []core.FunctionCall
	for _, p := range final.Parts {
		switch part := p.(type) {
		case core.TextPart:
			textParts = append(textParts, part)
		case core.FunctionCallPart:
			calls = append(calls, part.FunctionCall)
		}
	}

	if len(textParts) > 0 {
		m := core.NewMessage(a.name, core.KindReply)
		m.Parts = textParts
		out = append(out, m)
	}
	for _, call := range calls {
		out = append(out, core.NewToolCallMessage(a.name, call))
		if result, executed := a.executeCall(ctx, call); executed {
			out = append(out, result)
		}
	}

	return out, nil
}

// executeCall runs a requested function call against the registered tools.
// Calls naming an unregistered tool are left for external execution; tool
// failures are recorded as failed results rather than failing the turn, so
// the model can react to them on its next turn.
func (a *ModelAgent) executeCall(ctx context.Context, call core.FunctionCall) (core.Message, bool) {
	t, ok := a.tools[call.Name]
	if !ok {
		return core.Message{}, false
	}

	response := core.FunctionResponse{ID: call.ID, Name: call.Name}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			a.logger.Warn("tool arguments are not valid JSON", "agent", a.name, "tool", call.Name, "error", err)
			return core.NewToolResultMessage(a.name, response, fmt.Errorf("invalid arguments: %w", err)), true
		}
	}

	result, err := t.Call(ctx, args)
	if err != nil {
		a.logger.Warn("tool call failed", "agent", a.name, "tool", call.Name, "error", err)
		return core.NewToolResultMessage(a.name, response, err), true
	}

	response.Response = stringifyResult(result)
	a.logger.Debug("tool call completed", "agent", a.name, "tool", call.Name)
	return core.NewToolResultMessage(a.name, response, nil), true
}

// stringifyResult renders a tool's return value for the conversation. JSON is
// preferred; values that cannot be marshalled fall back to fmt.
func stringifyResult(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// modelCallMetrics is the optional logger capability for model call timing
// and token usage records. logging.TeamLogger implements it.
type modelCallMetrics interface {
	LogModelCall(model string, tokens int, dur time.Duration, success bool, err error)
}

// logModelCall records the outcome of one generation, using the logger's
// metrics capability when it has one.
func (a *ModelAgent) logModelCall(final *model.Response, dur time.Duration, err error) {
	name := a.llm.Info().Name

	if mc, ok := a.logger.(modelCallMetrics); ok {
		tokens := 0
		if final != nil && final.Usage != nil {
			tokens = final.Usage.TotalTokens
		}
		mc.LogModelCall(name, tokens, dur, err == nil, err)
		return
	}

	if err != nil {
		a.logger.Error("model call failed", "agent", a.name, "model", name, "error", err)
		return
	}
	a.logger.Debug("model call completed", "agent", a.name, "model", name, "duration", dur)
}

// window applies the history bound, always retaining the task message so the
// model never loses the goal of the run.
func (a *ModelAgent) window(view *core.ContextView) []core.Message {
	msgs := view.Messages()
	if a.maxHistory <= 0 || len(msgs) <= a.maxHistory {
		return msgs
	}
	kept := msgs[len(msgs)-a.maxHistory:]
	if len(kept) > 0 && kept[0].IsTask() {
		return kept
	}
	if task, ok := view.Task(); ok {
		return append([]core.Message{task}, kept...)
	}
	return kept
}

// drain consumes a model response stream, returning the final (non-partial)
// response. Partial chunks are discarded; the scheduler broadcasts whole
// turns only.
func drain(ctx context.Context, respCh <-chan model.Response, errCh <-chan error) (*model.Response, error) {
	var final *model.Response
	for respCh != nil || errCh != nil {
		select {
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !r.Partial {
				resp := r
				final = &resp
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return nil, err
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return final, nil
}
