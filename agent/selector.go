package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentteam/core"
	"github.com/hupe1980/agentteam/logging"
	"github.com/hupe1980/agentteam/model"
)

// ModelSelectorOptions configures a ModelSelector.
type ModelSelectorOptions struct {
	// MaxAttempts bounds how often the model is re-asked when its answer
	// does not name exactly one candidate. After the last attempt the
	// selector abstains and the policy falls back to round-robin order.
	MaxAttempts int
	// Logger receives selection diagnostics.
	Logger logging.Logger
}

// ModelSelector implements team.Selector by asking a language model which
// roster member should speak next, given the candidates' descriptions and
// the conversation so far. An answer that names no candidate, or more than
// one, is retried; persistent ambiguity becomes an abstention rather than an
// error so the run keeps its round-robin fallback.
type ModelSelector struct {
	llm         model.Model
	maxAttempts int
	logger      logging.Logger
}

// NewModelSelector creates a selector with 2 attempts per turn by default.
func NewModelSelector(llm model.Model, optFns ...func(o *ModelSelectorOptions)) *ModelSelector {
	opts := ModelSelectorOptions{
		MaxAttempts: 2,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelSelector{
		llm:         llm,
		maxAttempts: opts.MaxAttempts,
		logger:      opts.Logger,
	}
}

// SelectSpeaker implements team.Selector.
func (s *ModelSelector) SelectSpeaker(ctx context.Context, view *core.ContextView, candidates []core.AgentInfo) (string, error) {
	prompt := buildSelectionPrompt(candidates)
	msgs := append(view.Messages(), core.NewTaskMessage(prompt))

	req := model.Request{
		Instructions: "You select which participant speaks next in a conversation.",
		Self:         "selector",
		Messages:     msgs,
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		respCh, errCh := s.llm.Generate(ctx, req)
		final, err := drain(ctx, respCh, errCh)
		if err != nil {
			return "", fmt.Errorf("speaker selection call failed: %w", err)
		}
		if final == nil {
			continue
		}

		name, ok := matchCandidate(final.Text(), candidates)
		if ok {
			s.logger.Debug("speaker selected", "name", name, "attempt", attempt)
			return name, nil
		}
		s.logger.Debug("selection attempt did not name one candidate", "attempt", attempt, "reply", final.Text())
	}

	// Abstain; the policy falls back to rotation.
	return "", nil
}

// buildSelectionPrompt lists the candidates with their capability summaries
// and asks for a single name back.
func buildSelectionPrompt(candidates []core.AgentInfo) string {
	var b strings.Builder
	b.WriteString("Read the conversation above, then select the participant best suited to speak next.\n")
	b.WriteString("Participants:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Description)
	}
	b.WriteString("Reply with exactly one participant name and nothing else.")
	return b.String()
}

// matchCandidate returns the single candidate mentioned in the reply. An
// exact (trimmed) match wins; otherwise the reply must mention exactly one
// candidate name as a substring.
func matchCandidate(reply string, candidates []core.AgentInfo) (string, bool) {
	trimmed := strings.TrimSpace(reply)
	for _, c := range candidates {
		if trimmed == c.Name {
			return c.Name, true
		}
	}

	var mentioned []string
	for _, c := range candidates {
		if strings.Contains(reply, c.Name) {
			mentioned = append(mentioned, c.Name)
		}
	}
	if len(mentioned) == 1 {
		return mentioned[0], true
	}
	return "", false
}
