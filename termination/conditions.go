package termination

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/agentteam/core"
)

// TextMention is satisfied when a message appended since the last reset
// contains a configured substring. Matching is case-sensitive and applies to
// the message's text parts only.
type TextMention struct {
	latch
	text string
}

// NewTextMention creates a condition that fires on the literal substring text.
func NewTextMention(text string) *TextMention {
	return &TextMention{text: text}
}

// Evaluate implements Condition.
func (t *TextMention) Evaluate(suffix []core.Message) bool {
	if t.satisfied {
		return true
	}
	for _, m := range suffix {
		if strings.Contains(m.Text(), t.text) {
			t.fire(fmt.Sprintf("Text '%s' mentioned", t.text))
			break
		}
	}
	return t.satisfied
}

// Reset implements Condition.
func (t *TextMention) Reset() { t.reset() }

// MaxTurns is satisfied once the number of agent-produced (non-task)
// messages since the last reset reaches the configured bound.
type MaxTurns struct {
	latch
	max  int
	seen int
}

// NewMaxTurns creates a condition bounded at max agent-produced messages.
// It returns a ConfigurationError for bounds below 1.
func NewMaxTurns(max int) (*MaxTurns, error) {
	if max < 1 {
		return nil, core.NewConfigurationError("max turns must be >= 1, got %d", max)
	}
	return &MaxTurns{max: max}, nil
}

// Evaluate implements Condition.
func (m *MaxTurns) Evaluate(suffix []core.Message) bool {
	if m.satisfied {
		return true
	}
	for _, msg := range suffix {
		if msg.IsTask() {
			continue
		}
		m.seen++
		if m.seen >= m.max {
			m.fire(fmt.Sprintf("Maximum number of turns %d reached", m.max))
			break
		}
	}
	return m.satisfied
}

// Reset implements Condition.
func (m *MaxTurns) Reset() {
	m.reset()
	m.seen = 0
}

// External is satisfied once an out-of-band caller invokes Set. The request
// takes effect on the next evaluation, so an in-flight turn always completes
// and the run stops gracefully with a normal result rather than an error.
// Set is safe to call from any goroutine.
type External struct {
	mu sync.Mutex
	latch
	requested bool
}

// NewExternal creates an externally triggered condition.
func NewExternal() *External {
	return &External{}
}

// Set requests termination. Idempotent.
func (e *External) Set() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requested = true
}

// Evaluate implements Condition. The message suffix is ignored; only the
// out-of-band request matters.
func (e *External) Evaluate([]core.Message) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.requested && !e.satisfied {
		e.fire("External termination requested")
	}
	return e.satisfied
}

// Reset implements Condition. It clears both the satisfied state and any
// pending request.
func (e *External) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
	e.requested = false
}
