package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageKind classifies a message within a conversation. The kind is fixed
// at construction and drives turn accounting (Task messages are never counted
// as agent output) and rendering decisions in higher layers.
type MessageKind string

const (
	// KindTask is the seed message that starts a run.
	KindTask MessageKind = "task"
	// KindReply is a conversational reply produced by an agent.
	KindReply MessageKind = "reply"
	// KindToolCall records a tool/function invocation request. The scheduler
	// treats it as data only; execution belongs to the producing agent.
	KindToolCall MessageKind = "tool_call"
	// KindToolResult records the outcome of a previously requested tool call.
	KindToolResult MessageKind = "tool_result"
	// KindControl carries orchestration signals rather than conversation.
	KindControl MessageKind = "control"
)

// Message is the unit of communication shared by all agents in a run. After
// being appended to a ConversationContext it must be treated as immutable;
// the context is its exclusive owner and agents only ever see copies.
//
// Seq is zero until the message is appended; the context stamps the next
// sequence number on append. Sequence numbers totally order all messages
// within one run, starting at 1.
type Message struct {
	ID        string      `json:"id"`
	Source    string      `json:"source"`
	Kind      MessageKind `json:"kind"`
	Seq       int         `json:"seq"`
	Parts     []Part      `json:"parts,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage creates a bare message authored by source with the given kind.
// Prefer the kind-specific constructors for common cases.
func NewMessage(source string, kind MessageKind) Message {
	return Message{
		ID:        NewID(),
		Source:    source,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskMessage creates the seed message for a run. By convention the
// source is "user", mirroring a task handed in from outside the roster.
func NewTaskMessage(text string) Message {
	m := NewMessage("user", KindTask)
	m.Parts = []Part{TextPart{Text: text}}
	return m
}

// NewReplyMessage creates a plain text reply authored by an agent.
func NewReplyMessage(source, text string) Message {
	m := NewMessage(source, KindReply)
	m.Parts = []Part{TextPart{Text: text}}
	return m
}

// NewToolCallMessage records a tool invocation request emitted by an agent.
func NewToolCallMessage(source string, call FunctionCall) Message {
	m := NewMessage(source, KindToolCall)
	m.Parts = []Part{FunctionCallPart{FunctionCall: call}}
	return m
}

// NewToolResultMessage records the completion result (or error) of a tool
// call. If err is non-nil its message is copied into the response Error field.
func NewToolResultMessage(source string, resp FunctionResponse, err error) Message {
	if err != nil {
		resp.Error = err.Error()
	}
	m := NewMessage(source, KindToolResult)
	m.Parts = []Part{FunctionResponsePart{FunctionResponse: resp}}
	return m
}

// NewControlMessage creates a control message carrying structured data.
func NewControlMessage(source string, data map[string]any) Message {
	m := NewMessage(source, KindControl)
	m.Parts = []Part{DataPart{Data: data}}
	return m
}

// NewID generates a unique identifier for messages.
func NewID() string { return uuid.NewString() }

// Text returns the concatenation of all text parts, in order. Non-text parts
// are skipped, so tool-call records yield an empty string.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// IsTask reports whether this is the run's seed message. Everything that is
// not a task counts as agent-produced output for turn accounting.
func (m Message) IsTask() bool { return m.Kind == KindTask }

// FunctionCalls returns any function call parts preserving original order.
func (m Message) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// FunctionResponses returns any function response parts preserving original order.
func (m Message) FunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range m.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}
