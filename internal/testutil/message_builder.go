package testutil

import (
	"github.com/hupe1980/agentteam/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().Source("critic").Reply("APPROVE").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	source      string
	kind        core.MessageKind
	id          string
	seq         int
	textParts   []string
	customParts []core.Part
}

// NewMessageBuilder creates a builder with default source "agent" and kind
// reply.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{source: "agent", kind: core.KindReply}
}

// Source sets the author of the message (chainable).
func (b *MessageBuilder) Source(s string) *MessageBuilder { b.source = s; return b }

// ID overrides the auto-generated message ID (chainable). Use mainly in
// tests where determinism matters.
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// Seq pre-stamps a sequence number, bypassing a ConversationContext (chainable).
func (b *MessageBuilder) Seq(n int) *MessageBuilder { b.seq = n; return b }

// Task marks the message as the run's seed task with the given text (chainable).
func (b *MessageBuilder) Task(text string) *MessageBuilder {
	b.kind = core.KindTask
	b.source = "user"
	b.textParts = append(b.textParts, text)
	return b
}

// Reply appends a reply text part (chainable).
func (b *MessageBuilder) Reply(text string) *MessageBuilder {
	b.kind = core.KindReply
	b.textParts = append(b.textParts, text)
	return b
}

// ToolCall turns the message into a tool-call record (chainable).
func (b *MessageBuilder) ToolCall(name, args string) *MessageBuilder {
	b.kind = core.KindToolCall
	b.customParts = append(b.customParts, core.FunctionCallPart{
		FunctionCall: core.FunctionCall{Name: name, Arguments: args},
	})
	return b
}

// AddPart appends a custom content part (chainable).
func (b *MessageBuilder) AddPart(p core.Part) *MessageBuilder {
	b.customParts = append(b.customParts, p)
	return b
}

// Build constructs the core.Message value.
func (b *MessageBuilder) Build() core.Message {
	m := core.NewMessage(b.source, b.kind)
	if b.id != "" {
		m.ID = b.id
	}
	m.Seq = b.seq
	parts := make([]core.Part, 0, len(b.textParts)+len(b.customParts))
	for _, t := range b.textParts {
		parts = append(parts, core.TextPart{Text: t})
	}
	parts = append(parts, b.customParts...)
	m.Parts = parts
	return m
}

// Conversation builds a ConversationContext pre-populated with the given
// messages, appended in order so sequence numbers start at 1.
func Conversation(msgs ...core.Message) *core.ConversationContext {
	convo := core.NewConversationContext()
	convo.Append(msgs...)
	return convo
}
