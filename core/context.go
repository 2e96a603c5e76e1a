package core

import (
	"sync"
)

// ConversationContext is the ordered, append-only message log shared by all
// agents in a run. Insertion order is the conversation order: each append
// stamps the next sequence number, starting at 1, and nothing is ever removed
// except by Reset. It is safe for concurrent access, though within one run
// only the driving scheduler mutates it.
//
// Contract:
//   - Append stamps Seq on copies of the input messages and returns them
//   - Snapshot / View return defensive copies so callers cannot mutate history
//   - Reset clears the log and rewinds the sequence counter to 1
type ConversationContext struct {
	mu       sync.RWMutex
	messages []Message
	nextSeq  int
}

// NewConversationContext creates an empty context with sequence numbers
// starting at 1.
func NewConversationContext() *ConversationContext {
	return &ConversationContext{nextSeq: 1}
}

// Append stamps each message with the next sequence number and adds it to the
// log, preserving the order given. It returns the stamped copies; the inputs
// are not modified.
func (c *ConversationContext) Append(msgs ...Message) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	appended := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		m.Seq = c.nextSeq
		c.nextSeq++
		c.messages = append(c.messages, m)
		appended = append(appended, m)
	}
	return appended
}

// Snapshot returns a copy of the full message log.
func (c *ConversationContext) Snapshot() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// View returns a read-only view over the current log state. The view is a
// point-in-time copy: later appends do not show through it.
func (c *ConversationContext) View() *ContextView {
	return &ContextView{messages: c.Snapshot()}
}

// Len returns the number of messages in the log.
func (c *ConversationContext) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the most recently appended message, if any.
func (c *ConversationContext) Last() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Reset clears the log and rewinds the sequence counter so the next appended
// message receives sequence number 1.
func (c *ConversationContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.nextSeq = 1
}

// ContextView is the immutable history view handed to agents. It owns its own
// copy of the messages, so agents can neither mutate shared history nor
// observe appends made after the view was taken.
type ContextView struct {
	messages []Message
}

// NewContextView builds a view over the given messages. Intended for tests
// and for agents invoked outside a scheduler.
func NewContextView(msgs []Message) *ContextView {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return &ContextView{messages: out}
}

// Messages returns a copy of the viewed messages in conversation order.
func (v *ContextView) Messages() []Message {
	out := make([]Message, len(v.messages))
	copy(out, v.messages)
	return out
}

// Len returns the number of messages in the view.
func (v *ContextView) Len() int { return len(v.messages) }

// Last returns the most recent message in the view, if any.
func (v *ContextView) Last() (Message, bool) {
	if len(v.messages) == 0 {
		return Message{}, false
	}
	return v.messages[len(v.messages)-1], true
}

// Task returns the seed task message, if the view contains one.
func (v *ContextView) Task() (Message, bool) {
	for _, m := range v.messages {
		if m.IsTask() {
			return m, true
		}
	}
	return Message{}, false
}
