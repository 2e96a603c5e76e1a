package team

import "github.com/hupe1980/agentteam/core"

// TaskResult is the terminal outcome of a run: the full conversation
// transcript at stop time plus a human-readable stop reason. It is produced
// exactly once per run and is immutable after creation.
type TaskResult struct {
	Messages   []core.Message `json:"messages"`
	StopReason string         `json:"stop_reason"`
}

// StreamEvent is one element of the lazy sequence produced by RunStream.
// Concrete event types implement the unexported marker enabling a closed set:
// MessageEvent for each appended message, then exactly one terminal
// ResultEvent or ErrorEvent.
type StreamEvent interface{ isStreamEvent() }

// MessageEvent wraps a message as it is appended to the conversation.
// Delivery order matches sequence-number order exactly.
type MessageEvent struct {
	Message core.Message
}

// isStreamEvent implements the StreamEvent interface for MessageEvent.
func (MessageEvent) isStreamEvent() {}

// ResultEvent is the terminal element of a normally completed stream.
type ResultEvent struct {
	Result *TaskResult
}

// isStreamEvent implements the StreamEvent interface for ResultEvent.
func (ResultEvent) isStreamEvent() {}

// ErrorEvent is the terminal element of a failed or cancelled stream. For
// cooperative cancellation Err is a *core.CancelledError; for a failed agent
// invocation it is a *core.CapabilityError. The transcript recorded before
// the failure has already been delivered as MessageEvents.
type ErrorEvent struct {
	Err error
}

// isStreamEvent implements the StreamEvent interface for ErrorEvent.
func (ErrorEvent) isStreamEvent() {}
