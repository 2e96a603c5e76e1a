package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMessageConstructors(t *testing.T) {
	task := NewTaskMessage("do the thing")
	if task.Kind != KindTask || task.Source != "user" {
		t.Errorf("unexpected task message: kind=%s source=%s", task.Kind, task.Source)
	}
	if !task.IsTask() {
		t.Error("task message should report IsTask")
	}

	reply := NewReplyMessage("writer", "done")
	if reply.Kind != KindReply || reply.Source != "writer" || reply.Text() != "done" {
		t.Errorf("unexpected reply message: %+v", reply)
	}
	if reply.ID == "" {
		t.Error("messages should receive generated IDs")
	}
}

func TestMessage_TextSkipsNonTextParts(t *testing.T) {
	m := NewToolCallMessage("caller", FunctionCall{Name: "add", Arguments: `{"a":1}`})
	if m.Text() != "" {
		t.Errorf("tool call message should have empty text, got %q", m.Text())
	}

	calls := m.FunctionCalls()
	if len(calls) != 1 || calls[0].Name != "add" {
		t.Fatalf("expected one function call 'add', got %+v", calls)
	}
}

func TestNewToolResultMessage(t *testing.T) {
	m := NewToolResultMessage("runner", FunctionResponse{ID: "c1", Name: "add", Response: "3"}, nil)
	responses := m.FunctionResponses()
	if len(responses) != 1 || responses[0].Response != "3" {
		t.Fatalf("expected one response '3', got %+v", responses)
	}

	failed := NewToolResultMessage("runner", FunctionResponse{ID: "c2", Name: "add"}, errors.New("boom"))
	if failed.FunctionResponses()[0].Error != "boom" {
		t.Error("tool result should carry the execution error")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	var confErr *ConfigurationError
	err := fmt.Errorf("wrap: %w", NewConfigurationError("bad bound %d", 0))
	if !errors.As(err, &confErr) {
		t.Fatal("expected errors.As to find ConfigurationError")
	}

	cancelled := &CancelledError{Err: context.Canceled}
	if !errors.Is(cancelled, context.Canceled) {
		t.Error("CancelledError should unwrap to context.Canceled")
	}

	capErr := &CapabilityError{Agent: "writer", Err: errors.New("api down")}
	if capErr.Error() == "" || errors.Unwrap(capErr) == nil {
		t.Error("CapabilityError should describe and unwrap its cause")
	}

	stalled := &StalledError{Rounds: 16}
	if stalled.Error() == "" {
		t.Error("StalledError should describe itself")
	}
}
