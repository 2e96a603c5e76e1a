package openai

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/agentteam/core"
	"github.com/hupe1980/agentteam/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_DeliversToReadyConsumer(t *testing.T) {
	out := make(chan model.Response, 1)

	ok := send(context.Background(), out, model.Response{FinishReason: "stop"})

	require.True(t, ok)
	resp := <-out
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestSend_ReturnsOnCancelledRequest(t *testing.T) {
	// A full buffer with no reader models a consumer that stopped draining.
	out := make(chan model.Response, 1)
	out <- model.Response{Partial: true}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan bool, 1)
	go func() {
		done <- send(ctx, out, model.Response{Partial: true})
	}()

	select {
	case ok := <-done:
		assert.False(t, ok, "cancelled sends report non-delivery")
	case <-time.After(time.Second):
		t.Fatal("send blocked on an abandoned consumer")
	}
}

func TestBuildMessages_MapsRolesBySource(t *testing.T) {
	req := model.Request{
		Instructions: "You are writer.",
		Self:         "writer",
		Messages: []core.Message{
			core.NewTaskMessage("write a tagline"),
			core.NewReplyMessage("writer", "Ship it faster."),
			core.NewReplyMessage("critic", "Too vague."),
		},
	}

	messages := buildMessages(req)

	require.Len(t, messages, 4, "system, task, assistant and attributed user turns")
	assert.NotNil(t, messages[0].OfSystem)
	assert.NotNil(t, messages[1].OfUser)
	assert.NotNil(t, messages[2].OfAssistant)
	require.NotNil(t, messages[3].OfUser)
}
