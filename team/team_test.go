package team

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/agentteam/core"
	"github.com/hupe1980/agentteam/logging"
	"github.com/hupe1980/agentteam/termination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ runMetrics = (*logging.TeamLogger)(nil)

// scriptedAgent replays a fixed list of replies, one per turn, falling back to
// a generated line once the script is exhausted. errOn makes the n-th call
// fail with err; hook runs at the start of each call.
type scriptedAgent struct {
	name    string
	replies []string
	errOn   int
	err     error
	hook    func(call int)

	calls int
}

func (a *scriptedAgent) Name() string        { return a.name }
func (a *scriptedAgent) Description() string { return "scripted agent " + a.name }

func (a *scriptedAgent) Produce(_ context.Context, _ *core.ContextView) ([]core.Message, error) {
	a.calls++
	if a.hook != nil {
		a.hook(a.calls)
	}
	if a.errOn != 0 && a.calls == a.errOn {
		return nil, a.err
	}
	text := fmt.Sprintf("%s turn %d", a.name, a.calls)
	if a.calls <= len(a.replies) {
		text = a.replies[a.calls-1]
	}
	return []core.Message{core.NewReplyMessage(a.name, text)}, nil
}

// burstAgent emits several messages in a single turn, optionally firing a
// hook before producing.
type burstAgent struct {
	name  string
	count int
	hook  func()
}

func (a *burstAgent) Name() string        { return a.name }
func (a *burstAgent) Description() string { return "burst agent " + a.name }
func (a *burstAgent) Produce(_ context.Context, _ *core.ContextView) ([]core.Message, error) {
	if a.hook != nil {
		a.hook()
	}
	msgs := make([]core.Message, a.count)
	for i := range msgs {
		msgs[i] = core.NewReplyMessage(a.name, fmt.Sprintf("part %d", i+1))
	}
	return msgs, nil
}

// silentAgent takes its turn without saying anything.
type silentAgent struct{ name string }

func (a *silentAgent) Name() string        { return a.name }
func (a *silentAgent) Description() string { return "silent agent " + a.name }
func (a *silentAgent) Produce(_ context.Context, _ *core.ContextView) ([]core.Message, error) {
	return nil, nil
}

func sources(msgs []core.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Source
	}
	return out
}

func mustMaxTurns(t *testing.T, n int) termination.Condition {
	t.Helper()
	cond, err := termination.NewMaxTurns(n)
	require.NoError(t, err)
	return cond
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		agents []core.Agent
		optFns []func(o *Options)
	}{
		{
			name:   "empty roster",
			agents: nil,
			optFns: []func(o *Options){WithMaxTurns(1)},
		},
		{
			name:   "empty agent name",
			agents: []core.Agent{&scriptedAgent{name: ""}},
			optFns: []func(o *Options){WithMaxTurns(1)},
		},
		{
			name:   "duplicate agent names",
			agents: []core.Agent{&scriptedAgent{name: "a"}, &scriptedAgent{name: "a"}},
			optFns: []func(o *Options){WithMaxTurns(1)},
		},
		{
			name:   "negative turn bound",
			agents: []core.Agent{&scriptedAgent{name: "a"}},
			optFns: []func(o *Options){WithMaxTurns(-1)},
		},
		{
			name:   "no termination and no turn bound",
			agents: []core.Agent{&scriptedAgent{name: "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.agents, tt.optFns...)
			var confErr *core.ConfigurationError
			assert.ErrorAs(t, err, &confErr)
		})
	}
}

func TestRun_RoundRobinOrder(t *testing.T) {
	a := &scriptedAgent{name: "a"}
	b := &scriptedAgent{name: "b"}
	c := &scriptedAgent{name: "c"}

	tm, err := New([]core.Agent{a, b, c}, WithTermination(mustMaxTurns(t, 6)))
	require.NoError(t, err)

	result, err := tm.Run(context.Background(), "go")
	require.NoError(t, err)

	assert.Equal(t, []string{"user", "a", "b", "c", "a", "b", "c"}, sources(result.Messages))
	assert.Equal(t, "Maximum number of turns 6 reached", result.StopReason)
}

func TestRun_TextMentionStopsAfterApproval(t *testing.T) {
	writer := &scriptedAgent{name: "writer", replies: []string{"draft v1", "draft v2"}}
	critic := &scriptedAgent{name: "critic", replies: []string{"needs work", "APPROVE"}}

	tm, err := New(
		[]core.Agent{writer, critic},
		WithTermination(termination.NewTextMention("APPROVE")),
	)
	require.NoError(t, err)

	result, err := tm.Run(context.Background(), "write a tagline")
	require.NoError(t, err)

	require.Len(t, result.Messages, 5)
	assert.Equal(t, []string{"user", "writer", "critic", "writer", "critic"}, sources(result.Messages))
	assert.Equal(t, "Text 'APPROVE' mentioned", result.StopReason)

	for i, m := range result.Messages {
		assert.Equal(t, i+1, m.Seq, "messages carry contiguous sequence numbers")
	}
}

func TestRun_TeamTurnBound(t *testing.T) {
	a := &scriptedAgent{name: "a"}

	tm, err := New([]core.Agent{a}, WithMaxTurns(3))
	require.NoError(t, err)

	result, err := tm.Run(context.Background(), "go")
	require.NoError(t, err)

	assert.Len(t, result.Messages, 4)
	assert.Equal(t, "Maximum number of turns 3 reached", result.StopReason)
	assert.Equal(t, 3, a.calls)
}

func TestRun_SilentTurnsEventuallyStall(t *testing.T) {
	tm, err := New(
		[]core.Agent{&silentAgent{name: "mute"}},
		WithTermination(termination.NewTextMention("NEVER")),
	)
	require.NoError(t, err)

	result, err := tm.Run(context.Background(), "go")

	var stalled *core.StalledError
	require.ErrorAs(t, err, &stalled)
	assert.Equal(t, maxStalledRounds, stalled.Rounds)

	// Partial result: only the task ever made it into the conversation.
	require.NotNil(t, result)
	assert.Len(t, result.Messages, 1)
	assert.Empty(t, result.StopReason)
}

func TestRun_CapabilityErrorKeepsPartialTranscript(t *testing.T) {
	writer := &scriptedAgent{name: "writer"}
	critic := &scriptedAgent{name: "critic", errOn: 1, err: errors.New("api down")}

	tm, err := New(
		[]core.Agent{writer, critic},
		WithTermination(termination.NewTextMention("APPROVE")),
	)
	require.NoError(t, err)

	result, err := tm.Run(context.Background(), "go")

	var capErr *core.CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "critic", capErr.Agent)

	// The task and the successful first turn survive in the error payload.
	require.NotNil(t, result)
	assert.Equal(t, []string{"user", "writer"}, sources(result.Messages))
	assert.Empty(t, result.StopReason)
}

func TestRun_AgentContextErrorMapsToCancelled(t *testing.T) {
	failing := &scriptedAgent{name: "a", errOn: 1, err: context.Canceled}

	tm, err := New([]core.Agent{failing}, WithMaxTurns(5))
	require.NoError(t, err)

	_, err = tm.Run(context.Background(), "go")

	var cancelled *core.CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_CancellationBetweenTurns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	writer := &scriptedAgent{name: "writer"}
	// The critic cancels the run while taking its first turn; that turn still
	// completes and is recorded before the boundary check fires.
	critic := &scriptedAgent{name: "critic", hook: func(int) { cancel() }}

	tm, err := New(
		[]core.Agent{writer, critic},
		WithTermination(termination.NewTextMention("NEVER")),
	)
	require.NoError(t, err)

	result, err := tm.Run(ctx, "go")

	var cancelled *core.CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.ErrorIs(t, err, context.Canceled)

	// Exactly the turns completed before cancellation are recorded.
	require.NotNil(t, result)
	assert.Equal(t, []string{"user", "writer", "critic"}, sources(result.Messages))
}

func TestRun_ExternalTermination(t *testing.T) {
	external := termination.NewExternal()
	external.Set()

	tm, err := New([]core.Agent{&scriptedAgent{name: "a"}}, WithTermination(external))
	require.NoError(t, err)

	result, err := tm.Run(context.Background(), "go")
	require.NoError(t, err, "external termination is a normal completion")

	assert.Equal(t, "External termination requested", result.StopReason)
	assert.Len(t, result.Messages, 2, "the first turn completes before the condition is checked")
}

func TestRun_ResetStartsFresh(t *testing.T) {
	agent := &scriptedAgent{name: "a", replies: []string{"DONE", "DONE"}}

	tm, err := New([]core.Agent{agent}, WithTermination(termination.NewTextMention("DONE")))
	require.NoError(t, err)

	first, err := tm.Run(context.Background(), "first")
	require.NoError(t, err)
	require.Len(t, first.Messages, 2)

	require.NoError(t, tm.Reset())

	second, err := tm.Run(context.Background(), "second")
	require.NoError(t, err)

	require.Len(t, second.Messages, 2)
	assert.Equal(t, 1, second.Messages[0].Seq, "sequence restarts after reset")
	assert.Equal(t, "second", second.Messages[0].Text())
}

func TestRun_ContinuationWithoutReset(t *testing.T) {
	agent := &scriptedAgent{name: "a", replies: []string{"APPROVE", "APPROVE again"}}

	tm, err := New([]core.Agent{agent}, WithTermination(termination.NewTextMention("APPROVE")))
	require.NoError(t, err)

	first, err := tm.Run(context.Background(), "first")
	require.NoError(t, err)
	require.Len(t, first.Messages, 2)

	// No Reset: the next run continues the conversation. The condition is
	// rearmed between runs, so the old APPROVE does not stop the new run
	// before its first turn.
	second, err := tm.Run(context.Background(), "second")
	require.NoError(t, err)

	require.Len(t, second.Messages, 4, "continuation carries the prior history")
	assert.Equal(t, 4, second.Messages[3].Seq)
	assert.Equal(t, "Text 'APPROVE' mentioned", second.StopReason)
}

func TestRun_RejectsConcurrentRuns(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocker := &scriptedAgent{name: "a", hook: func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	}}

	tm, err := New([]core.Agent{blocker}, WithMaxTurns(1))
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = tm.Run(context.Background(), "long running")
	}()

	<-started

	_, err = tm.Run(context.Background(), "overlapping")
	require.Error(t, err)
	assert.ErrorContains(t, err, "already in progress")

	assert.Error(t, tm.Reset(), "reset is refused while a run is in flight")

	close(release)
	wg.Wait()

	assert.NoError(t, tm.Reset())
}

func TestRunStream_MessagesThenResult(t *testing.T) {
	writer := &scriptedAgent{name: "writer", replies: []string{"draft"}}
	critic := &scriptedAgent{name: "critic", replies: []string{"APPROVE"}}

	tm, err := New(
		[]core.Agent{writer, critic},
		WithTermination(termination.NewTextMention("APPROVE")),
	)
	require.NoError(t, err)

	var msgs []core.Message
	var result *TaskResult
	for ev := range tm.RunStream(context.Background(), "go") {
		switch e := ev.(type) {
		case MessageEvent:
			require.Nil(t, result, "no message may follow the terminal event")
			msgs = append(msgs, e.Message)
		case ResultEvent:
			result = e.Result
		case ErrorEvent:
			t.Fatalf("unexpected error event: %v", e.Err)
		}
	}

	require.NotNil(t, result, "stream ends with a terminal result")
	assert.Equal(t, "Text 'APPROVE' mentioned", result.StopReason)

	require.Len(t, msgs, 3)
	for i, m := range msgs {
		assert.Equal(t, i+1, m.Seq, "events are delivered in sequence order")
	}
	assert.Equal(t, sources(result.Messages), sources(msgs))
}

func TestRunStream_ErrorEventOnFailure(t *testing.T) {
	failing := &scriptedAgent{name: "a", errOn: 1, err: errors.New("boom")}

	tm, err := New([]core.Agent{failing}, WithMaxTurns(3))
	require.NoError(t, err)

	var terminal error
	var msgCount int
	for ev := range tm.RunStream(context.Background(), "go") {
		switch e := ev.(type) {
		case MessageEvent:
			msgCount++
		case ErrorEvent:
			terminal = e.Err
		case ResultEvent:
			t.Fatal("failed run must not produce a result event")
		}
	}

	var capErr *core.CapabilityError
	require.ErrorAs(t, terminal, &capErr)
	assert.Equal(t, 1, msgCount, "the task was delivered before the failure")
}

func TestRunStream_SlowConsumerSeesFullCancelledStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// One turn floods a deliberately tiny buffer while the run is cancelled.
	burst := &burstAgent{name: "burst", count: 5, hook: cancel}

	tm, err := New(
		[]core.Agent{burst},
		WithTermination(termination.NewTextMention("NEVER")),
		func(o *Options) { o.StreamBufferSize = 2 },
	)
	require.NoError(t, err)

	stream := tm.RunStream(ctx, "go")

	// Let the producer run up against the full buffer before draining, as a
	// slow consumer would.
	time.Sleep(50 * time.Millisecond)

	var msgs int
	var terminal error
	sawTerminal := false
	for ev := range stream {
		switch e := ev.(type) {
		case MessageEvent:
			require.False(t, sawTerminal, "no message may follow the terminal event")
			msgs++
		case ErrorEvent:
			sawTerminal = true
			terminal = e.Err
		case ResultEvent:
			t.Fatal("cancelled run must not produce a result event")
		}
	}

	require.True(t, sawTerminal, "stream must end with a terminal item")
	var cancelled *core.CancelledError
	require.ErrorAs(t, terminal, &cancelled)

	// Every message the context recorded reached the stream before the
	// terminal item: task plus the complete five-message turn.
	assert.Equal(t, len(tm.Messages()), msgs)
	assert.Equal(t, 6, msgs)
}

// metricsLogger records the timing capability calls the scheduler makes.
type metricsLogger struct {
	logging.NoOpLogger

	mu        sync.Mutex
	turns     []string
	runs      int
	runTurns  int
	runReason string
	runErr    error
}

func (m *metricsLogger) LogTurn(agent string, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, agent)
}

func (m *metricsLogger) LogRun(turns int, _ time.Duration, stopReason string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	m.runTurns = turns
	m.runReason = stopReason
	m.runErr = err
}

func TestRun_RecordsTurnAndRunMetrics(t *testing.T) {
	ml := &metricsLogger{}
	writer := &scriptedAgent{name: "writer", replies: []string{"draft"}}
	critic := &scriptedAgent{name: "critic", replies: []string{"APPROVE"}}

	tm, err := New(
		[]core.Agent{writer, critic},
		WithTermination(termination.NewTextMention("APPROVE")),
		WithLogger(ml),
	)
	require.NoError(t, err)

	_, err = tm.Run(context.Background(), "go")
	require.NoError(t, err)

	assert.Equal(t, []string{"writer", "critic"}, ml.turns)
	assert.Equal(t, 1, ml.runs)
	assert.Equal(t, 2, ml.runTurns)
	assert.Equal(t, "Text 'APPROVE' mentioned", ml.runReason)
	assert.NoError(t, ml.runErr)
}

func TestRun_RecordsRunMetricsOnFailure(t *testing.T) {
	ml := &metricsLogger{}
	failing := &scriptedAgent{name: "a", errOn: 1, err: errors.New("boom")}

	tm, err := New([]core.Agent{failing}, WithMaxTurns(3), WithLogger(ml))
	require.NoError(t, err)

	_, err = tm.Run(context.Background(), "go")
	require.Error(t, err)

	assert.Equal(t, 1, ml.runs)
	assert.Empty(t, ml.runReason)
	var capErr *core.CapabilityError
	assert.ErrorAs(t, ml.runErr, &capErr)
}

func TestRunStream_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	writer := &scriptedAgent{name: "writer"}
	critic := &scriptedAgent{name: "critic", hook: func(int) { cancel() }}

	tm, err := New(
		[]core.Agent{writer, critic},
		WithTermination(termination.NewTextMention("NEVER")),
	)
	require.NoError(t, err)

	var terminal error
	for ev := range tm.RunStream(ctx, "go") {
		if e, ok := ev.(ErrorEvent); ok {
			terminal = e.Err
		}
	}

	var cancelled *core.CancelledError
	require.ErrorAs(t, terminal, &cancelled)

	// The transcript recorded before cancellation stays inspectable.
	assert.Equal(t, []string{"user", "writer", "critic"}, sources(tm.Messages()))
}
