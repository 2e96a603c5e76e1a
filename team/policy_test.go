package team

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentteam/core"
	"github.com/hupe1980/agentteam/termination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster(names ...string) []core.Agent {
	out := make([]core.Agent, len(names))
	for i, n := range names {
		out[i] = &scriptedAgent{name: n}
	}
	return out
}

func TestRoundRobin_WrapsAroundRoster(t *testing.T) {
	rr := NewRoundRobin()
	agents := roster("a", "b", "c")

	want := []string{"a", "b", "c", "a", "b"}
	for i, name := range want {
		picked, err := rr.SelectNext(context.Background(), core.NewContextView(nil), agents)
		require.NoError(t, err)
		assert.Equal(t, name, picked.Name(), "pick %d", i)
	}
}

func TestRoundRobin_Reset(t *testing.T) {
	rr := NewRoundRobin()
	agents := roster("a", "b")

	first, err := rr.SelectNext(context.Background(), core.NewContextView(nil), agents)
	require.NoError(t, err)
	require.Equal(t, "a", first.Name())

	rr.Reset()

	again, err := rr.SelectNext(context.Background(), core.NewContextView(nil), agents)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Name(), "reset rewinds to the first agent")
}

func TestSelectorPolicy_PicksNamedAgent(t *testing.T) {
	policy := NewSelectorPolicy(SelectorFunc(
		func(_ context.Context, _ *core.ContextView, _ []core.AgentInfo) (string, error) {
			return "critic", nil
		},
	))

	picked, err := policy.SelectNext(context.Background(), core.NewContextView(nil), roster("writer", "critic"))
	require.NoError(t, err)
	assert.Equal(t, "critic", picked.Name())
}

func TestSelectorPolicy_AbstentionFallsBackToRotation(t *testing.T) {
	policy := NewSelectorPolicy(SelectorFunc(
		func(_ context.Context, _ *core.ContextView, _ []core.AgentInfo) (string, error) {
			return "", nil
		},
	))
	agents := roster("writer", "critic")

	first, err := policy.SelectNext(context.Background(), core.NewContextView(nil), agents)
	require.NoError(t, err)
	second, err := policy.SelectNext(context.Background(), core.NewContextView(nil), agents)
	require.NoError(t, err)

	assert.Equal(t, "writer", first.Name())
	assert.Equal(t, "critic", second.Name(), "the fallback rotation advances per fallback turn")
}

func TestSelectorPolicy_UnknownNameFallsBack(t *testing.T) {
	policy := NewSelectorPolicy(SelectorFunc(
		func(_ context.Context, _ *core.ContextView, _ []core.AgentInfo) (string, error) {
			return "nobody", nil
		},
	))

	picked, err := policy.SelectNext(context.Background(), core.NewContextView(nil), roster("writer", "critic"))
	require.NoError(t, err)
	assert.Equal(t, "writer", picked.Name())
}

func TestSelectorPolicy_ErrorPropagates(t *testing.T) {
	boom := errors.New("model unavailable")
	policy := NewSelectorPolicy(SelectorFunc(
		func(_ context.Context, _ *core.ContextView, _ []core.AgentInfo) (string, error) {
			return "", boom
		},
	))

	_, err := policy.SelectNext(context.Background(), core.NewContextView(nil), roster("writer"))
	assert.ErrorIs(t, err, boom)
}

func TestSelectorPolicy_SeesCandidateDescriptions(t *testing.T) {
	var seen []core.AgentInfo
	policy := NewSelectorPolicy(SelectorFunc(
		func(_ context.Context, _ *core.ContextView, candidates []core.AgentInfo) (string, error) {
			seen = candidates
			return "", nil
		},
	))

	_, err := policy.SelectNext(context.Background(), core.NewContextView(nil), roster("writer", "critic"))
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "writer", seen[0].Name)
	assert.NotEmpty(t, seen[0].Description)
}

func TestRun_SelectorDrivenTeam(t *testing.T) {
	writer := &scriptedAgent{name: "writer", replies: []string{"draft"}}
	critic := &scriptedAgent{name: "critic", replies: []string{"APPROVE"}}

	// Alternate explicitly: critic reviews right after the writer speaks.
	selector := SelectorFunc(
		func(_ context.Context, view *core.ContextView, _ []core.AgentInfo) (string, error) {
			last, ok := view.Last()
			if ok && last.Source == "writer" {
				return "critic", nil
			}
			return "writer", nil
		},
	)

	tm, err := New(
		[]core.Agent{writer, critic},
		WithSelector(selector),
		WithTermination(termination.NewTextMention("APPROVE")),
	)
	require.NoError(t, err)

	result, err := tm.Run(context.Background(), "write a tagline")
	require.NoError(t, err)

	assert.Equal(t, []string{"user", "writer", "critic"}, sources(result.Messages))
	assert.Equal(t, "Text 'APPROVE' mentioned", result.StopReason)
}
