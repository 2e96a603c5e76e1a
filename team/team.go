package team

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentteam/core"
	"github.com/hupe1980/agentteam/logging"
	"github.com/hupe1980/agentteam/termination"
)

// maxStalledRounds is the hard safety ceiling on consecutive turns with zero
// context growth. A run that crosses it can never satisfy a content-driven
// termination condition and is aborted with a StalledError instead of
// spinning forever.
const maxStalledRounds = 16

// Options holds configuration overrides passed to New().
type Options struct {
	// Termination is the composed stop condition evaluated after each turn.
	// Optional if MaxTurns is set.
	Termination termination.Condition
	// MaxTurns bounds the number of turns per run, independent of the
	// termination tree. 0 means unbounded; required if Termination is nil.
	MaxTurns int
	// Policy selects the next speaker. Defaults to round-robin rotation.
	Policy SelectionPolicy
	// StreamBufferSize sets channel buffering for RunStream.
	StreamBufferSize int
	// Logger receives structured scheduler diagnostics.
	Logger logging.Logger
}

// WithTermination sets the composed termination condition.
func WithTermination(cond termination.Condition) func(o *Options) {
	return func(o *Options) { o.Termination = cond }
}

// WithMaxTurns bounds the number of turns per run.
func WithMaxTurns(n int) func(o *Options) {
	return func(o *Options) { o.MaxTurns = n }
}

// WithPolicy overrides the speaker selection policy.
func WithPolicy(p SelectionPolicy) func(o *Options) {
	return func(o *Options) { o.Policy = p }
}

// WithSelector is shorthand for WithPolicy(NewSelectorPolicy(selector)).
func WithSelector(selector Selector) func(o *Options) {
	return func(o *Options) { o.Policy = NewSelectorPolicy(selector) }
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Team schedules turns over a fixed agent roster sharing one conversation.
//
// A Team instance drives at most one run at a time; starting a second run
// while one is in flight fails. Independent concurrent runs require separate
// Team instances, which may share agent capabilities as long as those hold no
// per-run mutable state (conversational state belongs in the shared context).
//
// The ConversationContext lives for the Team's lifetime: finishing a run and
// starting the next without Reset continues the conversation with the full
// prior history visible, mirroring a resumed group chat. Reset clears the
// history, rewinds the selection policy and rearms the termination tree.
type Team struct {
	agents   []core.Agent
	policy   SelectionPolicy
	cond     termination.Condition
	maxTurns int
	bufSize  int
	logger   logging.Logger

	convo *core.ConversationContext

	mu      sync.Mutex
	running bool
}

// New constructs a Team over the given roster with optional overrides.
//
// Construction fails with a ConfigurationError for an empty roster, empty or
// duplicate agent names, a negative turn bound, or a setup with neither a
// termination condition nor a turn bound (which could never stop).
func New(agents []core.Agent, optFns ...func(o *Options)) (*Team, error) {
	opts := Options{
		Policy:           NewRoundRobin(),
		StreamBufferSize: 16,
		Logger:           logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if len(agents) == 0 {
		return nil, core.NewConfigurationError("roster must not be empty")
	}

	seen := make(map[string]struct{}, len(agents))
	for _, a := range agents {
		name := a.Name()
		if name == "" {
			return nil, core.NewConfigurationError("agent name must not be empty")
		}
		if _, dup := seen[name]; dup {
			return nil, core.NewConfigurationError("duplicate agent name %q in roster", name)
		}
		seen[name] = struct{}{}
	}

	if opts.MaxTurns < 0 {
		return nil, core.NewConfigurationError("max turns must be >= 0, got %d", opts.MaxTurns)
	}

	if opts.Termination == nil && opts.MaxTurns == 0 {
		return nil, core.NewConfigurationError("a termination condition or a turn bound is required")
	}

	roster := make([]core.Agent, len(agents))
	copy(roster, agents)

	return &Team{
		agents:   roster,
		policy:   opts.Policy,
		cond:     opts.Termination,
		maxTurns: opts.MaxTurns,
		bufSize:  opts.StreamBufferSize,
		logger:   opts.Logger,
		convo:    core.NewConversationContext(),
	}, nil
}

// Run executes the task to completion and blocks until the run stops.
//
// On success the returned TaskResult carries the full transcript and the
// reason the run stopped. On failure the error is typed (CapabilityError,
// CancelledError, StalledError) and the returned result still carries the
// transcript recorded before the failing turn, with an empty stop reason,
// so callers can diagnose partial runs.
func (t *Team) Run(ctx context.Context, task string) (*TaskResult, error) {
	return t.execute(ctx, task, nil)
}

// RunStream executes the task and returns a lazy, finite, single-pass
// sequence of stream events: one MessageEvent per appended message, in
// sequence-number order, followed by exactly one terminal ResultEvent or
// ErrorEvent. The channel is closed after the terminal event. The sequence
// is not restartable; call Reset and invoke again for a fresh run.
//
// Every recorded message and the terminal event are delivered with blocking
// sends, so a slow consumer never observes a truncated stream — on
// cancellation the events recorded before the boundary still arrive,
// followed by the terminal ErrorEvent. Consumers must therefore drain the
// channel until it is closed; abandoning it mid-stream leaks the producing
// goroutine.
func (t *Team) RunStream(ctx context.Context, task string) <-chan StreamEvent {
	out := make(chan StreamEvent, t.bufSize)

	emit := func(ev StreamEvent) {
		out <- ev
	}

	go func() {
		defer close(out)

		result, err := t.execute(ctx, task, emit)
		if err != nil {
			out <- ErrorEvent{Err: err}
			return
		}
		out <- ResultEvent{Result: result}
	}()

	return out
}

// Reset clears the conversation, rewinds the selection policy and rearms the
// termination tree so the next run starts fresh at sequence number 1. It
// fails if a run is in flight.
func (t *Team) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return errors.New("cannot reset while a run is in progress")
	}
	t.convo.Reset()
	t.policy.Reset()
	if t.cond != nil {
		t.cond.Reset()
	}
	return nil
}

// Messages returns a snapshot of the shared conversation. Useful for
// diagnosis after a failed run; during a run it may observe a partial state.
func (t *Team) Messages() []core.Message { return t.convo.Snapshot() }

// runMetrics is the optional logger capability for per-turn and per-run
// timing records. logging.TeamLogger implements it; plain Logger
// implementations simply skip the timing records.
type runMetrics interface {
	LogTurn(agent string, messages int, dur time.Duration)
	LogRun(turns int, dur time.Duration, stopReason string, err error)
}

// execute drives the turn loop. emit may be nil (blocking mode). Exactly one
// of result/error describes the terminal outcome; on error the result still
// carries the partial transcript.
func (t *Team) execute(ctx context.Context, task string, emit func(StreamEvent)) (result *TaskResult, err error) {
	if err := t.begin(); err != nil {
		return nil, err
	}
	defer t.end()

	turns := 0
	runStart := time.Now()
	metrics, _ := t.logger.(runMetrics)
	if metrics != nil {
		defer func() {
			reason := ""
			if result != nil {
				reason = result.StopReason
			}
			metrics.LogRun(turns, time.Since(runStart), reason, err)
		}()
	}

	// The condition tree is rearmed for every run, so a condition satisfied
	// in a previous run cannot stop this one immediately and stale history
	// carried forward deliberately (no Reset between runs) is never re-fed.
	if t.cond != nil {
		defer t.cond.Reset()
	}

	// condCursor marks the boundary between history this run's condition
	// evaluations have consumed and fresh appends.
	condCursor := t.convo.Len()

	seed := t.convo.Append(core.NewTaskMessage(task))[0]
	t.logger.Debug("run started", "task_seq", seed.Seq, "roster_size", len(t.agents))
	if emit != nil {
		emit(MessageEvent{Message: seed})
	}

	stalled := 0

	for {
		// Cancellation is cooperative and observed here, at the turn
		// boundary, so a completed turn is always fully recorded.
		if err := ctx.Err(); err != nil {
			t.logger.Info("run cancelled", "turns", turns)
			return t.partialResult(), &core.CancelledError{Err: err}
		}

		if t.maxTurns > 0 && turns >= t.maxTurns {
			reason := fmt.Sprintf("Maximum number of turns %d reached", t.maxTurns)
			t.logger.Info("run finished", "stop_reason", reason, "turns", turns)
			return &TaskResult{Messages: t.convo.Snapshot(), StopReason: reason}, nil
		}

		speaker, err := t.policy.SelectNext(ctx, t.convo.View(), t.agents)
		if err != nil {
			return t.partialResult(), err
		}

		// The only suspension point: the agent may block on network or
		// heavy computation. No lock on the conversation is held here.
		turnStart := time.Now()
		produced, err := speaker.Produce(ctx, t.convo.View())
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return t.partialResult(), &core.CancelledError{Err: err}
			}
			t.logger.Error("turn failed", "agent", speaker.Name(), "error", err)
			return t.partialResult(), &core.CapabilityError{Agent: speaker.Name(), Err: err}
		}
		turns++

		appended := t.convo.Append(produced...)
		t.logger.Debug("turn completed", "agent", speaker.Name(), "messages", len(appended), "turn", turns)
		if metrics != nil {
			metrics.LogTurn(speaker.Name(), len(appended), time.Since(turnStart))
		}
		if emit != nil {
			for _, m := range appended {
				emit(MessageEvent{Message: m})
			}
		}

		// A turn without output is legal, but a run that stops growing can
		// never satisfy a content-driven condition again.
		if len(appended) == 0 {
			stalled++
			if stalled >= maxStalledRounds {
				t.logger.Error("run stalled", "rounds", stalled)
				return t.partialResult(), &core.StalledError{Rounds: stalled}
			}
		} else {
			stalled = 0
		}

		if err := ctx.Err(); err != nil {
			t.logger.Info("run cancelled", "turns", turns)
			return t.partialResult(), &core.CancelledError{Err: err}
		}

		// Termination is evaluated once per turn, over the suffix appended
		// since the previous evaluation, after the whole turn is recorded.
		if t.cond != nil {
			snapshot := t.convo.Snapshot()
			suffix := snapshot[condCursor:]
			condCursor = len(snapshot)
			if t.cond.Evaluate(suffix) {
				reason := t.cond.Reason()
				t.logger.Info("run finished", "stop_reason", reason, "turns", turns)
				return &TaskResult{Messages: snapshot, StopReason: reason}, nil
			}
		}
	}
}

// partialResult packages the transcript recorded so far for error payloads.
func (t *Team) partialResult() *TaskResult {
	return &TaskResult{Messages: t.convo.Snapshot()}
}

func (t *Team) begin() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return errors.New("a run is already in progress on this team")
	}
	t.running = true
	return nil
}

func (t *Team) end() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}
