package termination

import "github.com/hupe1980/agentteam/core"

// Condition is a node in a termination expression tree.
//
// Contract:
//   - Evaluate receives the suffix of the conversation appended since the
//     previous Evaluate (or Reset). The scheduler maintains that discipline,
//     so a message that predates the last reset is never seen again and
//     cannot re-trigger a condition.
//   - Once Evaluate has returned true the condition stays satisfied for the
//     rest of the run; only Reset rearms it.
//   - Reason returns a human-readable description of what fired. It is only
//     meaningful once the condition is satisfied.
//   - Evaluate must be free of side effects beyond the condition's own
//     bookkeeping; combinators rely on being able to evaluate every child.
//   - Evaluate is called from a single goroutine (the scheduler loop);
//     implementations accepting out-of-band inputs (see External) must guard
//     that state themselves.
type Condition interface {
	Evaluate(suffix []core.Message) bool
	Reason() string
	Reset()
}

// latch carries the shared satisfied/reason state of a leaf condition.
type latch struct {
	satisfied bool
	reason    string
}

func (l *latch) fire(reason string) {
	l.satisfied = true
	l.reason = reason
}

// Reason returns the description recorded when the condition fired.
func (l *latch) Reason() string { return l.reason }

func (l *latch) reset() {
	l.satisfied = false
	l.reason = ""
}
