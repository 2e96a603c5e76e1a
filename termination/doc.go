// Package termination provides composable stop conditions for team runs.
//
// A Condition is a stateful predicate over the conversation: after every
// turn the scheduler calls Evaluate with exactly the messages appended since
// the previous evaluation, so conditions accumulate state without rescanning
// history. Once a condition fires it stays satisfied until Reset, and Reason
// reports a human-readable description of what fired.
//
// Leaf conditions:
//   - TextMention: a configured substring appears in a message seen since
//     the last reset
//   - MaxTurns: a bounded number of agent-produced messages was reached
//   - External: an out-of-band caller requested a graceful stop via Set
//
// Conditions compose with Or and And into arbitrary trees:
//
//	maxTurns, _ := termination.NewMaxTurns(10)
//	cond := termination.Or(termination.NewTextMention("APPROVE"), maxTurns)
package termination
