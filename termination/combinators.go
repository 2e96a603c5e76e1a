package termination

import (
	"strings"

	"github.com/hupe1980/agentteam/core"
)

// orCondition is satisfied when any child is satisfied.
type orCondition struct {
	children []Condition
}

// Or composes conditions into a disjunction. Every child is evaluated on
// every call (no short-circuiting) so each child's bookkeeping stays in sync
// with the conversation.
func Or(children ...Condition) Condition {
	return &orCondition{children: children}
}

// Evaluate implements Condition.
func (o *orCondition) Evaluate(suffix []core.Message) bool {
	satisfied := false
	for _, c := range o.children {
		if c.Evaluate(suffix) {
			satisfied = true
		}
	}
	return satisfied
}

// Reason returns the reason of the first satisfied child.
func (o *orCondition) Reason() string {
	for _, c := range o.children {
		if r := c.Reason(); r != "" {
			return r
		}
	}
	return ""
}

// Reset implements Condition.
func (o *orCondition) Reset() {
	for _, c := range o.children {
		c.Reset()
	}
}

// andCondition is satisfied when all children are satisfied.
type andCondition struct {
	children []Condition
}

// And composes conditions into a conjunction. Children latch individually,
// so the conjunction fires once the last outstanding child fires, regardless
// of evaluation order.
func And(children ...Condition) Condition {
	return &andCondition{children: children}
}

// Evaluate implements Condition.
func (a *andCondition) Evaluate(suffix []core.Message) bool {
	satisfied := true
	for _, c := range a.children {
		if !c.Evaluate(suffix) {
			satisfied = false
		}
	}
	return satisfied && len(a.children) > 0
}

// Reason joins the reasons of all satisfied children.
func (a *andCondition) Reason() string {
	var reasons []string
	for _, c := range a.children {
		if r := c.Reason(); r != "" {
			reasons = append(reasons, r)
		}
	}
	return strings.Join(reasons, ", ")
}

// Reset implements Condition.
func (a *andCondition) Reset() {
	for _, c := range a.children {
		c.Reset()
	}
}
