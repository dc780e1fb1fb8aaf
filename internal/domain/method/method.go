package method

import (
	"context"

	"github.com/felixgeelhaar/agentstrap/internal/domain/probe"
)

// Action is the opaque install step a method performs. It receives the
// probed facts read-only and a working directory, and reports free-text
// diagnostic output plus a success/failure signal. Implementations must
// honor context cancellation; the executor bounds them with a deadline.
type Action interface {
	Run(ctx context.Context, facts probe.Facts, workdir string) (output string, err error)
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc func(ctx context.Context, facts probe.Facts, workdir string) (string, error)

// Run implements Action.
func (f ActionFunc) Run(ctx context.Context, facts probe.Facts, workdir string) (string, error) {
	return f(ctx, facts, workdir)
}

// Precondition gates a method on the probed facts. A nil Precondition means
// the method is always eligible.
type Precondition func(facts probe.Facts) bool

// Method is one ranked installation strategy. Methods are registered at
// process start and immutable afterwards.
type Method struct {
	name         string
	rank         int
	summary      string
	remediation  string
	precondition Precondition
	action       Action
}

// New creates a Method.
func New(name string, rank int, action Action) Method {
	return Method{
		name:   name,
		rank:   rank,
		action: action,
	}
}

// Name returns the method identifier.
func (m Method) Name() string {
	return m.name
}

// Rank returns the ordering rank; lower is preferred.
func (m Method) Rank() int {
	return m.rank
}

// Summary returns the one-line description of what the method does.
func (m Method) Summary() string {
	return m.summary
}

// Remediation returns the user guidance attached to a failure of this
// method.
func (m Method) Remediation() string {
	return m.remediation
}

// Action returns the install step.
func (m Method) Action() Action {
	return m.action
}

// Eligible evaluates the precondition against facts. Methods without a
// precondition are always eligible.
func (m Method) Eligible(facts probe.Facts) bool {
	if m.precondition == nil {
		return true
	}
	return m.precondition(facts)
}

// CatchAll reports whether the method has no precondition.
func (m Method) CatchAll() bool {
	return m.precondition == nil
}

// WithSummary returns a copy with the summary set.
func (m Method) WithSummary(text string) Method {
	m.summary = text
	return m
}

// WithRemediation returns a copy with the remediation text set.
func (m Method) WithRemediation(text string) Method {
	m.remediation = text
	return m
}

// WithPrecondition returns a copy gated by the given predicate.
func (m Method) WithPrecondition(p Precondition) Method {
	m.precondition = p
	return m
}
