// Package orchestrator drives the installation run: probe once, walk the
// ranked methods, execute the first eligible one, and fall back on failure
// until success or exhaustion.
package orchestrator

import (
	"github.com/felixgeelhaar/agentstrap/internal/domain/method"
	"github.com/felixgeelhaar/agentstrap/internal/domain/probe"
	"github.com/google/uuid"
)

// Overall is the terminal classification of a whole run.
type Overall string

const (
	// OverallInstalled means exactly one method succeeded.
	OverallInstalled Overall = "installed"
	// OverallFailedAll means every eligible method was attempted and failed.
	OverallFailedAll Overall = "failed-all"
	// OverallCancelled means the run was aborted by external cancellation.
	OverallCancelled Overall = "cancelled"
)

// RunResult is the terminal record of one run: which method won (if any)
// and every outcome in attempt order, skips included.
type RunResult struct {
	runID    string
	overall  Overall
	winner   string
	facts    probe.Facts
	attempts []method.Outcome
}

func newRunResult() *RunResult {
	return &RunResult{runID: uuid.New().String()}
}

// NewRunResult assembles a finished RunResult. Intended for report tooling
// and tests; Run builds its results internally.
func NewRunResult(overall Overall, winner string, attempts []method.Outcome) *RunResult {
	r := newRunResult()
	r.attempts = append(r.attempts, attempts...)
	r.finalize(overall, winner)
	return r
}

func (r *RunResult) record(outcome method.Outcome) {
	r.attempts = append(r.attempts, outcome)
}

func (r *RunResult) finalize(overall Overall, winner string) {
	r.overall = overall
	r.winner = winner
}

// RunID returns the unique identifier of this run.
func (r *RunResult) RunID() string {
	return r.runID
}

// Overall returns the terminal status.
func (r *RunResult) Overall() Overall {
	return r.overall
}

// Winner returns the name of the method that installed the agent, or empty.
func (r *RunResult) Winner() string {
	return r.winner
}

// Facts returns the environment snapshot the run was decided on.
func (r *RunResult) Facts() probe.Facts {
	return r.facts
}

// Attempts returns the outcomes in order. The slice is a copy.
func (r *RunResult) Attempts() []method.Outcome {
	out := make([]method.Outcome, len(r.attempts))
	copy(out, r.attempts)
	return out
}

// LastAttempt returns the final outcome of the run, if any.
func (r *RunResult) LastAttempt() (method.Outcome, bool) {
	if len(r.attempts) == 0 {
		return method.Outcome{}, false
	}
	return r.attempts[len(r.attempts)-1], true
}
