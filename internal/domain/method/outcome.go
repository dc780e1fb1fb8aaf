// Package method defines installation method descriptors, their attempt
// outcomes, and the ranked registry the orchestrator walks.
package method

import "time"

// Status is the result classification of one method attempt.
type Status string

const (
	// StatusSucceeded means the method installed the agent.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the method ran and did not install the agent.
	StatusFailed Status = "failed"
	// StatusSkippedPrecondition means the method was never executed because
	// its precondition did not hold.
	StatusSkippedPrecondition Status = "skipped-precondition"
	// StatusCancelled means the attempt was aborted by external
	// cancellation.
	StatusCancelled Status = "cancelled"
)

// String returns the status label.
func (s Status) String() string {
	return string(s)
}

// Outcome captures the result of attempting a single method. Outcomes are
// built by the executor and consumed immediately by the orchestrator.
type Outcome struct {
	method      string
	status      Status
	message     string
	remediation string
	duration    time.Duration
}

// NewOutcome creates an Outcome for the named method.
func NewOutcome(method string, status Status, message string) Outcome {
	return Outcome{
		method:  method,
		status:  status,
		message: message,
	}
}

// Method returns the name of the attempted method.
func (o Outcome) Method() string {
	return o.method
}

// Status returns the attempt classification.
func (o Outcome) Status() Status {
	return o.status
}

// Message returns the diagnostic text captured for the attempt.
func (o Outcome) Message() string {
	return o.message
}

// Remediation returns the suggested next step, if any.
func (o Outcome) Remediation() string {
	return o.remediation
}

// Duration returns how long the attempt ran.
func (o Outcome) Duration() time.Duration {
	return o.duration
}

// Succeeded reports whether the attempt installed the agent.
func (o Outcome) Succeeded() bool {
	return o.status == StatusSucceeded
}

// Skipped reports whether the method was gated out by its precondition.
func (o Outcome) Skipped() bool {
	return o.status == StatusSkippedPrecondition
}

// WithRemediation returns a copy with remediation set.
func (o Outcome) WithRemediation(text string) Outcome {
	o.remediation = text
	return o
}

// WithDuration returns a copy with duration set.
func (o Outcome) WithDuration(d time.Duration) Outcome {
	o.duration = d
	return o
}
