// Package executor runs a single installation method as a bounded,
// supervised step and classifies the result.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/agentstrap/internal/domain/method"
	"github.com/felixgeelhaar/agentstrap/internal/domain/probe"
	"github.com/felixgeelhaar/agentstrap/internal/ports"
)

// Executor supervises method attempts. It never lets a failure escape its
// boundary: every attempt, including one whose action panics, is reduced to
// an Outcome.
type Executor struct {
	logger ports.Logger
}

// New creates an Executor.
func New(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute attempts one method against the probed facts. The precondition is
// checked first; an ineligible method is reported as skipped without running
// its action. The action runs under a deadline of timeout and its combined
// output becomes the outcome message.
func (e *Executor) Execute(ctx context.Context, m method.Method, facts probe.Facts, workdir string, timeout time.Duration) method.Outcome {
	if !m.Eligible(facts) {
		e.logger.Debug(ctx, "method precondition not met", ports.F("method", m.Name()))
		return method.NewOutcome(m.Name(), method.StatusSkippedPrecondition, "precondition not satisfied").
			WithRemediation(m.Remediation())
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.logger.Info(ctx, "attempting method", ports.F("method", m.Name()), ports.F("timeout", timeout))

	start := time.Now()
	output, err := e.runAction(attemptCtx, m, facts, workdir)
	duration := time.Since(start)

	status := classify(ctx, err)
	message := output
	if err != nil && status != method.StatusSucceeded {
		if message != "" {
			message += "\n"
		}
		message += err.Error()
	}

	outcome := method.NewOutcome(m.Name(), status, message).
		WithRemediation(m.Remediation()).
		WithDuration(duration)

	e.logger.Info(ctx, "method attempt finished",
		ports.F("method", m.Name()),
		ports.F("status", outcome.Status()),
		ports.F("duration", duration.Round(time.Millisecond)))
	return outcome
}

// runAction invokes the action, converting a panic into an error so a
// misbehaving collaborator cannot abort the orchestrator.
func (e *Executor) runAction(ctx context.Context, m method.Method, facts probe.Facts, workdir string) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()
	return m.Action().Run(ctx, facts, workdir)
}

// classify maps an action error to an outcome status. Cancellation of the
// parent context is distinguished from an attempt timeout: the former is a
// user abort, the latter an ordinary failure.
func classify(parent context.Context, err error) method.Status {
	if err == nil {
		return method.StatusSucceeded
	}
	if parent.Err() != nil {
		return method.StatusCancelled
	}
	return method.StatusFailed
}
