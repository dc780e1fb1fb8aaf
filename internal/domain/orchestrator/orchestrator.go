package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/agentstrap/internal/domain/config"
	"github.com/felixgeelhaar/agentstrap/internal/domain/method"
	"github.com/felixgeelhaar/agentstrap/internal/domain/probe"
	"github.com/felixgeelhaar/agentstrap/internal/ports"
)

// Machine states. One method is attempted at a time; the machine is strictly
// sequential because methods compete for the install root.
const (
	stateIdle       = "idle"
	stateProbing    = "probing"
	stateSelecting  = "selecting"
	stateAttempting = "attempting"
	stateSucceeded  = "succeeded"
	stateAdvancing  = "advancing"
	stateTerminated = "terminated"
)

// Machine events.
const (
	eventProbe      = "PROBE"
	eventFactsReady = "FACTS_READY"
	eventCandidate  = "CANDIDATE"
	eventAttemptOK  = "ATTEMPT_OK"
	eventFailed     = "ATTEMPT_FAILED"
	eventNext       = "NEXT"
	eventCancel     = "CANCEL"
	eventExhausted  = "EXHAUSTED"
	eventFinish     = "FINISH"
	eventReset      = "RESET"
)

// machineContext is the statekit context for an installation run.
type machineContext struct {
	RunID string
}

// Prober produces the environment snapshot a run is decided on.
type Prober interface {
	Probe(ctx context.Context) probe.Facts
}

// Executor attempts one method and reduces it to an Outcome.
type Executor interface {
	Execute(ctx context.Context, m method.Method, facts probe.Facts, workdir string, timeout time.Duration) method.Outcome
}

// Orchestrator is the fallback engine. Methods are tried strictly in rank
// order, at most once each; a failed method is never retried within a run.
type Orchestrator struct {
	prober   Prober
	registry *method.Registry
	exec     Executor
	cfg      *config.Config
	logger   ports.Logger

	// singleMethod bypasses fallback when set (--method flag).
	singleMethod string
}

// New creates an Orchestrator.
func New(prober Prober, registry *method.Registry, exec Executor, cfg *config.Config, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		prober:   prober,
		registry: registry,
		exec:     exec,
		cfg:      cfg,
		logger:   logger,
	}
}

// WithSingleMethod returns an Orchestrator that attempts only the named
// method, skipping fallback.
func (o *Orchestrator) WithSingleMethod(name string) *Orchestrator {
	clone := *o
	clone.singleMethod = name
	return &clone
}

// buildMachine constructs the run state machine. The machine mirrors the
// run's progress; control flow stays in Run so an interpreter hiccup can
// never stall an install.
func buildMachine(runID string) (*statekit.Interpreter[machineContext], error) {
	machine, err := statekit.NewMachine[machineContext]("agentstrap-install").
		WithInitial(stateIdle).
		WithContext(machineContext{RunID: runID}).
		State(stateIdle).
		On(eventProbe).Target(stateProbing).Done().
		State(stateProbing).
		On(eventFactsReady).Target(stateSelecting).
		On(eventCancel).Target(stateTerminated).Done().
		State(stateSelecting).
		On(eventCandidate).Target(stateAttempting).
		On(eventExhausted).Target(stateTerminated).
		On(eventCancel).Target(stateTerminated).Done().
		State(stateAttempting).
		On(eventAttemptOK).Target(stateSucceeded).
		On(eventFailed).Target(stateAdvancing).
		On(eventCancel).Target(stateTerminated).Done().
		State(stateSucceeded).
		On(eventFinish).Target(stateTerminated).Done().
		State(stateAdvancing).
		On(eventNext).Target(stateSelecting).
		On(eventCancel).Target(stateTerminated).Done().
		State(stateTerminated).
		On(eventReset).Target(stateIdle).Done().
		Build()
	if err != nil {
		return nil, err
	}
	return statekit.NewInterpreter(machine), nil
}

// Run executes one installation run to its terminal outcome. It never
// returns an error: every failure mode is expressed in the RunResult.
func (o *Orchestrator) Run(ctx context.Context) *RunResult {
	result := newRunResult()
	logger := o.logger.With(ports.F("run_id", result.RunID()))

	interp, err := buildMachine(result.RunID())
	if err != nil {
		// Construction can only fail on a malformed machine definition,
		// which is a programming error; degrade to a run without the
		// mirror rather than abort.
		logger.Error(ctx, "state machine construction failed", ports.F("error", err))
		interp = nil
	}
	if interp != nil {
		interp.Start()
		defer interp.Stop()
	}
	send := func(event string) {
		if interp != nil {
			interp.Send(statekit.Event{Type: statekit.EventType(event)})
		}
	}

	send(eventProbe)
	facts := o.prober.Probe(ctx)
	result.facts = facts
	logger.Info(ctx, "environment probed", ports.F("facts", facts.String()))
	send(eventFactsReady)

	workdir, cleanup := o.workdir(ctx, logger)
	defer cleanup()

	candidates, err := o.candidates()
	if err != nil {
		logger.Error(ctx, "method selection failed", ports.F("error", err))
		result.finalize(OverallFailedAll, "")
		send(eventExhausted)
		return result
	}

	for _, m := range candidates {
		if ctx.Err() != nil {
			logger.Warn(ctx, "run cancelled before attempt", ports.F("method", m.Name()))
			result.record(method.NewOutcome(m.Name(), method.StatusCancelled, "run cancelled").
				WithRemediation(m.Remediation()))
			result.finalize(OverallCancelled, "")
			send(eventCancel)
			return result
		}

		// Eligibility is decided exactly once, inside Execute. Preconditions
		// may consult the live filesystem, so a second evaluation here could
		// disagree with the executor's and run an action twice.
		outcome := o.exec.Execute(ctx, m, facts, workdir, o.cfg.MethodTimeout.Std())
		result.record(outcome)

		switch outcome.Status() {
		case method.StatusSkippedPrecondition:
			// Recorded without consuming an attempt; the machine stays in
			// selecting.
			continue
		case method.StatusSucceeded:
			send(eventCandidate)
			send(eventAttemptOK)
			send(eventFinish)
			result.finalize(OverallInstalled, m.Name())
			logger.Info(ctx, "installation complete", ports.F("method", m.Name()))
			return result
		case method.StatusCancelled:
			send(eventCandidate)
			send(eventCancel)
			result.finalize(OverallCancelled, "")
			logger.Warn(ctx, "installation cancelled", ports.F("method", m.Name()))
			return result
		default:
			send(eventCandidate)
			send(eventFailed)
			send(eventNext)
			logger.Warn(ctx, "method failed, advancing", ports.F("method", m.Name()))
		}
	}

	send(eventExhausted)
	result.finalize(OverallFailedAll, "")
	logger.Error(ctx, "all methods exhausted")
	return result
}

// candidates returns the rank-ordered methods for this run, or the single
// selected method when fallback is bypassed.
func (o *Orchestrator) candidates() ([]method.Method, error) {
	if o.singleMethod == "" {
		return o.registry.Methods(), nil
	}
	m, ok := o.registry.Lookup(o.singleMethod)
	if !ok {
		return nil, fmt.Errorf("unknown method %q", o.singleMethod)
	}
	return []method.Method{m}, nil
}

// workdir creates the scratch directory handed to actions. Failure degrades
// to the current directory.
func (o *Orchestrator) workdir(ctx context.Context, logger ports.Logger) (string, func()) {
	dir, err := os.MkdirTemp("", "agentstrap-run-*")
	if err != nil {
		logger.Warn(ctx, "scratch directory unavailable, using cwd", ports.F("error", err))
		return ".", func() {}
	}
	return dir, func() { _ = os.RemoveAll(dir) }
}
