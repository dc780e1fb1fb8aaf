// Package command provides command execution adapters.
package command

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/felixgeelhaar/agentstrap/internal/ports"
)

// RealRunner executes actual external commands.
type RealRunner struct {
	// Timeout bounds each invocation when the caller's context carries no
	// deadline of its own. Zero means no extra bound.
	Timeout time.Duration
}

// NewRealRunner creates a RealRunner without a default timeout.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// NewBoundedRunner creates a RealRunner that caps every invocation at d.
func NewBoundedRunner(d time.Duration) *RealRunner {
	return &RealRunner{Timeout: d}
}

// Run executes a command and returns its result. A non-zero exit is not an
// error; the exit code is reported through the result instead.
func (r *RealRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	if r.Timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.Timeout)
			defer cancel()
		}
	}

	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := ports.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

var _ ports.CommandRunner = (*RealRunner)(nil)
