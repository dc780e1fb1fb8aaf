// Package ports defines the interfaces the domain packages use to reach the
// outside world.
package ports

import "context"

// CommandResult holds the observable result of one external command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// Combined returns stdout followed by stderr, for diagnostics that do not
// care which stream a line arrived on.
func (r CommandResult) Combined() string {
	switch {
	case r.Stdout == "":
		return r.Stderr
	case r.Stderr == "":
		return r.Stdout
	default:
		return r.Stdout + "\n" + r.Stderr
	}
}

// CommandRunner executes external commands. Implementations must honor
// context cancellation and deadlines.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)
}
