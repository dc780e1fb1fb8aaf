package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/agentstrap/internal/domain/method"
	"github.com/felixgeelhaar/agentstrap/internal/domain/orchestrator"
)

// Process exit statuses.
const (
	ExitInstalled = 0
	ExitFailedAll = 1
	ExitCancelled = 2
)

// ExitCode maps a run's terminal status to the process exit code.
func ExitCode(result *orchestrator.RunResult) int {
	switch result.Overall() {
	case orchestrator.OverallInstalled:
		return ExitInstalled
	case orchestrator.OverallCancelled:
		return ExitCancelled
	default:
		return ExitFailedAll
	}
}

// RenderRunReport renders the attempt narrative for a finished run: one
// line per attempt in order, the terminal verdict, and on exhaustion the
// last attempted method's remediation.
func RenderRunReport(result *orchestrator.RunResult) string {
	styles := DefaultStyles()
	var b strings.Builder

	b.WriteString(styles.Title.Render("Installation report"))
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("run " + result.RunID()))
	b.WriteString("\n\n")

	for _, attempt := range result.Attempts() {
		b.WriteString(renderAttempt(styles, attempt))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch result.Overall() {
	case orchestrator.OverallInstalled:
		b.WriteString(styles.Success.Render(
			fmt.Sprintf("Installed via %s.", result.Winner())))
	case orchestrator.OverallCancelled:
		b.WriteString(styles.Warning.Render("Installation cancelled."))
	default:
		b.WriteString(styles.Error.Render("Installation failed: all methods exhausted."))
		if last, ok := result.LastAttempt(); ok && last.Remediation() != "" {
			b.WriteString("\n")
			b.WriteString(styles.Remediation.Render("Next step: " + last.Remediation()))
		}
	}
	b.WriteString("\n")

	return b.String()
}

func renderAttempt(styles Styles, attempt method.Outcome) string {
	symbol, style := statusGlyph(styles, attempt.Status())

	line := fmt.Sprintf("%s %-18s %s", symbol, attempt.Method(), attempt.Status())
	if d := attempt.Duration(); d > 0 {
		line += fmt.Sprintf(" (%s)", d.Round(time.Millisecond))
	}
	rendered := style.Render(line)

	if diag := firstLine(attempt.Message()); diag != "" && !attempt.Skipped() {
		rendered += "\n" + styles.Muted.Render("    "+diag)
	}
	return rendered
}

func statusGlyph(styles Styles, status method.Status) (string, lipgloss.Style) {
	switch status {
	case method.StatusSucceeded:
		return "✓", styles.Success
	case method.StatusFailed:
		return "✗", styles.Error
	case method.StatusCancelled:
		return "!", styles.Warning
	default:
		return "-", styles.Muted
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
