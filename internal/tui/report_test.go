package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/agentstrap/internal/domain/method"
	"github.com/felixgeelhaar/agentstrap/internal/domain/orchestrator"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		overall orchestrator.Overall
		want    int
	}{
		{orchestrator.OverallInstalled, ExitInstalled},
		{orchestrator.OverallFailedAll, ExitFailedAll},
		{orchestrator.OverallCancelled, ExitCancelled},
	}

	for _, tt := range tests {
		result := orchestrator.NewRunResult(tt.overall, "", nil)
		if got := ExitCode(result); got != tt.want {
			t.Errorf("ExitCode(%s) = %d, want %d", tt.overall, got, tt.want)
		}
	}
}

func TestRenderRunReport_Installed(t *testing.T) {
	result := orchestrator.NewRunResult(orchestrator.OverallInstalled, "local-bundle", []method.Outcome{
		method.NewOutcome("runtime-launch", method.StatusSkippedPrecondition, "precondition not satisfied"),
		method.NewOutcome("local-bundle", method.StatusSucceeded, "extracted 12 files").
			WithDuration(420 * time.Millisecond),
	})

	report := RenderRunReport(result)

	require.Contains(t, report, "Installed via local-bundle")
	require.Contains(t, report, "runtime-launch")
	require.Contains(t, report, "local-bundle")
	require.Contains(t, report, "extracted 12 files")
}

func TestRenderRunReport_FailedAllShowsRemediation(t *testing.T) {
	result := orchestrator.NewRunResult(orchestrator.OverallFailedAll, "", []method.Outcome{
		method.NewOutcome("runtime-download", method.StatusFailed, "download timed out").
			WithRemediation("install the runtime manually, then run agentstrap again"),
		method.NewOutcome("manual", method.StatusFailed, "manual installation required").
			WithRemediation("install a runtime >= 3.8 and run agentstrap again"),
	})

	report := RenderRunReport(result)

	require.Contains(t, report, "all methods exhausted")
	require.Contains(t, report, "Next step: install a runtime >= 3.8")
}

func TestRenderRunReport_Cancelled(t *testing.T) {
	result := orchestrator.NewRunResult(orchestrator.OverallCancelled, "", []method.Outcome{
		method.NewOutcome("runtime-download", method.StatusCancelled, "run cancelled"),
	})

	require.Contains(t, RenderRunReport(result), "Installation cancelled")
}

func TestRenderRunReport_AttemptsKeepOrder(t *testing.T) {
	result := orchestrator.NewRunResult(orchestrator.OverallFailedAll, "", []method.Outcome{
		method.NewOutcome("first", method.StatusFailed, "a"),
		method.NewOutcome("second", method.StatusFailed, "b"),
	})

	report := RenderRunReport(result)
	require.Less(t, indexOf(t, report, "first"), indexOf(t, report, "second"))
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "%q not found in report", needle)
	return idx
}
