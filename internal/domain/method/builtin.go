package method

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/agentstrap/internal/domain/config"
	"github.com/felixgeelhaar/agentstrap/internal/domain/platform"
	"github.com/felixgeelhaar/agentstrap/internal/domain/probe"
	"github.com/felixgeelhaar/agentstrap/internal/ports"
)

// Builtin method identifiers.
const (
	MethodRuntimeLaunch   = "runtime-launch"
	MethodLocalBundle     = "local-bundle"
	MethodRuntimeDownload = "runtime-download"
	MethodManual          = "manual"
)

// Builtin ranks. Lower rank is cheaper and tried first.
const (
	rankRuntimeLaunch = iota + 1
	rankLocalBundle
	rankRuntimeDownload
	rankManual
)

// BuiltinRegistry builds the frozen registry of the four standard install
// strategies, cheapest first.
func BuiltinRegistry(cfg *config.Config, runner ports.CommandRunner, plat *platform.Platform) (*Registry, error) {
	actions := newActions(cfg, runner, plat)
	registry := NewRegistry()

	launch := New(MethodRuntimeLaunch, rankRuntimeLaunch, ActionFunc(actions.runtimeLaunch)).
		WithSummary("install and launch the agent with the runtime already on this machine").
		WithRemediation("run the agent entrypoint manually to see why it failed to start").
		WithPrecondition(func(f probe.Facts) bool {
			return f.RuntimePresent && probe.MeetsMinimum(f.RuntimeVersion, cfg.MinRuntimeVersion)
		})

	bundle := New(MethodLocalBundle, rankLocalBundle, ActionFunc(actions.extractBundle)).
		WithSummary(fmt.Sprintf("extract the pre-fetched bundle %s into the install root", cfg.BundlePath)).
		WithRemediation("re-download the portable bundle; the local copy may be corrupt").
		WithPrecondition(func(_ probe.Facts) bool {
			info, err := os.Stat(cfg.BundlePath)
			return err == nil && !info.IsDir()
		})

	download := New(MethodRuntimeDownload, rankRuntimeDownload, ActionFunc(actions.downloadRuntime)).
		WithSummary("download the runtime installer, install it unattended, then launch the agent").
		WithRemediation("install the runtime manually, then run agentstrap again").
		WithPrecondition(func(f probe.Facts) bool {
			return f.NetworkReachable && f.InstallRootWritable
		})

	manual := New(MethodManual, rankManual, ActionFunc(actions.manualInstructions)).
		WithSummary("print step-by-step manual installation instructions").
		WithRemediation(manualRemediation(cfg))

	for _, m := range []Method{launch, bundle, download, manual} {
		if err := registry.Register(m); err != nil {
			return nil, err
		}
	}
	if err := registry.Freeze(); err != nil {
		return nil, err
	}
	return registry, nil
}

func manualRemediation(cfg *config.Config) string {
	return fmt.Sprintf(
		"install a runtime >= %s, place %s next to agentstrap or allow network access, then run agentstrap again",
		cfg.MinRuntimeVersion, cfg.BundlePath)
}
