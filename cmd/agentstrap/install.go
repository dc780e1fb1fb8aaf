package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agentstrap/internal/adapters/command"
	"github.com/felixgeelhaar/agentstrap/internal/domain/config"
	"github.com/felixgeelhaar/agentstrap/internal/domain/executor"
	"github.com/felixgeelhaar/agentstrap/internal/domain/method"
	"github.com/felixgeelhaar/agentstrap/internal/domain/orchestrator"
	"github.com/felixgeelhaar/agentstrap/internal/domain/platform"
	"github.com/felixgeelhaar/agentstrap/internal/domain/probe"
	"github.com/felixgeelhaar/agentstrap/internal/tui"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Probe the machine and install the agent",
	Long: `Install probes the host environment, then works through the known
installation methods from cheapest to most self-sufficient until one
succeeds.

Examples:
  agentstrap install                        # automatic method selection
  agentstrap install --method local-bundle  # force one method, no fallback
  agentstrap install --non-interactive      # skip the confirmation pause`,
	RunE: runInstall,
}

var (
	installMethod  string
	nonInteractive bool
	installDir     string
)

func init() {
	registerInstallFlags(installCmd)
	registerInstallFlags(rootCmd)

	rootCmd.AddCommand(installCmd)
}

func registerInstallFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&installMethod, "method", "", "attempt only the named method, bypassing fallback")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "do not pause for confirmation before probing")
	cmd.Flags().StringVar(&installDir, "dir", "", "install root override")
}

func runInstall(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if installDir != "" {
		cfg.InstallRoot = installDir
	}

	logger := newLogger()

	if !nonInteractive {
		fmt.Fprintf(cmd.OutOrStdout(), "Press Enter to install the computer use agent into %s...\n", cfg.InstallRoot)
		_, _ = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := command.NewRealRunner()
	registry, err := method.BuiltinRegistry(cfg, runner, platform.Detect())
	if err != nil {
		return config.NewUserError(config.ErrCodeConfigInvalid, "installation methods could not be registered").
			WithUnderlying(err)
	}

	orch := orchestrator.New(
		probe.New(runner, cfg, logger),
		registry,
		executor.New(logger),
		cfg,
		logger,
	)
	if installMethod != "" {
		if _, ok := registry.Lookup(installMethod); !ok {
			return config.NewUserError(config.ErrCodeMethodNotFound,
				fmt.Sprintf("no installation method named %q", installMethod)).
				WithSuggestion("run 'agentstrap methods' to list the available methods")
		}
		orch = orch.WithSingleMethod(installMethod)
	}

	result := orch.Run(ctx)

	fmt.Fprint(cmd.OutOrStdout(), tui.RenderRunReport(result))
	lastExitCode = tui.ExitCode(result)
	return nil
}
