package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agentstrap/internal/adapters/command"
	"github.com/felixgeelhaar/agentstrap/internal/domain/probe"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Show the environment facts without installing",
	RunE:  runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	prober := probe.New(command.NewRealRunner(), cfg, newLogger())
	facts := prober.Probe(cmd.Context())

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "runtime present:       %v\n", facts.RuntimePresent)
	if facts.RuntimeVersion != "" {
		fmt.Fprintf(out, "runtime version:       %s (%s)\n", facts.RuntimeVersion, facts.RuntimePath)
	}
	fmt.Fprintf(out, "operating system:      %s\n", facts.OS)
	fmt.Fprintf(out, "network reachable:     %v\n", facts.NetworkReachable)
	fmt.Fprintf(out, "install root:          %s\n", facts.InstallRoot)
	fmt.Fprintf(out, "install root writable: %v\n", facts.InstallRootWritable)
	return nil
}
