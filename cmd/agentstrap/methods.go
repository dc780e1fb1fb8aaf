package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agentstrap/internal/adapters/command"
	"github.com/felixgeelhaar/agentstrap/internal/domain/method"
	"github.com/felixgeelhaar/agentstrap/internal/domain/platform"
)

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the installation methods in attempt order",
	RunE:  runMethods,
}

func init() {
	rootCmd.AddCommand(methodsCmd)
}

func runMethods(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := method.BuiltinRegistry(cfg, command.NewRealRunner(), platform.Detect())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, m := range registry.Methods() {
		gate := "always eligible"
		if !m.CatchAll() {
			gate = "precondition gated"
		}
		fmt.Fprintf(out, "%d. %-18s %s\n     %s\n", m.Rank(), m.Name(), gate, m.Summary())
	}
	return nil
}
