// Command robosim runs behaviour-based robot controllers in a simulated
// arena.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "robosim",
		Short:   "Simulate behaviour-based robot brains",
		Version: version,
		Long: `robosim places robots in a 2D arena and drives each one with a brain:
a set of sensors, behaviours and an arbitration strategy, ticked at a fixed
step. Brains come from the built-in registry or from YAML wiring files.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(),
		newBrainsCmd(),
		newValidateCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
