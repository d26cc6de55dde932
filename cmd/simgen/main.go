package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "simgen",
		Short: "Generate simulation study inputs",
		Long: `simgen writes the inputs of the change-point network simulation study.

Running it with no subcommand is the same as 'simgen generate': it writes
the model arrays to analyses/simulation_studies/sim_mats.npz and the
parameter grid to analyses/simulation_studies/sim_params.txt, then prints
the number of parameter combinations.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newGenerateCmd(),
		newMatsCmd(),
		newParamsCmd(),
		newInspectCmd(),
		newVerifyCmd(),
		newExportCmd(),
		newConfigCmd(),
	)

	return rootCmd
}
