package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/simgen/internal/config"
	"github.com/nvandessel/simgen/internal/generate"
	"github.com/nvandessel/simgen/internal/logging"
)

// openGenerator builds a Generator from the --root flag and the project
// config. The returned cleanup closes the run log.
func openGenerator(cmd *cobra.Command) (*generate.Generator, func(), error) {
	root, _ := cmd.Flags().GetString("root")

	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	runLog := logging.NewRunLog(root, cfg.Logging.Level)

	g, err := generate.New(cfg, root, logger, runLog)
	if err != nil {
		runLog.Close()
		return nil, nil, err
	}
	return g, runLog.Close, nil
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Write the array archive and the parameter grid",
		Long: `Write both study artifacts and print the number of parameter combinations.

Existing files are overwritten. The output is deterministic: running
generate twice produces byte-identical files.`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	g, cleanup, err := openGenerator(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := g.Run(cmd.Context())
	if err != nil {
		return err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Combinations)
	return nil
}

func newMatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mats",
		Short: "Write only the model array archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, cleanup, err := openGenerator(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			sum, err := g.WriteMats(cmd.Context())
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(generate.Result{
					MatsPath:   g.MatsPath,
					MatsSHA256: sum,
				})
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", g.MatsPath)
			return nil
		},
	}
}

func newParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Write only the parameter grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, cleanup, err := openGenerator(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			n, sum, err := g.WriteParams(cmd.Context())
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(generate.Result{
					ParamsPath:   g.ParamsPath,
					Combinations: n,
					ParamsSHA256: sum,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
