package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/simgen/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show simgen configuration",
		Long: `View the effective simgen configuration.

Configuration is read from .simgen.yaml in the project root, then
SIMGEN_OUTPUT_DIR and SIMGEN_LOG_LEVEL from the environment. Study values
are not configurable.`,
	}

	cmd.AddCommand(newConfigListCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			asYAML, _ := cmd.Flags().GetBool("yaml")

			cfg, err := config.Load(root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonOut:
				return json.NewEncoder(out).Encode(cfg)
			case asYAML:
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(cfg); err != nil {
					return fmt.Errorf("encoding config: %w", err)
				}
				return enc.Close()
			}

			fmt.Fprintln(out, "Output Settings:")
			fmt.Fprintf(out, "  output.dir:          %s\n", cfg.Output.Dir)
			fmt.Fprintf(out, "  output.mats_file:    %s\n", cfg.Output.MatsFile)
			fmt.Fprintf(out, "  output.params_file:  %s\n", cfg.Output.ParamsFile)
			fmt.Fprintf(out, "  output.arrow_file:   %s\n", cfg.Output.ArrowFile)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Logging Settings:")
			fmt.Fprintf(out, "  logging.level:       %s\n", valueOrDefault(cfg.Logging.Level, "info"))
			return nil
		},
	}

	cmd.Flags().Bool("yaml", false, "Output as YAML, suitable for .simgen.yaml")

	return cmd
}

func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
