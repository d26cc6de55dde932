package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the artifacts on disk match a fresh generation",
		Long: `Regenerate both artifacts in memory and compare them byte for byte with
the files on disk. Nothing is written. Exits non-zero when a file is
missing or differs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, cleanup, err := openGenerator(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			mismatches, err := g.Verify(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				if err := json.NewEncoder(out).Encode(map[string]interface{}{
					"valid":      len(mismatches) == 0,
					"mismatches": mismatches,
				}); err != nil {
					return err
				}
			} else if len(mismatches) == 0 {
				fmt.Fprintln(out, "Artifacts are up to date")
				fmt.Fprintf(out, "  %s\n  %s\n", g.MatsPath, g.ParamsPath)
			} else {
				for _, m := range mismatches {
					fmt.Fprintf(out, "%s: %s\n", m.Path, m.Reason)
				}
			}

			if len(mismatches) > 0 {
				return fmt.Errorf("%d artifact(s) out of date; run 'simgen generate'", len(mismatches))
			}
			return nil
		},
	}
}
