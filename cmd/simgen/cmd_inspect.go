package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/simgen/internal/npy"
	"github.com/nvandessel/simgen/internal/npz"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print the arrays stored in an .npz archive",
		Long: `Print every array in an .npz archive with its dtype, shape, and values.

Without an argument the generated sim_mats.npz is inspected.

Examples:
  simgen inspect
  simgen inspect analyses/simulation_studies/sim_mats.npz --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				g, cleanup, err := openGenerator(cmd)
				if err != nil {
					return err
				}
				cleanup()
				path = g.MatsPath
			}

			r, err := npz.Open(path)
			if err != nil {
				return err
			}
			defer r.Close()

			entries, err := r.ReadAll()
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(inspectJSON(entries))
			}
			printEntries(cmd.OutOrStdout(), path, entries)
			return nil
		},
	}
}

type arrayJSON struct {
	Name  string    `json:"name"`
	DType string    `json:"dtype"`
	Shape []int     `json:"shape"`
	Float []float64 `json:"float_data,omitempty"`
	Int   []int64   `json:"int_data,omitempty"`
}

func inspectJSON(entries []npz.Entry) []arrayJSON {
	out := make([]arrayJSON, len(entries))
	for i, e := range entries {
		out[i] = arrayJSON{
			Name:  e.Name,
			DType: string(e.Array.DType),
			Shape: e.Array.Shape,
			Float: e.Array.F64,
			Int:   e.Array.I64,
		}
	}
	return out
}

func printEntries(w io.Writer, path string, entries []npz.Entry) {
	fmt.Fprintf(w, "%s (%d arrays)\n", path, len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "\n%s  dtype=%s shape=%v\n", e.Name, e.Array.DType, e.Array.Shape)
		for _, row := range formatRows(e.Array) {
			fmt.Fprintf(w, "  %s\n", row)
		}
	}
}

// formatRows renders a 2-D array one row per line and anything else on a
// single line.
func formatRows(a npy.Array) []string {
	values := make([]string, a.Len())
	for i := range values {
		switch a.DType {
		case npy.Float64:
			values[i] = strconv.FormatFloat(a.F64[i], 'g', -1, 64)
		case npy.Int64:
			values[i] = strconv.FormatInt(a.I64[i], 10)
		}
	}

	if len(a.Shape) != 2 || a.Shape[1] == 0 {
		return []string{"[" + strings.Join(values, " ") + "]"}
	}
	cols := a.Shape[1]
	rows := make([]string, 0, a.Shape[0])
	for i := 0; i < len(values); i += cols {
		rows = append(rows, "["+strings.Join(values[i:i+cols], " ")+"]")
	}
	return rows
}
