// Package constants provides named constants used throughout simgen.
package constants

// Output locations, relative to the project root.
const (
	// DefaultOutputDir is where the study artifacts are written.
	DefaultOutputDir = "analyses/simulation_studies"

	// MatsFileName is the model array archive.
	MatsFileName = "sim_mats.npz"

	// ParamsFileName is the parameter grid, one combination per line.
	ParamsFileName = "sim_params.txt"

	// ArrowFileName is the columnar rendition of the parameter grid.
	ArrowFileName = "sim_params.arrow"
)

// Local state directory and files.
const (
	// StateDirName holds the run log, relative to the project root.
	StateDirName = ".simgen"

	// RunLogFileName is the JSONL run log inside StateDirName.
	RunLogFileName = "runs.jsonl"

	// ConfigFileName is the optional project config file at the project root.
	ConfigFileName = ".simgen.yaml"
)

// File permissions for generated artifacts.
const (
	DirPerm  = 0755
	FilePerm = 0644
)
