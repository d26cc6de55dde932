// Package config provides configuration loading for simgen.
// It supports loading from a project YAML file and environment variables.
//
// Only ambient settings live here. The study values themselves are
// literal constants in package study.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/simgen/internal/constants"
)

// SimgenConfig contains all simgen configuration settings.
type SimgenConfig struct {
	// Output controls where artifacts are written.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains settings for operational and run logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// OutputConfig names the artifact locations relative to the project root.
type OutputConfig struct {
	// Dir is the artifact directory, relative to the project root.
	Dir string `json:"dir" yaml:"dir"`

	MatsFile   string `json:"mats_file" yaml:"mats_file"`
	ParamsFile string `json:"params_file" yaml:"params_file"`
	ArrowFile  string `json:"arrow_file" yaml:"arrow_file"`
}

// LoggingConfig configures simgen's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables the run log at .simgen/runs.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns a SimgenConfig matching the fixed study layout.
func Default() *SimgenConfig {
	return &SimgenConfig{
		Output: OutputConfig{
			Dir:        constants.DefaultOutputDir,
			MatsFile:   constants.MatsFileName,
			ParamsFile: constants.ParamsFileName,
			ArrowFile:  constants.ArrowFileName,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration for the project at root.
// Order: defaults -> <root>/.simgen.yaml -> environment variables
func Load(root string) (*SimgenConfig, error) {
	config := Default()

	configPath := filepath.Join(root, constants.ConfigFileName)
	if _, statErr := os.Stat(configPath); statErr == nil {
		fileConfig, loadErr := LoadFromFile(configPath)
		if loadErr != nil {
			return nil, fmt.Errorf("loading config file: %w", loadErr)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Keys absent from the file keep their defaults.
func LoadFromFile(path string) (*SimgenConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *SimgenConfig) Validate() error {
	dir := c.Output.Dir
	if dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	if filepath.IsAbs(dir) {
		return fmt.Errorf("output.dir must be relative to the project root, got %s", dir)
	}
	if cleaned := filepath.Clean(dir); cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output.dir escapes the project root: %s", dir)
	}

	files := map[string]string{
		"mats_file":   c.Output.MatsFile,
		"params_file": c.Output.ParamsFile,
		"arrow_file":  c.Output.ArrowFile,
	}
	for key, name := range files {
		if name == "" {
			return fmt.Errorf("output.%s must not be empty", key)
		}
		if filepath.Base(name) != name {
			return fmt.Errorf("output.%s must be a bare file name, got %s", key, name)
		}
	}
	if c.Output.MatsFile == c.Output.ParamsFile || c.Output.MatsFile == c.Output.ArrowFile || c.Output.ParamsFile == c.Output.ArrowFile {
		return fmt.Errorf("output file names must be distinct")
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// MatsPath returns the archive path under root.
func (c *SimgenConfig) MatsPath(root string) string {
	return filepath.Join(root, c.Output.Dir, c.Output.MatsFile)
}

// ParamsPath returns the parameter grid path under root.
func (c *SimgenConfig) ParamsPath(root string) string {
	return filepath.Join(root, c.Output.Dir, c.Output.ParamsFile)
}

// ArrowPath returns the Arrow export path under root.
func (c *SimgenConfig) ArrowPath(root string) string {
	return filepath.Join(root, c.Output.Dir, c.Output.ArrowFile)
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *SimgenConfig) {
	if v := os.Getenv("SIMGEN_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}

	if v := os.Getenv("SIMGEN_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
