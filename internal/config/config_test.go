package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Output.Dir != "analyses/simulation_studies" {
		t.Errorf("expected Output.Dir 'analyses/simulation_studies', got '%s'", config.Output.Dir)
	}
	if config.Output.MatsFile != "sim_mats.npz" {
		t.Errorf("expected MatsFile 'sim_mats.npz', got '%s'", config.Output.MatsFile)
	}
	if config.Output.ParamsFile != "sim_params.txt" {
		t.Errorf("expected ParamsFile 'sim_params.txt', got '%s'", config.Output.ParamsFile)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestPaths(t *testing.T) {
	config := Default()
	root := filepath.Join("some", "project")

	if got, want := config.MatsPath(root), filepath.Join(root, "analyses", "simulation_studies", "sim_mats.npz"); got != want {
		t.Errorf("MatsPath() = %s, want %s", got, want)
	}
	if got, want := config.ParamsPath(root), filepath.Join(root, "analyses", "simulation_studies", "sim_params.txt"); got != want {
		t.Errorf("ParamsPath() = %s, want %s", got, want)
	}
	if got, want := config.ArrowPath(root), filepath.Join(root, "analyses", "simulation_studies", "sim_params.arrow"); got != want {
		t.Errorf("ArrowPath() = %s, want %s", got, want)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
output:
  dir: out/sims
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Output.Dir != "out/sims" {
		t.Errorf("expected Output.Dir 'out/sims', got '%s'", config.Output.Dir)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
	// unspecified keys keep defaults
	if config.Output.MatsFile != "sim_mats.npz" {
		t.Errorf("expected default MatsFile, got '%s'", config.Output.MatsFile)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("output: [not, a, map"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadFromFile(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected read error for missing file")
	}
}

func TestLoad(t *testing.T) {
	t.Run("no file uses defaults", func(t *testing.T) {
		t.Setenv("SIMGEN_OUTPUT_DIR", "")
		t.Setenv("SIMGEN_LOG_LEVEL", "")

		config, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if config.Output.Dir != "analyses/simulation_studies" {
			t.Errorf("expected default Output.Dir, got '%s'", config.Output.Dir)
		}
	})

	t.Run("project file then env", func(t *testing.T) {
		root := t.TempDir()
		content := "output:\n  dir: from-file\nlogging:\n  level: debug\n"
		if err := os.WriteFile(filepath.Join(root, ".simgen.yaml"), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("SIMGEN_OUTPUT_DIR", "")
		t.Setenv("SIMGEN_LOG_LEVEL", "trace")

		config, err := Load(root)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if config.Output.Dir != "from-file" {
			t.Errorf("expected Output.Dir 'from-file', got '%s'", config.Output.Dir)
		}
		if config.Logging.Level != "trace" {
			t.Errorf("expected env to override level to 'trace', got '%s'", config.Logging.Level)
		}
	})

	t.Run("env overrides output dir", func(t *testing.T) {
		t.Setenv("SIMGEN_OUTPUT_DIR", "elsewhere")
		t.Setenv("SIMGEN_LOG_LEVEL", "")

		config, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if config.Output.Dir != "elsewhere" {
			t.Errorf("expected Output.Dir 'elsewhere', got '%s'", config.Output.Dir)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*SimgenConfig)
		errContains string
	}{
		{"valid default", func(c *SimgenConfig) {}, ""},
		{"empty log level", func(c *SimgenConfig) { c.Logging.Level = "" }, ""},
		{"empty dir", func(c *SimgenConfig) { c.Output.Dir = "" }, "must not be empty"},
		{"absolute dir", func(c *SimgenConfig) { c.Output.Dir = "/tmp/out" }, "relative"},
		{"escaping dir", func(c *SimgenConfig) { c.Output.Dir = "../out" }, "escapes"},
		{"nested file name", func(c *SimgenConfig) { c.Output.MatsFile = "a/b.npz" }, "bare file name"},
		{"empty file name", func(c *SimgenConfig) { c.Output.ParamsFile = "" }, "must not be empty"},
		{"clashing file names", func(c *SimgenConfig) { c.Output.ParamsFile = c.Output.MatsFile }, "distinct"},
		{"bad log level", func(c *SimgenConfig) { c.Logging.Level = "verbose" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)
			err := config.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}
