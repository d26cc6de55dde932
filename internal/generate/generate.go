// Package generate writes the simulation study artifacts: the model array
// archive and the parameter grid. A run is linear and single-threaded;
// the first I/O failure aborts it.
package generate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nvandessel/simgen/internal/arrowexport"
	"github.com/nvandessel/simgen/internal/config"
	"github.com/nvandessel/simgen/internal/constants"
	"github.com/nvandessel/simgen/internal/grid"
	"github.com/nvandessel/simgen/internal/logging"
	"github.com/nvandessel/simgen/internal/npz"
	"github.com/nvandessel/simgen/internal/pathutil"
	"github.com/nvandessel/simgen/internal/study"
)

// Generator produces the study artifacts under a project root.
type Generator struct {
	Root       string
	MatsPath   string
	ParamsPath string
	ArrowPath  string

	// Matrices and Params default to the study literals.
	Matrices func() ([]npz.Entry, error)
	Params   func() []grid.Param

	Logger *slog.Logger
	RunLog *logging.RunLog
}

// New returns a Generator for the study literals, writing to the paths
// cfg names under root.
func New(cfg *config.SimgenConfig, root string, logger *slog.Logger, runLog *logging.RunLog) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	g := &Generator{
		Root:       root,
		MatsPath:   cfg.MatsPath(root),
		ParamsPath: cfg.ParamsPath(root),
		ArrowPath:  cfg.ArrowPath(root),
		Matrices:   study.Matrices,
		Params:     study.Params,
		Logger:     logger,
		RunLog:     runLog,
	}
	for _, p := range []string{g.MatsPath, g.ParamsPath, g.ArrowPath} {
		if err := pathutil.EnsureWithin(root, p); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Result describes a completed run.
type Result struct {
	MatsPath     string `json:"mats_path,omitempty"`
	ParamsPath   string `json:"params_path,omitempty"`
	Combinations int    `json:"combinations"`
	MatsSHA256   string `json:"mats_sha256,omitempty"`
	ParamsSHA256 string `json:"params_sha256,omitempty"`
}

// Run writes the array archive and then the parameter grid.
func (g *Generator) Run(ctx context.Context) (Result, error) {
	matsSum, err := g.WriteMats(ctx)
	if err != nil {
		return Result{}, err
	}
	n, paramsSum, err := g.WriteParams(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{
		MatsPath:     g.MatsPath,
		ParamsPath:   g.ParamsPath,
		Combinations: n,
		MatsSHA256:   matsSum,
		ParamsSHA256: paramsSum,
	}, nil
}

// WriteMats serializes the model arrays into the .npz archive, creating or
// overwriting it. It returns the archive checksum.
func (g *Generator) WriteMats(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, arrays, err := g.matsBytes()
	if err != nil {
		return "", err
	}
	if err := writeFile(g.MatsPath, data); err != nil {
		return "", fmt.Errorf("writing %s: %w", pathutil.RedactPath(g.MatsPath), err)
	}

	sum := checksum(data)
	g.Logger.Debug("wrote array archive", "path", g.MatsPath, "bytes", len(data), "sha256", sum)
	g.RunLog.Record(logging.Event{
		Kind:   logging.EventMatsWritten,
		Path:   g.MatsPath,
		Arrays: arrays,
		SHA256: sum,
	})
	return sum, nil
}

// WriteParams writes one line per parameter combination, creating or
// overwriting the file. It returns the number of combinations written and
// the file checksum.
func (g *Generator) WriteParams(ctx context.Context) (int, string, error) {
	if err := ctx.Err(); err != nil {
		return 0, "", err
	}

	tuples := grid.Product(g.Params()...)
	data, err := paramsBytes(tuples)
	if err != nil {
		return 0, "", err
	}
	if err := writeFile(g.ParamsPath, data); err != nil {
		return 0, "", fmt.Errorf("writing %s: %w", pathutil.RedactPath(g.ParamsPath), err)
	}

	if g.Logger.Enabled(ctx, logging.LevelTrace) {
		for i, t := range tuples {
			g.Logger.Log(ctx, logging.LevelTrace, "combination", "index", i, "line", grid.FormatLine(t))
		}
	}

	sum := checksum(data)
	g.Logger.Debug("wrote parameter grid", "path", g.ParamsPath, "combinations", len(tuples), "sha256", sum)
	g.RunLog.Record(logging.Event{
		Kind:         logging.EventParamsWritten,
		Path:         g.ParamsPath,
		Combinations: len(tuples),
		SHA256:       sum,
	})
	return len(tuples), sum, nil
}

// ExportArrow writes the parameter grid as an Arrow IPC file and returns
// the number of rows.
func (g *Generator) ExportArrow(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	params := g.Params()
	tuples := grid.Product(params...)
	if err := arrowexport.WriteFile(g.ArrowPath, params, tuples); err != nil {
		return 0, fmt.Errorf("exporting %s: %w", pathutil.RedactPath(g.ArrowPath), err)
	}

	g.Logger.Debug("wrote arrow export", "path", g.ArrowPath, "rows", len(tuples))
	g.RunLog.Record(logging.Event{
		Kind: logging.EventArrowExported,
		Path: g.ArrowPath,
		Rows: len(tuples),
	})
	return len(tuples), nil
}

// Mismatch names an artifact whose on-disk content differs from a fresh
// generation.
type Mismatch struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Verify regenerates both artifacts in memory and compares them byte for
// byte with the files on disk. It writes nothing.
func (g *Generator) Verify(ctx context.Context) ([]Mismatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mats, _, err := g.matsBytes()
	if err != nil {
		return nil, err
	}
	params, err := paramsBytes(grid.Product(g.Params()...))
	if err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	for _, want := range []struct {
		path string
		data []byte
	}{
		{g.MatsPath, mats},
		{g.ParamsPath, params},
	} {
		m, err := compareFile(want.path, want.data)
		if err != nil {
			return nil, err
		}
		if m != nil {
			mismatches = append(mismatches, *m)
		}
	}

	n := len(mismatches)
	g.RunLog.Record(logging.Event{Kind: logging.EventVerified, Mismatches: &n})
	return mismatches, nil
}

// matsBytes returns the encoded archive and the number of arrays in it.
func (g *Generator) matsBytes() ([]byte, int, error) {
	entries, err := g.Matrices()
	if err != nil {
		return nil, 0, fmt.Errorf("building model arrays: %w", err)
	}
	data, err := npz.Encode(entries)
	if err != nil {
		return nil, 0, fmt.Errorf("encoding array archive: %w", err)
	}
	return data, len(entries), nil
}

func paramsBytes(tuples [][]grid.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := grid.WriteLines(&buf, tuples); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func compareFile(path string, want []byte) (*Mismatch, error) {
	got, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Mismatch{Path: path, Reason: "missing"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pathutil.RedactPath(path), err)
	}
	if !bytes.Equal(got, want) {
		return &Mismatch{
			Path:   path,
			Reason: fmt.Sprintf("content differs (sha256 %s, expected %s)", checksum(got), checksum(want)),
		}, nil
	}
	return nil, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, data, constants.FilePerm)
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
