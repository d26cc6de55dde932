// Package logging provides leveled logging and run tracing for simgen.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A RunLog for structured JSONL run records (.simgen/runs.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/simgen/internal/constants"
)

// LevelTrace is a custom slog level below Debug for full content logging.
// At this level every generated line and array is logged.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Run log event kinds.
const (
	EventMatsWritten   = "mats_written"
	EventParamsWritten = "params_written"
	EventArrowExported = "arrow_exported"
	EventVerified      = "verified"
)

// Event is one line of the run log. Zero-valued counts are omitted except
// Mismatches, which is only set for verification.
type Event struct {
	Time         time.Time `json:"time"`
	Kind         string    `json:"event"`
	Path         string    `json:"path,omitempty"`
	Arrays       int       `json:"arrays,omitempty"`
	Combinations int       `json:"combinations,omitempty"`
	Rows         int       `json:"rows,omitempty"`
	Mismatches   *int      `json:"mismatches,omitempty"`
	SHA256       string    `json:"sha256,omitempty"`
}

// RunLog appends generation events to <root>/.simgen/runs.jsonl.
// A nil RunLog discards everything, so callers never check for it.
type RunLog struct {
	mu  sync.Mutex
	enc *json.Encoder
	f   *os.File
	now func() time.Time
}

// NewRunLog opens the run log for append. Below debug level there is
// nothing to record and it returns nil without touching the filesystem.
// An unopenable log also yields nil: tracing never fails a run.
func NewRunLog(root string, level string) *RunLog {
	if ParseLevel(level) > slog.LevelDebug {
		return nil
	}

	dir := filepath.Join(root, constants.StateDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, constants.RunLogFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	return &RunLog{enc: json.NewEncoder(f), f: f, now: time.Now}
}

// Record appends ev, stamping Time when the caller left it zero.
func (rl *RunLog) Record(ev Event) {
	if rl == nil {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.f == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = rl.now().UTC()
	}
	_ = rl.enc.Encode(ev)
}

// Close closes the file. Records after Close are dropped.
func (rl *RunLog) Close() {
	if rl == nil {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.f != nil {
		rl.f.Close()
		rl.f = nil
	}
}
