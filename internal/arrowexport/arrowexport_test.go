package arrowexport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/google/go-cmp/cmp"

	"github.com/nvandessel/simgen/internal/grid"
)

func sampleParams() []grid.Param {
	return []grid.Param{
		grid.Ints("num_nodes", 500, 1000),
		{Name: "delta_lam", Values: []grid.Value{grid.Int(1), grid.Float(1e-5)}},
	}
}

func TestSchema(t *testing.T) {
	schema := Schema(sampleParams())

	if got := schema.NumFields(); got != 2 {
		t.Fatalf("NumFields() = %d, want 2", got)
	}
	if got := schema.Field(0).Type.ID(); got != arrow.INT64 {
		t.Errorf("num_nodes type = %s, want int64", got)
	}
	// mixed int/float enumerations widen to float64
	if got := schema.Field(1).Type.ID(); got != arrow.FLOAT64 {
		t.Errorf("delta_lam type = %s, want float64", got)
	}
}

func TestWriteFile_ReadFile(t *testing.T) {
	params := sampleParams()
	tuples := grid.Product(params...)
	path := filepath.Join(t.TempDir(), "out", "sim_params.arrow")

	if err := WriteFile(path, params, tuples); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	table, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if diff := cmp.Diff([]string{"num_nodes", "delta_lam"}, table.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
	if len(table.Rows) != len(tuples) {
		t.Fatalf("rows = %d, want %d", len(table.Rows), len(tuples))
	}

	var got []string
	for _, row := range table.Rows {
		got = append(got, grid.FormatLine(row))
	}
	want := []string{
		"500 1.0",
		"500 1e-05",
		"1000 1.0",
		"1000 1e-05",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFile_Deterministic(t *testing.T) {
	params := sampleParams()
	tuples := grid.Product(params...)
	dir := t.TempDir()

	var outputs [][]byte
	for _, name := range []string{"first.arrow", "second.arrow"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, params, tuples); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, data)
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Error("two writes of the same grid differ")
	}
}

func TestWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim_params.arrow")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), 1<<16), 0600); err != nil {
		t.Fatal(err)
	}

	params := sampleParams()
	if err := WriteFile(path, params, grid.Product(params...)); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	table, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() after overwrite error = %v", err)
	}
	if len(table.Rows) != 4 {
		t.Errorf("rows = %d, want 4", len(table.Rows))
	}
}

func TestWrite_ToFile(t *testing.T) {
	params := sampleParams()
	f, err := os.Create(filepath.Join(t.TempDir(), "grid.arrow"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := Write(f, params, grid.Product(params...)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	info, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("Write() produced an empty file")
	}
}

func TestWriteFile_TupleWidthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.arrow")
	tuples := [][]grid.Value{{grid.Int(1)}}
	if err := WriteFile(path, sampleParams(), tuples); err == nil {
		t.Error("expected error for short tuple")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("no file should be created for a rejected grid")
	}
}

func TestReadFile_Missing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.arrow")); err == nil {
		t.Error("expected error for missing file")
	}
}
