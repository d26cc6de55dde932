// Package arrowexport writes the parameter grid as an Arrow IPC file so the
// run batch can be loaded column-wise by downstream analysis tooling.
package arrowexport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/simgen/internal/constants"
	"github.com/nvandessel/simgen/internal/grid"
)

// Schema returns one column per param. A param whose values are all
// integers becomes int64, anything else float64.
func Schema(params []grid.Param) *arrow.Schema {
	fields := make([]arrow.Field, len(params))
	for i, p := range params {
		typ := arrow.DataType(arrow.PrimitiveTypes.Int64)
		if !allInts(p.Values) {
			typ = arrow.PrimitiveTypes.Float64
		}
		fields[i] = arrow.Field{Name: p.Name, Type: typ}
	}
	return arrow.NewSchema(fields, nil)
}

func allInts(vs []grid.Value) bool {
	for _, v := range vs {
		if !v.IsInt() {
			return false
		}
	}
	return true
}

// Write renders the tuples as a single-batch Arrow IPC file on w. The file
// format patches its footer offsets, so w must be seekable.
func Write(w io.WriteSeeker, params []grid.Param, tuples [][]grid.Value) error {
	if err := checkWidths(params, tuples); err != nil {
		return err
	}

	mem := memory.NewGoAllocator()
	schema := Schema(params)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for _, tuple := range tuples {
		for i, v := range tuple {
			switch fb := b.Field(i).(type) {
			case *array.Int64Builder:
				fb.Append(v.Int64())
			case *array.Float64Builder:
				fb.Append(v.Float64())
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("creating arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("writing record batch: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("closing arrow writer: %w", err)
	}
	return nil
}

func checkWidths(params []grid.Param, tuples [][]grid.Value) error {
	for i, tuple := range tuples {
		if len(tuple) != len(params) {
			return fmt.Errorf("tuple %d has %d values, schema has %d columns", i, len(tuple), len(params))
		}
	}
	return nil
}

// WriteFile creates or overwrites path with the Arrow rendition of tuples.
// Nothing is created when the tuples do not fit the params.
func WriteFile(path string, params []grid.Param, tuples [][]grid.Value) (err error) {
	if err := checkWidths(params, tuples); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, constants.FilePerm)
	if err != nil {
		return fmt.Errorf("creating arrow file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing arrow file: %w", cerr)
		}
	}()

	return Write(f, params, tuples)
}

// Table is a decoded grid.
type Table struct {
	Columns []string
	Rows    [][]grid.Value
}

// ReadFile decodes an Arrow IPC file written by WriteFile.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening arrow file: %w", err)
	}
	defer f.Close()

	mem := memory.NewGoAllocator()
	r, err := ipc.NewFileReader(f, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("reading arrow file: %w", err)
	}
	defer r.Close()

	schema := r.Schema()
	t := &Table{Columns: make([]string, schema.NumFields())}
	for i, field := range schema.Fields() {
		t.Columns[i] = field.Name
	}

	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, fmt.Errorf("reading record batch %d: %w", i, err)
		}
		rows, err := decodeRecord(rec)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, rows...)
	}
	return t, nil
}

func decodeRecord(rec arrow.Record) ([][]grid.Value, error) {
	nrows := int(rec.NumRows())
	ncols := int(rec.NumCols())
	rows := make([][]grid.Value, nrows)
	for i := range rows {
		rows[i] = make([]grid.Value, ncols)
	}

	for j := 0; j < ncols; j++ {
		switch col := rec.Column(j).(type) {
		case *array.Int64:
			for i := 0; i < nrows; i++ {
				rows[i][j] = grid.Int(col.Value(i))
			}
		case *array.Float64:
			for i := 0; i < nrows; i++ {
				rows[i][j] = grid.Float(col.Value(i))
			}
		default:
			return nil, fmt.Errorf("column %s has unsupported type %s", rec.ColumnName(j), col.DataType())
		}
	}
	return rows, nil
}
