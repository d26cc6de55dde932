// Package grid enumerates parameter combinations as the Cartesian product
// of per-parameter value lists and renders them as text lines.
package grid

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Value is a numeric grid value. It remembers whether it was written as an
// integer so that 1 and 1.0 render differently.
type Value struct {
	f     float64
	isInt bool
}

// Int returns an integer value.
func Int(v int64) Value {
	return Value{f: float64(v), isInt: true}
}

// Float returns a floating-point value.
func Float(v float64) Value {
	return Value{f: v}
}

// Float64 returns the numeric value.
func (v Value) Float64() float64 {
	return v.f
}

// Int64 returns the value truncated to an integer.
func (v Value) Int64() int64 {
	return int64(v.f)
}

// IsInt reports whether v was built with Int.
func (v Value) IsInt() bool {
	return v.isInt
}

// String renders integers plainly and floats in shortest round-trip form,
// switching to exponent notation below 1e-4 and at or above 1e16
// (0.1, 0.001, 1e-05, 2.5, 1e+16).
func (v Value) String() string {
	if v.isInt {
		return strconv.FormatInt(int64(v.f), 10)
	}
	return formatFloat(v.f)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Param is one named enumeration of candidate values.
type Param struct {
	Name   string
	Values []Value
}

// Ints builds a Param from integer literals.
func Ints(name string, vs ...int64) Param {
	p := Param{Name: name, Values: make([]Value, len(vs))}
	for i, v := range vs {
		p.Values[i] = Int(v)
	}
	return p
}

// Count returns the number of combinations Product would produce.
func Count(params ...Param) int {
	if len(params) == 0 {
		return 0
	}
	n := 1
	for _, p := range params {
		n *= len(p.Values)
	}
	return n
}

// Product returns every combination of the params' values. The first param
// varies slowest and the last fastest, so tuple i is the i-th element of
// the lexicographic product.
func Product(params ...Param) [][]Value {
	total := Count(params...)
	if total == 0 {
		return nil
	}

	out := make([][]Value, 0, total)
	idx := make([]int, len(params))
	for {
		tuple := make([]Value, len(params))
		for i, p := range params {
			tuple[i] = p.Values[idx[i]]
		}
		out = append(out, tuple)

		// odometer increment, rightmost digit first
		k := len(params) - 1
		for k >= 0 {
			idx[k]++
			if idx[k] < len(params[k].Values) {
				break
			}
			idx[k] = 0
			k--
		}
		if k < 0 {
			return out
		}
	}
}

// FormatLine renders a tuple as space-separated values.
func FormatLine(tuple []Value) string {
	parts := make([]string, len(tuple))
	for i, v := range tuple {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}

// WriteLines writes one line per tuple, each terminated by a newline.
func WriteLines(w io.Writer, tuples [][]Value) error {
	bw := bufio.NewWriter(w)
	for _, t := range tuples {
		if _, err := bw.WriteString(FormatLine(t)); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing lines: %w", err)
	}
	return nil
}
