package grid

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"int one", Int(1), "1"},
		{"int large", Int(500), "500"},
		{"int negative", Int(-3), "-3"},
		{"float one", Float(1), "1.0"},
		{"tenth", Float(0.1), "0.1"},
		{"thousandth", Float(0.001), "0.001"},
		{"ten-thousandth stays fixed", Float(1e-4), "0.0001"},
		{"hundred-thousandth uses exponent", Float(1e-5), "1e-05"},
		{"mantissa with exponent", Float(2.5e-7), "2.5e-07"},
		{"large fixed", Float(123456), "123456.0"},
		{"very large uses exponent", Float(1e16), "1e+16"},
		{"zero", Float(0), "0.0"},
		{"nan", Float(math.NaN()), "nan"},
		{"inf", Float(math.Inf(1)), "inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProduct_Order(t *testing.T) {
	params := []Param{
		Ints("a", 1, 2),
		Ints("b", 10, 20, 30),
		{Name: "c", Values: []Value{Float(0.5), Float(0.25)}},
	}

	got := Product(params...)
	if len(got) != 12 {
		t.Fatalf("len(Product) = %d, want 12", len(got))
	}

	// tuple i decodes as mixed-radix digits with the last param fastest
	i := 0
	for _, a := range params[0].Values {
		for _, b := range params[1].Values {
			for _, c := range params[2].Values {
				want := FormatLine([]Value{a, b, c})
				if line := FormatLine(got[i]); line != want {
					t.Errorf("tuple %d = %q, want %q", i, line, want)
				}
				i++
			}
		}
	}
}

func TestProduct_SingletonsAndFour(t *testing.T) {
	params := []Param{
		Ints("num_nodes", 500),
		Ints("num_groups", 2),
		Ints("n_cavi", 2),
		Ints("delta_pi", 1),
		Ints("delta_rho", 1),
		{Name: "delta_lam", Values: []Value{Int(1), Float(1e-1), Float(1e-3), Float(1e-5)}},
	}

	if got := Count(params...); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}

	var buf bytes.Buffer
	if err := WriteLines(&buf, Product(params...)); err != nil {
		t.Fatalf("WriteLines() error = %v", err)
	}
	want := "500 2 2 1 1 1\n" +
		"500 2 2 1 1 0.1\n" +
		"500 2 2 1 1 0.001\n" +
		"500 2 2 1 1 1e-05\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteLines() mismatch (-want +got):\n%s", diff)
	}

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		if n := len(strings.Fields(line)); n != 6 {
			t.Errorf("line %q has %d fields, want 6", line, n)
		}
	}
}

func TestProduct_Empty(t *testing.T) {
	tests := []struct {
		name   string
		params []Param
	}{
		{"no params", nil},
		{"one empty enumeration", []Param{Ints("a", 1, 2), Ints("b")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.params...); got != 0 {
				t.Errorf("Count() = %d, want 0", got)
			}
			if got := Product(tt.params...); len(got) != 0 {
				t.Errorf("Product() = %v, want empty", got)
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteLines_PropagatesError(t *testing.T) {
	tuples := Product(Ints("a", 1, 2, 3))
	if err := WriteLines(failingWriter{}, tuples); err == nil {
		t.Error("expected write error to propagate")
	}
}
