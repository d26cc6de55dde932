// Package npy reads and writes single arrays in the NumPy .npy format.
//
// Only what the simulation artifacts need is supported: little-endian
// float64 ('<f8') and int64 ('<i8') data in C order. Files are written as
// format version 1.0 with the header padded to a 64-byte boundary, the
// same layout numpy.save produces.
package npy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DType identifies the element type of an array.
type DType string

// Supported element types, spelled as numpy array-protocol type strings.
const (
	Float64 DType = "<f8"
	Int64   DType = "<i8"
)

// Array is an n-dimensional array in C order.
// Exactly one of F64 and I64 is populated, matching DType.
type Array struct {
	DType DType
	Shape []int
	F64   []float64
	I64   []int64
}

// maxElements bounds the element count so the byte size fits in an int.
const maxElements = math.MaxInt / 8

// NewFloat64 returns a float64 array with the given shape.
func NewFloat64(shape []int, data []float64) (Array, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return Array{}, err
	}
	return Array{DType: Float64, Shape: copyShape(shape), F64: append([]float64(nil), data...)}, nil
}

// NewInt64 returns an int64 array with the given shape.
func NewInt64(shape []int, data []int64) (Array, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return Array{}, err
	}
	return Array{DType: Int64, Shape: copyShape(shape), I64: append([]int64(nil), data...)}, nil
}

// FromDense converts a gonum matrix to a 2-D float64 array.
func FromDense(m *mat.Dense) Array {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return Array{DType: Float64, Shape: []int{r, c}, F64: data}
}

// Dense converts a 2-D float64 array back to a gonum matrix.
func (a Array) Dense() (*mat.Dense, error) {
	if a.DType != Float64 || len(a.Shape) != 2 {
		return nil, fmt.Errorf("array %s%v is not a 2-D float64 matrix", a.DType, a.Shape)
	}
	return mat.NewDense(a.Shape[0], a.Shape[1], append([]float64(nil), a.F64...)), nil
}

// Len returns the number of elements.
func (a Array) Len() int {
	return numElements(a.Shape)
}

func checkLen(shape []int, got int) error {
	n, err := elementCount(shape)
	if err != nil {
		return err
	}
	if n != got {
		return fmt.Errorf("shape %v needs %d elements, got %d", shape, n, got)
	}
	return nil
}

// elementCount is the product of the dimensions, rejecting negative
// dimensions and products above maxElements.
func elementCount(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("shape %v has a negative dimension", shape)
		}
		if d != 0 && n > maxElements/d {
			return 0, fmt.Errorf("shape %v is too large", shape)
		}
		n *= d
	}
	return n, nil
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func copyShape(shape []int) []int {
	return append(make([]int, 0, len(shape)), shape...)
}
