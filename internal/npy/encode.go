package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	magic = "\x93NUMPY"

	// arrayAlign is the boundary the data section starts on.
	arrayAlign = 64

	// growthAxisMaxDigits reserves header room so numpy can grow the
	// leading axis in place.
	growthAxisMaxDigits = 21
)

// Encode writes a as a version 1.0 .npy file.
func Encode(w io.Writer, a Array) error {
	if err := a.check(); err != nil {
		return err
	}

	header := formatHeader(a.DType, a.Shape)
	// magic(6) + version(2) + uint16 length(2)
	prefixLen := len(magic) + 2 + 2
	hlen := len(header) + 1
	// numpy pads a full block when already aligned; match it.
	pad := arrayAlign - (prefixLen+hlen)%arrayAlign
	total := hlen + pad
	if total > math.MaxUint16 {
		return fmt.Errorf("header too long for format 1.0: %d bytes", total)
	}

	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(1)
	buf.WriteByte(0)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(total))
	buf.WriteString(header)
	buf.WriteString(strings.Repeat(" ", pad))
	buf.WriteByte('\n')

	switch a.DType {
	case Float64:
		for _, v := range a.F64 {
			_ = binary.Write(&buf, binary.LittleEndian, math.Float64bits(v))
		}
	case Int64:
		for _, v := range a.I64 {
			_ = binary.Write(&buf, binary.LittleEndian, v)
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing array: %w", err)
	}
	return nil
}

// formatHeader renders the header dict the way numpy does: keys sorted,
// Python tuple syntax for the shape, and trailing spaces reserved for the
// growth axis.
func formatHeader(dtype DType, shape []int) string {
	var sb strings.Builder
	sb.WriteString("{'descr': '")
	sb.WriteString(string(dtype))
	sb.WriteString("', 'fortran_order': False, 'shape': ")
	sb.WriteString(formatShape(shape))
	sb.WriteString(", }")
	if len(shape) > 0 {
		sb.WriteString(strings.Repeat(" ", growthAxisMaxDigits-len(strconv.Itoa(shape[0]))))
	}
	return sb.String()
}

func formatShape(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return "(" + strconv.Itoa(shape[0]) + ",)"
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (a Array) check() error {
	switch a.DType {
	case Float64:
		return checkLen(a.Shape, len(a.F64))
	case Int64:
		return checkLen(a.Shape, len(a.I64))
	default:
		return fmt.Errorf("unsupported dtype %q", a.DType)
	}
}
