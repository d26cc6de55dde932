package npy

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Header is the parsed descriptor of a .npy file.
type Header struct {
	Major        byte
	Minor        byte
	DType        DType
	FortranOrder bool
	Shape        []int
}

// ReadHeader reads the magic string and header dict from r, leaving r
// positioned at the start of the data.
func ReadHeader(r io.Reader) (Header, error) {
	var prefix [len(magic) + 2]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return Header{}, fmt.Errorf("reading magic: %w", err)
	}
	if string(prefix[:len(magic)]) != magic {
		return Header{}, fmt.Errorf("not a .npy file: bad magic %q", prefix[:len(magic)])
	}
	h := Header{Major: prefix[len(magic)], Minor: prefix[len(magic)+1]}

	var hlen int
	switch h.Major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return Header{}, fmt.Errorf("reading header length: %w", err)
		}
		hlen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return Header{}, fmt.Errorf("reading header length: %w", err)
		}
		hlen = int(n)
	default:
		return Header{}, fmt.Errorf("unsupported format version %d.%d", h.Major, h.Minor)
	}

	raw := make([]byte, hlen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return Header{}, fmt.Errorf("reading header: %w", err)
	}
	if err := parseHeaderDict(strings.TrimSpace(string(raw)), &h); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Decode reads one array from r.
func Decode(r io.Reader) (Array, error) {
	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return Array{}, err
	}
	if h.FortranOrder {
		return Array{}, fmt.Errorf("fortran-ordered arrays are not supported")
	}

	n, err := elementCount(h.Shape)
	if err != nil {
		return Array{}, err
	}

	a := Array{DType: h.DType, Shape: h.Shape}
	switch h.DType {
	case Float64:
		a.F64, err = readElements(br, n, math.Float64frombits)
		if err != nil {
			return Array{}, fmt.Errorf("reading float64 data: %w", err)
		}
	case Int64:
		a.I64, err = readElements(br, n, func(u uint64) int64 { return int64(u) })
		if err != nil {
			return Array{}, fmt.Errorf("reading int64 data: %w", err)
		}
	default:
		return Array{}, fmt.Errorf("unsupported dtype %q", h.DType)
	}
	return a, nil
}

// readChunk is the number of elements read per call, so memory grows with
// the data actually present rather than with the shape a header claims.
const readChunk = 4096

func readElements[T any](r io.Reader, n int, conv func(uint64) T) ([]T, error) {
	out := make([]T, 0, min(n, readChunk))
	buf := make([]byte, 8*min(n, readChunk))
	for len(out) < n {
		k := min(n-len(out), readChunk)
		chunk := buf[:8*k]
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, err
		}
		for i := 0; i < k; i++ {
			out = append(out, conv(binary.LittleEndian.Uint64(chunk[8*i:])))
		}
	}
	return out, nil
}

// parseHeaderDict parses the Python dict literal numpy writes, e.g.
// {'descr': '<f8', 'fortran_order': False, 'shape': (2, 2), }
func parseHeaderDict(s string, h *Header) error {
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return fmt.Errorf("malformed header %q", s)
	}
	body := s[1 : len(s)-1]

	var seenDescr, seenOrder, seenShape bool
	for len(strings.TrimSpace(body)) > 0 {
		body = strings.TrimSpace(body)
		key, rest, err := quoted(body)
		if err != nil {
			return fmt.Errorf("header key: %w", err)
		}
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, ":") {
			return fmt.Errorf("header: missing ':' after %q", key)
		}
		rest = strings.TrimSpace(rest[1:])

		switch key {
		case "descr":
			v, tail, err := quoted(rest)
			if err != nil {
				return fmt.Errorf("descr: %w", err)
			}
			h.DType = DType(v)
			rest = tail
			seenDescr = true
		case "fortran_order":
			switch {
			case strings.HasPrefix(rest, "False"):
				h.FortranOrder = false
				rest = rest[len("False"):]
			case strings.HasPrefix(rest, "True"):
				h.FortranOrder = true
				rest = rest[len("True"):]
			default:
				return fmt.Errorf("fortran_order: expected boolean in %q", rest)
			}
			seenOrder = true
		case "shape":
			shape, tail, err := parseTuple(rest)
			if err != nil {
				return fmt.Errorf("shape: %w", err)
			}
			h.Shape = shape
			rest = tail
			seenShape = true
		default:
			return fmt.Errorf("unexpected header key %q", key)
		}

		rest = strings.TrimSpace(rest)
		rest = strings.TrimPrefix(rest, ",")
		body = rest
	}

	if !seenDescr || !seenOrder || !seenShape {
		return fmt.Errorf("header %q is missing required keys", s)
	}
	return nil
}

func quoted(s string) (string, string, error) {
	if len(s) == 0 || (s[0] != '\'' && s[0] != '"') {
		return "", "", fmt.Errorf("expected quoted string at %q", s)
	}
	end := strings.IndexByte(s[1:], s[0])
	if end < 0 {
		return "", "", fmt.Errorf("unterminated string at %q", s)
	}
	return s[1 : end+1], s[end+2:], nil
}

func parseTuple(s string) ([]int, string, error) {
	if !strings.HasPrefix(s, "(") {
		return nil, "", fmt.Errorf("expected tuple at %q", s)
	}
	end := strings.IndexByte(s, ')')
	if end < 0 {
		return nil, "", fmt.Errorf("unterminated tuple at %q", s)
	}
	shape := []int{}
	for _, part := range strings.Split(s[1:end], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, "", fmt.Errorf("bad dimension %q: %w", part, err)
		}
		if d < 0 {
			return nil, "", fmt.Errorf("negative dimension %d", d)
		}
		shape = append(shape, d)
	}
	return shape, s[end+1:], nil
}
