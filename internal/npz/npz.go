// Package npz writes and reads NumPy .npz archives: a zip container with one
// stored .npy member per named array, laid out as numpy.savez does.
package npz

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/nvandessel/simgen/internal/constants"
	"github.com/nvandessel/simgen/internal/npy"
)

const memberSuffix = ".npy"

// Entry is a named array destined for an archive.
type Entry struct {
	Name  string
	Array npy.Array
}

// Writer appends named arrays to a zip stream. Members are stored
// uncompressed and carry no timestamp so identical input gives identical
// bytes.
type Writer struct {
	zw    *zip.Writer
	names map[string]bool
}

// NewWriter returns a Writer writing the archive to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w), names: make(map[string]bool)}
}

// Add writes a as member <name>.npy.
func (w *Writer) Add(name string, a npy.Array) error {
	if name == "" {
		return fmt.Errorf("array name is empty")
	}
	if w.names[name] {
		return fmt.Errorf("duplicate array name %q", name)
	}
	w.names[name] = true

	fw, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   name + memberSuffix,
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("creating member %s: %w", name, err)
	}
	if err := npy.Encode(fw, a); err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return nil
}

// Close writes the zip central directory. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	return w.zw.Close()
}

// Encode returns the archive bytes for entries, in order.
func Encode(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, e := range entries {
		if err := w.Add(e.Name, e.Array); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile creates or overwrites path with an archive of entries.
// The parent directory is created if missing.
func WriteFile(path string, entries []Entry) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, constants.FilePerm); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	return nil
}

// Reader gives access to the arrays of an archive by name.
type Reader struct {
	zr      *zip.Reader
	closer  io.Closer
	members map[string]*zip.File
	names   []string
}

// NewReader reads an archive of the given size from r.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return newReader(zr, nil), nil
}

// Open opens the archive at path. Callers must Close it.
func Open(path string) (*Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return newReader(&rc.Reader, rc), nil
}

func newReader(zr *zip.Reader, closer io.Closer) *Reader {
	r := &Reader{zr: zr, closer: closer, members: make(map[string]*zip.File)}
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, memberSuffix)
		r.members[name] = f
		r.names = append(r.names, name)
	}
	return r
}

// Names returns the array names in archive order.
func (r *Reader) Names() []string {
	return append([]string(nil), r.names...)
}

// Read decodes the named array.
func (r *Reader) Read(name string) (npy.Array, error) {
	f, ok := r.members[name]
	if !ok {
		return npy.Array{}, fmt.Errorf("array %q not in archive", name)
	}
	rc, err := f.Open()
	if err != nil {
		return npy.Array{}, fmt.Errorf("opening member %s: %w", name, err)
	}
	defer rc.Close()

	a, err := npy.Decode(rc)
	if err != nil {
		return npy.Array{}, fmt.Errorf("decoding %s: %w", name, err)
	}
	return a, nil
}

// ReadAll decodes every array in archive order.
func (r *Reader) ReadAll() ([]Entry, error) {
	entries := make([]Entry, 0, len(r.names))
	for _, name := range r.names {
		a, err := r.Read(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Array: a})
	}
	return entries, nil
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
