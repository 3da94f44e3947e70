// Package source provides types.ByteSource implementations: a memory-mapped
// file and an in-memory buffer.
package source

import (
	"fmt"
	"io"

	"github.com/joshuapare/vpxkit/internal/mmfile"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// File is a byte source backed by a read-only mapping of a file. The mapping
// is created by Open and released by Close.
type File struct {
	path  string
	data  []byte
	unmap func() error
	open  bool
}

var _ types.ByteSource = (*File)(nil)

// NewFile returns an unopened source for path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Open maps the file. Opening an open source is a no-op.
func (f *File) Open() error {
	if f.open {
		return nil
	}
	data, unmap, err := mmfile.Map(f.path)
	if err != nil {
		return types.Wrap(types.ErrKindIO, fmt.Sprintf("open %s", f.path), err)
	}
	f.data, f.unmap, f.open = data, unmap, true
	return nil
}

// Close releases the mapping. Closing a closed source is a no-op.
func (f *File) Close() error {
	if !f.open {
		return nil
	}
	f.open = false
	f.data = nil
	unmap := f.unmap
	f.unmap = nil
	if unmap != nil {
		return unmap()
	}
	return nil
}

// IsOpen reports whether the mapping is live.
func (f *File) IsOpen() bool { return f.open }

// Size returns the mapped size, or 0 when closed.
func (f *File) Size() int64 { return int64(len(f.data)) }

// ReadAt implements io.ReaderAt over the mapping.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if !f.open {
		return 0, types.ErrClosed
	}
	return readAt(f.data, p, off)
}

// Bytes is a byte source over an in-memory buffer. Open and Close only toggle
// state; the buffer is never copied.
type Bytes struct {
	data []byte
	open bool
}

var _ types.ByteSource = (*Bytes)(nil)

// NewBytes wraps b.
func NewBytes(b []byte) *Bytes {
	return &Bytes{data: b}
}

// Open marks the buffer readable.
func (b *Bytes) Open() error {
	b.open = true
	return nil
}

// Close marks the buffer unreadable.
func (b *Bytes) Close() error {
	b.open = false
	return nil
}

// IsOpen reports whether the buffer is readable.
func (b *Bytes) IsOpen() bool { return b.open }

// Size returns the buffer length.
func (b *Bytes) Size() int64 { return int64(len(b.data)) }

// ReadAt implements io.ReaderAt over the buffer.
func (b *Bytes) ReadAt(p []byte, off int64) (int, error) {
	if !b.open {
		return 0, types.ErrClosed
	}
	return readAt(b.data, p, off)
}

func readAt(data, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("source: negative offset %d", off)
	}
	if off >= int64(len(data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
