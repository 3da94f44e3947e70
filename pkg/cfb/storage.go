package cfb

import (
	"fmt"

	"github.com/joshuapare/vpxkit/internal/buf"
	"github.com/joshuapare/vpxkit/internal/dirtree"
	"github.com/joshuapare/vpxkit/internal/format"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// ToEnd as a length selects everything from the offset to the end of the stream.
const ToEnd int64 = -1

// Kind is the directory entry type.
type Kind = format.Kind

// Entry kinds.
const (
	KindStorage = format.KindStorage
	KindStream  = format.KindStream
	KindRoot    = format.KindRoot
)

// Entry describes a storage or stream.
type Entry struct {
	Name  string
	Kind  Kind
	Size  int64
	Short bool // stored in the short sector pool
	Start int32
}

// Storage is a node of the document hierarchy. It is a lightweight handle;
// resolving the same path twice yields equivalent values.
type Storage struct {
	doc  *Document
	node *dirtree.Node
}

// Name returns the storage name ("Root Entry" for the root).
func (s *Storage) Name() string { return s.node.Name() }

// Storages lists child storage names in directory order.
func (s *Storage) Storages() []string {
	out := make([]string, 0, len(s.node.Storages))
	for _, c := range s.node.Storages {
		out = append(out, c.Name())
	}
	return out
}

// Streams lists child stream names in directory order.
func (s *Storage) Streams() []string {
	out := make([]string, 0, len(s.node.Streams))
	for _, c := range s.node.Streams {
		out = append(out, c.Name())
	}
	return out
}

// Storage returns the named child storage.
func (s *Storage) Storage(name string) (*Storage, error) {
	if err := s.doc.ensureOpen(); err != nil {
		return nil, err
	}
	c, ok := s.node.Child(name)
	if !ok || !c.IsStorage() {
		return nil, types.Errorf(types.ErrKindNotFound, "storage %q not found in %q", name, s.Name())
	}
	return &Storage{doc: s.doc, node: c}, nil
}

// Stat describes the named child stream.
func (s *Storage) Stat(name string) (Entry, error) {
	n, err := s.stream(name)
	if err != nil {
		return Entry{}, err
	}
	return s.doc.entry(n), nil
}

// Has reports whether the named child stream exists.
func (s *Storage) Has(name string) bool {
	c, ok := s.node.Child(name)
	return ok && !c.IsStorage()
}

// Read returns length bytes of the named stream starting at offset. A length
// of ToEnd reads to the end of the stream.
func (s *Storage) Read(name string, offset, length int64) ([]byte, error) {
	v, err := s.view(name)
	if err != nil {
		return nil, err
	}
	length, err = v.window(offset, length)
	if err != nil {
		return nil, err
	}
	return v.readRange(offset, length)
}

// ReadAll returns the whole named stream.
func (s *Storage) ReadAll(name string) ([]byte, error) {
	return s.Read(name, 0, ToEnd)
}

// Stream returns a pull-based chunk sequence over [offset, offset+length) of
// the named stream. Each chunk is at most one sector.
func (s *Storage) Stream(name string, offset, length int64) (*Chunks, error) {
	v, err := s.view(name)
	if err != nil {
		return nil, err
	}
	length, err = v.window(offset, length)
	if err != nil {
		return nil, err
	}
	return &Chunks{v: v, pos: offset, end: offset + length}, nil
}

func (s *Storage) stream(name string) (*dirtree.Node, error) {
	if err := s.doc.ensureOpen(); err != nil {
		return nil, err
	}
	c, ok := s.node.Child(name)
	if !ok || c.IsStorage() {
		return nil, types.Errorf(types.ErrKindNotFound, "stream %q not found in %q", name, s.Name())
	}
	return c, nil
}

func (s *Storage) view(name string) (*streamView, error) {
	n, err := s.stream(name)
	if err != nil {
		return nil, err
	}
	return s.doc.view(n)
}

func (d *Document) entry(n *dirtree.Node) Entry {
	return Entry{
		Name:  n.Name(),
		Kind:  n.Entry.Kind,
		Size:  int64(n.Entry.Size),
		Short: !n.IsStorage() && d.isShort(n),
		Start: n.Entry.StartSector,
	}
}

// window validates [offset, offset+length) against the stream and resolves
// ToEnd.
func (v *streamView) window(offset, length int64) (int64, error) {
	if length == ToEnd && offset >= 0 && offset <= v.size {
		length = v.size - offset
	}
	if err := buf.CheckRange(offset, length, v.size); err != nil {
		return 0, &types.Error{Kind: types.ErrKindRange, Msg: fmt.Sprintf("stream %q", v.name), Err: err}
	}
	return length, nil
}
