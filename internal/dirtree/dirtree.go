// Package dirtree reconstructs the storage/stream hierarchy of a compound
// document from its flat directory table.
//
// Each storage entry points at one child; the rest of its children hang off
// that child through a binary tree of left/right sibling links. The walk is
// iterative with an explicit stack and tracks visited entries in a bitmap, so
// a malformed table with shared or cyclic links is rejected instead of looping.
package dirtree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/vpxkit/internal/format"
)

var (
	// ErrNoRoot indicates the directory table has no root entry.
	ErrNoRoot = errors.New("dirtree: missing root entry")
	// ErrMultipleRoots indicates more than one root entry.
	ErrMultipleRoots = errors.New("dirtree: multiple root entries")
	// ErrBadIndex indicates a sibling or child link outside the table or to an empty entry.
	ErrBadIndex = errors.New("dirtree: invalid entry link")
	// ErrRevisit indicates an entry reachable along two paths (shared subtree or cycle).
	ErrRevisit = errors.New("dirtree: entry linked more than once")
)

const (
	// initialStackCapacity covers the sibling-tree depth of typical documents.
	initialStackCapacity = 32

	bitsPerWord = 64
)

// Node is one storage or stream of the hierarchy.
type Node struct {
	Index int32
	Entry format.DirEntry

	// Storages and Streams list children in sibling-tree order.
	Storages []*Node
	Streams  []*Node

	byName map[string]*Node
}

// Name returns the entry name.
func (n *Node) Name() string { return n.Entry.Name }

// IsStorage reports whether the node can hold children.
func (n *Node) IsStorage() bool { return n.Entry.IsStorage() }

// Child looks a direct child up by name. Exact matches win; otherwise the
// comparison is case-insensitive, as the container treats names, and the
// first match in Storages then Streams order is returned.
func (n *Node) Child(name string) (*Node, bool) {
	if c, ok := n.byName[name]; ok {
		return c, true
	}
	for _, group := range [][]*Node{n.Storages, n.Streams} {
		for _, c := range group {
			if strings.EqualFold(c.Name(), name) {
				return c, true
			}
		}
	}
	return nil, false
}

// Len returns the number of direct children.
func (n *Node) Len() int { return len(n.Storages) + len(n.Streams) }

// Decode splits raw directory sectors into entries. Trailing bytes that do not
// form a whole entry are ignored.
func Decode(raw []byte) ([]format.DirEntry, error) {
	entries := make([]format.DirEntry, 0, len(raw)/format.DirEntrySize)
	for off := 0; off+format.DirEntrySize <= len(raw); off += format.DirEntrySize {
		e, err := format.DecodeDirEntry(raw[off : off+format.DirEntrySize])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(entries), err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// FindRoot returns the index of the single root entry.
func FindRoot(entries []format.DirEntry) (int32, error) {
	root := int32(-1)
	for i, e := range entries {
		if e.Kind != format.KindRoot {
			continue
		}
		if root >= 0 {
			return 0, fmt.Errorf("%w: entries %d and %d", ErrMultipleRoots, root, i)
		}
		root = int32(i)
	}
	if root < 0 {
		return 0, ErrNoRoot
	}
	return root, nil
}

// Build locates the root and links every reachable entry below it.
func Build(entries []format.DirEntry) (*Node, error) {
	rootIdx, err := FindRoot(entries)
	if err != nil {
		return nil, err
	}
	visited := newBitmap(len(entries))
	visited.set(rootIdx)

	root := newNode(rootIdx, entries[rootIdx])
	pending := []*Node{root}
	for len(pending) > 0 {
		parent := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		children, err := siblings(entries, parent.Entry.Child, visited)
		if err != nil {
			return nil, fmt.Errorf("storage %q: %w", parent.Name(), err)
		}
		for _, idx := range children {
			child := newNode(idx, entries[idx])
			parent.byName[child.Name()] = child
			if child.IsStorage() {
				parent.Storages = append(parent.Storages, child)
				pending = append(pending, child)
			} else {
				parent.Streams = append(parent.Streams, child)
			}
		}
	}
	return root, nil
}

func newNode(idx int32, e format.DirEntry) *Node {
	n := &Node{Index: idx, Entry: e}
	if e.IsStorage() {
		n.byName = make(map[string]*Node)
	}
	return n
}

// siblings returns the entries of the sibling tree rooted at start, in
// in-order (left, self, right).
func siblings(entries []format.DirEntry, start int32, visited *bitmap) ([]int32, error) {
	var out []int32
	stack := make([]int32, 0, initialStackCapacity)
	cur := start
	for cur != format.NoStream || len(stack) > 0 {
		for cur != format.NoStream {
			if cur < 0 || int(cur) >= len(entries) || entries[cur].Kind == format.KindEmpty {
				return nil, fmt.Errorf("%w: %d", ErrBadIndex, cur)
			}
			if entries[cur].Kind == format.KindRoot {
				return nil, fmt.Errorf("%w: %d links to the root", ErrBadIndex, cur)
			}
			if visited.isSet(cur) {
				return nil, fmt.Errorf("%w: %d", ErrRevisit, cur)
			}
			visited.set(cur)
			stack = append(stack, cur)
			cur = entries[cur].Left
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		cur = entries[cur].Right
	}
	return out, nil
}

// bitmap tracks visited entry indices.
type bitmap struct {
	bits []uint64
}

func newBitmap(n int) *bitmap {
	return &bitmap{bits: make([]uint64, (n+bitsPerWord-1)/bitsPerWord)}
}

func (b *bitmap) set(i int32) {
	b.bits[i/bitsPerWord] |= 1 << (uint(i) % bitsPerWord)
}

func (b *bitmap) isSet(i int32) bool {
	return b.bits[i/bitsPerWord]&(1<<(uint(i)%bitsPerWord)) != 0
}
