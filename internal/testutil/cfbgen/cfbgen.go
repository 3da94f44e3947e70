// Package cfbgen builds small compound documents in memory for tests. It lays
// out sectors in a fixed order (allocation table, directory, short allocation
// table, mini-stream, big streams) and supports only documents whose
// allocation table fits in the header's master slots.
package cfbgen

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/joshuapare/vpxkit/internal/format"
	"golang.org/x/text/encoding/unicode"
)

// Builder accumulates storages and streams.
type Builder struct {
	SectorShift      uint16
	ShortSectorShift uint16
	Threshold        uint32
	// Prefix is written before the header.
	Prefix []byte
	// Fragment lays out every big stream's sectors in descending physical
	// order, so no two consecutive chain sectors are adjacent on disk.
	Fragment bool

	root *node
}

type node struct {
	name     string
	storage  bool
	data     []byte
	children map[string]*node

	index int32
	start int32
}

// New returns a builder with 512-byte sectors, 64-byte short sectors and
// the standard 4096-byte short stream threshold.
func New() *Builder {
	return &Builder{
		SectorShift:      9,
		ShortSectorShift: 6,
		Threshold:        4096,
		root:             &node{name: "Root Entry", storage: true, children: map[string]*node{}},
	}
}

// Storage creates the storages along path ("a/b/c").
func (b *Builder) Storage(path string) *Builder {
	b.dir(strings.Split(path, "/"))
	return b
}

// Stream adds a stream at path, creating parent storages.
func (b *Builder) Stream(path string, data []byte) *Builder {
	parts := strings.Split(path, "/")
	parent := b.dir(parts[:len(parts)-1])
	name := parts[len(parts)-1]
	parent.children[name] = &node{name: name, data: data}
	return b
}

func (b *Builder) dir(parts []string) *node {
	cur := b.root
	for _, p := range parts {
		if p == "" {
			continue
		}
		next, ok := cur.children[p]
		if !ok {
			next = &node{name: p, storage: true, children: map[string]*node{}}
			cur.children[p] = next
		}
		cur = next
	}
	return cur
}

// Bytes renders the document.
func (b *Builder) Bytes() []byte {
	secSize := 1 << b.SectorShift
	shortSize := 1 << b.ShortSectorShift
	slotsPerSector := secSize / 4

	// Number every entry, root first.
	var order []*node
	var number func(n *node)
	number = func(n *node) {
		n.index = int32(len(order))
		order = append(order, n)
		for _, c := range sortedChildren(n) {
			number(c)
		}
	}
	number(b.root)

	// Short streams go into the mini-stream.
	var mini []byte
	var shortFAT []int32
	var big []*node
	for _, n := range order[1:] {
		n.start = format.EndOfChain
		if n.storage || len(n.data) == 0 {
			continue
		}
		if uint32(len(n.data)) < b.Threshold {
			n.start = int32(len(shortFAT))
			count := ceilDiv(len(n.data), shortSize)
			for i := 0; i < count; i++ {
				shortFAT = append(shortFAT, int32(len(shortFAT))+1)
			}
			shortFAT[len(shortFAT)-1] = format.EndOfChain
			padded := make([]byte, count*shortSize)
			copy(padded, n.data)
			mini = append(mini, padded...)
			continue
		}
		big = append(big, n)
	}

	dirSectors := ceilDiv(len(order)*format.DirEntrySize, secSize)
	shortFATSectors := ceilDiv(len(shortFAT)*4, secSize)
	miniSectors := ceilDiv(len(mini), secSize)
	bigSectors := 0
	for _, n := range big {
		bigSectors += ceilDiv(len(n.data), secSize)
	}
	used := dirSectors + shortFATSectors + miniSectors + bigSectors
	fatSectors := 1
	for fatSectors*slotsPerSector < used+fatSectors {
		fatSectors++
	}
	if fatSectors > format.MasterHeadEntries {
		panic("cfbgen: document too large for header master slots")
	}
	total := fatSectors + used

	fat := make([]int32, fatSectors*slotsPerSector)
	for i := range fat {
		fat[i] = format.FreeSect
	}
	for i := 0; i < fatSectors; i++ {
		fat[i] = format.FATSect
	}
	next := fatSectors
	chain := func(count int) int32 {
		if count == 0 {
			return format.EndOfChain
		}
		start := next
		for i := 0; i < count-1; i++ {
			fat[start+i] = int32(start + i + 1)
		}
		fat[start+count-1] = format.EndOfChain
		next += count
		return int32(start)
	}
	dirStart := chain(dirSectors)
	shortFATStart := chain(shortFATSectors)
	miniStart := chain(miniSectors)
	for _, n := range big {
		count := ceilDiv(len(n.data), secSize)
		if !b.Fragment || count == 1 {
			n.start = chain(count)
			continue
		}
		// Chain runs from the highest sector down to the lowest.
		first := next
		for i := 0; i < count; i++ {
			id := first + count - 1 - i
			if i == count-1 {
				fat[id] = format.EndOfChain
			} else {
				fat[id] = int32(id - 1)
			}
		}
		n.start = int32(first + count - 1)
		next += count
	}

	out := make([]byte, len(b.Prefix)+secSize*(total+1))
	copy(out, b.Prefix)
	body := out[len(b.Prefix):]
	sector := func(id int) []byte { return body[(id+1)*secSize : (id+2)*secSize] }

	// Header.
	hdr := body[:format.HeaderSize]
	copy(hdr, format.Signature)
	binary.LittleEndian.PutUint16(hdr[0x18:], 0x3e)
	binary.LittleEndian.PutUint16(hdr[0x1A:], 3)
	binary.LittleEndian.PutUint16(hdr[0x1C:], 0xfffe)
	binary.LittleEndian.PutUint16(hdr[format.HeaderSectorShiftOffset:], b.SectorShift)
	binary.LittleEndian.PutUint16(hdr[format.HeaderShortShiftOffset:], b.ShortSectorShift)
	binary.LittleEndian.PutUint32(hdr[format.HeaderFATCountOffset:], uint32(fatSectors))
	putI32(hdr[format.HeaderDirStartOffset:], dirStart)
	binary.LittleEndian.PutUint32(hdr[format.HeaderThresholdOffset:], b.Threshold)
	putI32(hdr[format.HeaderShortFATStart:], shortFATStart)
	binary.LittleEndian.PutUint32(hdr[format.HeaderShortFATCount:], uint32(shortFATSectors))
	putI32(hdr[format.HeaderMasterStartOffset:], format.EndOfChain)
	for i := 0; i < format.MasterHeadEntries; i++ {
		id := format.FreeSect
		if i < fatSectors {
			id = int32(i)
		}
		putI32(hdr[format.HeaderMasterHeadOffset+i*4:], id)
	}

	// Allocation table.
	for i, v := range fat {
		putI32(sector(i / slotsPerSector)[(i%slotsPerSector)*4:], v)
	}

	// Directory.
	b.root.start = miniStart
	dirBytes := make([]byte, dirSectors*secSize)
	for i := 0; i < len(dirBytes)/format.DirEntrySize; i++ {
		e := dirBytes[i*format.DirEntrySize:]
		putI32(e[format.DirLeftOffset:], format.NoStream)
		putI32(e[format.DirRightOffset:], format.NoStream)
		putI32(e[format.DirChildOffset:], format.NoStream)
	}
	for _, n := range order {
		e := dirBytes[int(n.index)*format.DirEntrySize:]
		writeEntry(e, n)
	}
	b.root.data = nil
	rootEntry := dirBytes[:format.DirEntrySize]
	binary.LittleEndian.PutUint32(rootEntry[format.DirSizeOffset:], uint32(len(mini)))
	// Sibling trees.
	for _, n := range order {
		if !n.storage {
			continue
		}
		kids := sortedChildren(n)
		putI32(dirBytes[int(n.index)*format.DirEntrySize+format.DirChildOffset:], balance(dirBytes, kids))
	}
	writeChain(body, secSize, int(dirStart), dirBytes)

	// Short allocation table.
	if shortFATSectors > 0 {
		raw := make([]byte, shortFATSectors*secSize)
		for i := range raw[:len(raw)/4] {
			v := format.FreeSect
			if i < len(shortFAT) {
				v = shortFAT[i]
			}
			putI32(raw[i*4:], v)
		}
		writeChain(body, secSize, int(shortFATStart), raw)
	}
	if miniSectors > 0 {
		writeChain(body, secSize, int(miniStart), mini)
	}
	for _, n := range big {
		id := n.start
		for off := 0; off < len(n.data); off += secSize {
			copy(sector(int(id)), n.data[off:])
			id = fat[id]
		}
	}
	return out
}

func writeEntry(e []byte, n *node) {
	name, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(n.name))
	if err != nil || len(name)+2 > format.DirNameMaxSize {
		panic(fmt.Sprintf("cfbgen: bad name %q", n.name))
	}
	copy(e[format.DirNameOffset:], name)
	binary.LittleEndian.PutUint16(e[format.DirNameLenOffset:], uint16(len(name)+2))
	switch {
	case n.index == 0:
		e[format.DirKindOffset] = byte(format.KindRoot)
	case n.storage:
		e[format.DirKindOffset] = byte(format.KindStorage)
	default:
		e[format.DirKindOffset] = byte(format.KindStream)
	}
	e[format.DirColorOffset] = 1
	putI32(e[format.DirStartOffset:], n.start)
	binary.LittleEndian.PutUint32(e[format.DirSizeOffset:], uint32(len(n.data)))
}

// balance links kids into a balanced sibling tree and returns its root index.
func balance(dir []byte, kids []*node) int32 {
	if len(kids) == 0 {
		return format.NoStream
	}
	mid := len(kids) / 2
	e := dir[int(kids[mid].index)*format.DirEntrySize:]
	putI32(e[format.DirLeftOffset:], balance(dir, kids[:mid]))
	putI32(e[format.DirRightOffset:], balance(dir, kids[mid+1:]))
	return kids[mid].index
}

func writeChain(body []byte, secSize, start int, data []byte) {
	copy(body[(start+1)*secSize:], data)
}

func sortedChildren(n *node) []*node {
	kids := make([]*node, 0, len(n.children))
	for _, c := range n.children {
		kids = append(kids, c)
	}
	sort.Slice(kids, func(i, j int) bool {
		a, b := strings.ToUpper(kids[i].name), strings.ToUpper(kids[j].name)
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return kids
}

func putI32(b []byte, v int32) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
