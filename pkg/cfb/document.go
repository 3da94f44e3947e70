package cfb

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joshuapare/vpxkit/internal/dirtree"
	"github.com/joshuapare/vpxkit/internal/format"
	"github.com/joshuapare/vpxkit/internal/sectors"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// Document is an open compound document. It owns the header, the regular and
// short allocation tables and the directory tree, and converts logical stream
// offsets into physical reads against its byte source.
type Document struct {
	src      types.ByteSource
	hdr      format.Header
	fat      *sectors.Table
	shortFAT *sectors.Table
	tree     *dirtree.Node
	miniRoot []int32 // regular sector chain holding the mini-stream

	secSize   int64
	shortSize int64
	skip      int64
	log       *slog.Logger

	chains map[int32][]int32 // resolved chains by directory index
	stats  Stats
	closed bool
}

// Stats counts physical reads issued against the byte source.
type Stats struct {
	Reads     int
	BytesRead int64
}

// Load parses the header, allocation tables and directory of the compound
// document in src. src is opened if necessary. On any error src is closed
// before Load returns; on success the Document owns it until Close.
func Load(src types.ByteSource, opts ...Option) (*Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !src.IsOpen() {
		if err := src.Open(); err != nil {
			_ = src.Close()
			return nil, asIOErr("open source", err)
		}
	}
	d, err := load(src, o)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return d, nil
}

func load(src types.ByteSource, o options) (*Document, error) {
	d := &Document{
		src:    src,
		skip:   o.skip,
		log:    o.logger,
		chains: make(map[int32][]int32),
	}

	raw := make([]byte, format.HeaderSize)
	if err := d.readFull(raw, d.skip); err != nil {
		return nil, asIOErr("read header", err)
	}
	hdr, err := format.ParseHeader(raw)
	if err != nil {
		return nil, structural("parse header", err)
	}
	d.hdr = hdr
	d.secSize = int64(hdr.SectorSize())
	d.shortSize = int64(hdr.ShortSectorSize())
	d.log.Debug("cfb: header parsed",
		"sector_size", d.secSize,
		"short_sector_size", d.shortSize,
		"fat_sectors", hdr.FATSectorCount,
		"short_fat_sectors", hdr.ShortFATCount,
		"master_sectors", hdr.MasterCount,
		"short_threshold", hdr.ShortStreamThreshold)

	if d.fat, err = sectors.LoadFAT(hdr, d.readSector); err != nil {
		return nil, classify("load allocation table", err)
	}
	if d.shortFAT, err = sectors.LoadShortFAT(hdr, d.fat, d.readSector); err != nil {
		return nil, classify("load short allocation table", err)
	}

	dirChain, err := d.fat.Chain(hdr.DirStartSector)
	if err != nil {
		return nil, structural("directory chain", err)
	}
	dirRaw := make([]byte, 0, len(dirChain)*int(d.secSize))
	for _, id := range dirChain {
		sec, err := d.readSector(id)
		if err != nil {
			return nil, asIOErr(fmt.Sprintf("directory sector %d", id), err)
		}
		dirRaw = append(dirRaw, sec...)
	}
	entries, err := dirtree.Decode(dirRaw)
	if err != nil {
		return nil, structural("decode directory", err)
	}
	if d.tree, err = dirtree.Build(entries); err != nil {
		return nil, structural("build directory tree", err)
	}

	root := d.tree.Entry
	if d.miniRoot, err = d.fat.Chain(root.StartSector); err != nil {
		return nil, structural("mini-stream chain", err)
	}
	if int64(len(d.miniRoot))*d.secSize < int64(root.Size) {
		return nil, types.Errorf(types.ErrKindStructural,
			"mini-stream chain of %d sectors cannot hold %d bytes", len(d.miniRoot), root.Size)
	}
	d.log.Debug("cfb: document loaded",
		"fat_slots", d.fat.Len(),
		"short_fat_slots", d.shortFAT.Len(),
		"dir_entries", len(entries),
		"mini_stream_bytes", root.Size)
	return d, nil
}

// Close releases the byte source. Closing twice is a no-op.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.chains = nil
	return d.src.Close()
}

// Header returns the parsed header.
func (d *Document) Header() format.Header { return d.hdr }

// Stats returns the physical read counters.
func (d *Document) Stats() Stats { return d.stats }

// Root returns the root storage.
func (d *Document) Root() *Storage {
	return &Storage{doc: d, node: d.tree}
}

// Storage resolves a "/" separated storage path below the root. The empty
// path is the root itself.
func (d *Document) Storage(path string) (*Storage, error) {
	if err := d.ensureOpen(); err != nil {
		return nil, err
	}
	s := d.Root()
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		next, err := s.Storage(seg)
		if err != nil {
			return nil, err
		}
		s = next
	}
	return s, nil
}

// Walk visits every storage and stream below the root depth-first, storages
// before streams at each level. Returning an error from fn stops the walk.
func (d *Document) Walk(fn func(path string, e Entry) error) error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	var walk func(prefix string, n *dirtree.Node) error
	walk = func(prefix string, n *dirtree.Node) error {
		for _, c := range n.Storages {
			p := prefix + c.Name()
			if err := fn(p, d.entry(c)); err != nil {
				return err
			}
			if err := walk(p+"/", c); err != nil {
				return err
			}
		}
		for _, c := range n.Streams {
			if err := fn(prefix+c.Name(), d.entry(c)); err != nil {
				return err
			}
		}
		return nil
	}
	return walk("", d.tree)
}

func (d *Document) ensureOpen() error {
	if d.closed {
		return types.ErrClosed
	}
	return nil
}

// sectorOffset is the physical offset of regular sector id; the header
// occupies the slot of sector -1.
func (d *Document) sectorOffset(id int32) int64 {
	return d.skip + (int64(id)+1)*d.secSize
}

// shortSectorOffset is the physical offset of short sector id inside the
// mini-stream.
func (d *Document) shortSectorOffset(id int32) (int64, error) {
	logical := int64(id) * d.shortSize
	idx := logical / d.secSize
	if idx >= int64(len(d.miniRoot)) {
		return 0, types.Errorf(types.ErrKindStructural,
			"short sector %d lies past the mini-stream (%d sectors)", id, len(d.miniRoot))
	}
	return d.sectorOffset(d.miniRoot[idx]) + logical%d.secSize, nil
}

func (d *Document) readSector(id int32) ([]byte, error) {
	b := make([]byte, d.secSize)
	if err := d.readFull(b, d.sectorOffset(id)); err != nil {
		return nil, err
	}
	return b, nil
}

// readFull fills p from off. A source that ends inside the last sector is
// tolerated: the missing tail reads as zeros.
func (d *Document) readFull(p []byte, off int64) error {
	n, err := d.src.ReadAt(p, off)
	d.stats.Reads++
	d.stats.BytesRead += int64(n)
	if err == nil || n == len(p) {
		return nil
	}
	if errors.Is(err, io.EOF) && n > 0 {
		clear(p[n:])
		return nil
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("offset %d past end of source: %w", off, io.ErrUnexpectedEOF)
	}
	return err
}

func (d *Document) chain(n *dirtree.Node) ([]int32, error) {
	if c, ok := d.chains[n.Index]; ok {
		return c, nil
	}
	table := d.fat
	if d.isShort(n) {
		table = d.shortFAT
	}
	c, err := table.Chain(n.Entry.StartSector)
	if err != nil {
		return nil, structural(fmt.Sprintf("stream %q chain", n.Name()), err)
	}
	d.chains[n.Index] = c
	return c, nil
}

func (d *Document) isShort(n *dirtree.Node) bool {
	return n.Entry.Kind != format.KindRoot && d.hdr.IsShort(n.Entry.Size)
}

func structural(msg string, err error) error {
	return types.Wrap(types.ErrKindStructural, msg, err)
}

func asIOErr(msg string, err error) error {
	var te *types.Error
	if errors.As(err, &te) {
		return err
	}
	return types.Wrap(types.ErrKindIO, msg, err)
}

// classify maps table-loading failures: layout problems are structural,
// anything else came from the source.
func classify(msg string, err error) error {
	switch {
	case errors.Is(err, sectors.ErrBadLink),
		errors.Is(err, sectors.ErrCycle),
		errors.Is(err, sectors.ErrSizeMismatch),
		errors.Is(err, format.ErrTruncated):
		return structural(msg, err)
	default:
		return asIOErr(msg, err)
	}
}
