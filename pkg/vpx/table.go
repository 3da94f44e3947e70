package vpx

import (
	"log/slog"

	"github.com/joshuapare/vpxkit/internal/buf"
	"github.com/joshuapare/vpxkit/pkg/bitmap"
	"github.com/joshuapare/vpxkit/pkg/cfb"
	"github.com/joshuapare/vpxkit/pkg/source"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// Storage and stream names used by table files.
const (
	InfoStorage     = "TableInfo"
	GameStorage     = "GameStg"
	GameDataStream  = "GameData"
	CustomTagStream = "CustomInfoTags"
	VersionStream   = "Version"
	itemPrefix      = "GameItem"
	imagePrefix     = "Image"
)

// Table is an open table file.
type Table struct {
	doc    *cfb.Document
	log    *slog.Logger
	cache  *bitmap.Cache
	limits types.Limits
}

// Open maps the file at path and loads it as a table.
func Open(path string, opts ...Option) (*Table, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	doc, err := cfb.Load(source.NewFile(path), cfb.WithLogger(o.logger), cfb.WithSkipBytes(o.skip))
	if err != nil {
		return nil, err
	}
	o.logger.Debug("vpx: opened", "path", path)
	return newTable(doc, o), nil
}

// New wraps an already loaded document. Close closes doc.
func New(doc *cfb.Document, opts ...Option) *Table {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newTable(doc, o)
}

func newTable(doc *cfb.Document, o options) *Table {
	return &Table{doc: doc, log: o.logger, cache: bitmap.NewCache(o.cacheSize), limits: o.limits}
}

// Document returns the underlying compound document.
func (t *Table) Document() *cfb.Document { return t.doc }

// Close drops cached pictures and closes the document. It is safe to call
// more than once.
func (t *Table) Close() error {
	t.cache.Purge()
	return t.doc.Close()
}

// FileVersion reads the GameStg/Version stream, a little-endian int32 such
// as 1072 for 10.7.2. It returns 0 when the stream is absent.
func (t *Table) FileVersion() (int32, error) {
	gs, err := t.doc.Storage(GameStorage)
	if err != nil {
		return 0, err
	}
	if !gs.Has(VersionStream) {
		return 0, nil
	}
	b, err := gs.ReadAll(VersionStream)
	if err != nil {
		return 0, err
	}
	if len(b) < 4 {
		return 0, types.Errorf(types.ErrKindCorrupt, "vpx: version stream holds %d bytes", len(b))
	}
	return buf.I32LE(b), nil
}

func (t *Table) game() (*cfb.Storage, error) {
	return t.doc.Storage(GameStorage)
}
