package cfb

import (
	"fmt"

	"github.com/joshuapare/vpxkit/internal/dirtree"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// streamView maps a stream's logical byte range onto physical offsets.
type streamView struct {
	doc   *Document
	name  string
	size  int64
	unit  int64 // sector size of the governing pool
	chain []int32
	short bool
}

func (d *Document) view(n *dirtree.Node) (*streamView, error) {
	chain, err := d.chain(n)
	if err != nil {
		return nil, err
	}
	v := &streamView{
		doc:   d,
		name:  n.Name(),
		size:  int64(n.Entry.Size),
		unit:  d.secSize,
		chain: chain,
		short: d.isShort(n),
	}
	if v.short {
		v.unit = d.shortSize
	}
	if int64(len(chain))*v.unit < v.size {
		return nil, types.Errorf(types.ErrKindStructural,
			"stream %q: chain of %d sectors cannot hold %d bytes", v.name, len(chain), v.size)
	}
	return v, nil
}

// physical returns the physical offset of logical sector idx.
func (v *streamView) physical(idx int64) (int64, error) {
	id := v.chain[idx]
	if v.short {
		return v.doc.shortSectorOffset(id)
	}
	return v.doc.sectorOffset(id), nil
}

// readRange reads the logical range [off, off+n). Runs of physically adjacent
// sectors are merged so each run costs one source read.
func (v *streamView) readRange(off, n int64) ([]byte, error) {
	out := make([]byte, n)
	if n == 0 {
		return out, nil
	}
	var (
		runPhys int64 = -1 // physical start of the pending run
		runDst  int64      // destination offset of the pending run
		runLen  int64
	)
	flush := func() error {
		if runLen == 0 {
			return nil
		}
		if err := v.doc.readFull(out[runDst:runDst+runLen], runPhys); err != nil {
			return asIOErr(fmt.Sprintf("stream %q at %d", v.name, off+runDst), err)
		}
		runLen = 0
		return nil
	}

	end := off + n
	for pos := off; pos < end; {
		idx := pos / v.unit
		inSector := pos % v.unit
		piece := min(v.unit-inSector, end-pos)
		base, err := v.physical(idx)
		if err != nil {
			return nil, err
		}
		phys := base + inSector
		if runLen > 0 && runPhys+runLen == phys {
			runLen += piece
		} else {
			if err := flush(); err != nil {
				return nil, err
			}
			runPhys, runDst, runLen = phys, pos-off, piece
		}
		pos += piece
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}
