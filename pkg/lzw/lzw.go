// Package lzw decodes the variable-width LZW bitmaps stored in table files.
//
// The compressed payload is a sequence of [size][size bytes] blocks ending
// with a zero size block, the same framing GIF uses. Codes are packed
// LSB-first and start at InitSize+1 bits. The decoder keeps the quirks of the
// original table writer's decoder:
//
//   - The dictionary stops growing once 12-bit codes are reached; codes keep
//     being decoded against the frozen table until the next CLEAR.
//   - A code past the next free slot is not an error. It is decoded as the
//     previous code (the KwKwK rule) and counted in Result.BadCodes.
//
// compress/lzw implements the GIF variant but rejects such codes and has no
// notion of block framing or strided output, so it cannot read these files.
package lzw

import (
	"fmt"

	"github.com/joshuapare/vpxkit/internal/buf"
	"github.com/joshuapare/vpxkit/pkg/types"
)

const (
	maxWidth = 12
	maxCodes = 1 << maxWidth

	// endOfInput is returned by the bit reader when the blocks run out.
	endOfInput = -1
)

// Options describes the shape of the decoded image.
type Options struct {
	// Width is the number of samples per row.
	Width int
	// Height is the number of rows.
	Height int
	// Stride is the distance between row starts in dst. Zero means Width.
	// A negative stride writes rows bottom-up starting at the last row.
	Stride int
	// InitSize is the literal code size in bits. Zero means 8.
	InitSize int
}

// Result reports what a Decode call did.
type Result struct {
	// Consumed is the number of input bytes read, including the zero size
	// terminator block when one was reached.
	Consumed int
	// Written is the number of samples stored in dst.
	Written int
	// BadCodes counts codes that referenced unassigned dictionary slots.
	BadCodes int
	// Ended is set when the END code was seen.
	Ended bool
}

// Decode expands src into dst. It returns a corrupt-data error when the
// options are invalid or dst cannot hold Height rows of the given stride.
// Running out of input before END is not an error; Result.Ended is false and
// the samples decoded so far are in dst.
func Decode(src, dst []byte, opts Options) (Result, error) {
	if opts.InitSize == 0 {
		opts.InitSize = 8
	}
	if opts.Stride == 0 {
		opts.Stride = opts.Width
	}
	if err := opts.check(len(dst)); err != nil {
		return Result{}, err
	}

	d := newDecoder(src, dst, opts)
	d.run()
	d.drain()
	return Result{
		Consumed: d.bits.pos,
		Written:  d.out.written,
		BadCodes: d.badCodes,
		Ended:    d.ended,
	}, nil
}

func (o Options) check(dstLen int) error {
	if o.InitSize < 2 || o.InitSize >= maxWidth {
		return types.Errorf(types.ErrKindCorrupt, "lzw: initial code size %d out of range", o.InitSize)
	}
	if o.Width < 0 || o.Height < 0 {
		return types.Errorf(types.ErrKindCorrupt, "lzw: negative dimensions %dx%d", o.Width, o.Height)
	}
	if o.Width == 0 || o.Height == 0 {
		return nil
	}
	stride := o.Stride
	if stride < 0 {
		stride = -stride
	}
	if stride < o.Width {
		return types.Errorf(types.ErrKindCorrupt, "lzw: stride %d shorter than row width %d", o.Stride, o.Width)
	}
	span, ok := buf.MulOverflowSafe(o.Height-1, stride)
	if !ok {
		return types.Errorf(types.ErrKindCorrupt, "lzw: %d rows of stride %d overflow", o.Height, o.Stride)
	}
	need, ok := buf.AddOverflowSafe(span, o.Width)
	if !ok || need > dstLen {
		return types.Errorf(types.ErrKindCorrupt, "lzw: destination holds %d bytes, need %d", dstLen, need)
	}
	return nil
}

type decoder struct {
	bits bitReader
	out  rowWriter

	initSize int
	clear    int
	end      int
	newCodes int

	width   int
	slot    int
	topSlot int

	prefix [maxCodes]uint16
	suffix [maxCodes]byte
	stack  [maxCodes + 1]byte

	badCodes int
	ended    bool
}

func newDecoder(src, dst []byte, opts Options) *decoder {
	d := &decoder{
		bits:     bitReader{src: src},
		out:      newRowWriter(dst, opts),
		initSize: opts.InitSize,
	}
	d.clear = 1 << opts.InitSize
	d.end = d.clear + 1
	d.newCodes = d.end + 1
	d.reset()
	return d
}

func (d *decoder) reset() {
	d.width = d.initSize + 1
	d.slot = d.newCodes
	d.topSlot = 1 << d.width
}

func (d *decoder) run() {
	oc, fc := 0, 0
	for {
		c := d.bits.read(d.width)
		if c == endOfInput {
			return
		}
		if c == d.end {
			d.ended = true
			return
		}

		if c == d.clear {
			d.reset()
			for c == d.clear {
				c = d.bits.read(d.width)
			}
			if c == endOfInput {
				return
			}
			if c == d.end {
				d.ended = true
				return
			}
			if c >= d.slot {
				c = 0
			}
			oc, fc = c, c
			d.out.put(byte(c))
			continue
		}

		code := c
		sp := 0
		if code >= d.slot {
			if code > d.slot {
				// Substitute so the next entry's prefix stays below its slot.
				d.badCodes++
				c = oc
			}
			code = oc
			d.stack[sp] = byte(fc)
			sp++
		}
		for code >= d.newCodes && sp < maxCodes {
			d.stack[sp] = d.suffix[code]
			sp++
			code = int(d.prefix[code])
		}
		d.stack[sp] = byte(code)
		sp++

		if d.slot < d.topSlot {
			fc = code
			d.suffix[d.slot] = byte(fc)
			d.prefix[d.slot] = uint16(oc)
			d.slot++
			oc = c
		}
		if d.slot >= d.topSlot && d.width < maxWidth {
			d.topSlot <<= 1
			d.width++
		}

		for sp > 0 {
			sp--
			d.out.put(d.stack[sp])
		}
	}
}

// drain skips any blocks left after END so Consumed ends past the terminator.
func (d *decoder) drain() {
	if !d.ended {
		return
	}
	for d.bits.avail > 0 {
		d.bits.pos++
		d.bits.avail--
	}
	for d.bits.nextBlock() {
		d.bits.pos += d.bits.avail
		d.bits.avail = 0
	}
}

// bitReader reads LSB-first codes from size-prefixed blocks.
type bitReader struct {
	src   []byte
	pos   int // next unread byte in src
	avail int // data bytes left in the current block
	acc   uint32
	nbits int
	done  bool
}

// nextBlock reads the next size byte. It reports false at the terminator or
// when src runs out.
func (r *bitReader) nextBlock() bool {
	if r.done || r.pos >= len(r.src) {
		r.done = true
		return false
	}
	n := int(r.src[r.pos])
	r.pos++
	if n == 0 {
		r.done = true
		return false
	}
	r.avail = min(n, len(r.src)-r.pos)
	return r.avail > 0
}

func (r *bitReader) read(width int) int {
	for r.nbits < width {
		if r.avail == 0 && !r.nextBlock() {
			return endOfInput
		}
		r.acc |= uint32(r.src[r.pos]) << r.nbits
		r.pos++
		r.avail--
		r.nbits += 8
	}
	code := int(r.acc & (1<<width - 1))
	r.acc >>= width
	r.nbits -= width
	return code
}

// rowWriter stores samples row by row, moving by stride every width samples.
type rowWriter struct {
	dst     []byte
	width   int
	stride  int
	rows    int
	row     int // start of the current row in dst
	col     int
	filled  int // completed rows
	written int
}

func newRowWriter(dst []byte, opts Options) rowWriter {
	w := rowWriter{dst: dst, width: opts.Width, stride: opts.Stride, rows: opts.Height}
	if opts.Stride < 0 && opts.Height > 0 {
		w.row = (opts.Height - 1) * -opts.Stride
	}
	return w
}

func (w *rowWriter) put(b byte) {
	if w.filled >= w.rows || w.width == 0 {
		return
	}
	w.dst[w.row+w.col] = b
	w.written++
	w.col++
	if w.col == w.width {
		w.col = 0
		w.filled++
		w.row += w.stride
	}
}

func (r Result) String() string {
	return fmt.Sprintf("consumed=%d written=%d bad=%d ended=%t", r.Consumed, r.Written, r.BadCodes, r.Ended)
}
