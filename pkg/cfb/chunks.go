package cfb

import (
	"io"
	"iter"
)

// Chunks is a forward-only, pull-based sequence over a stream window. Each
// call to Next performs at most one physical read covering at most one sector.
type Chunks struct {
	v   *streamView
	pos int64
	end int64
	err error
}

// Next returns the next chunk, or io.EOF once the window is exhausted. After
// an error every further call returns the same error.
func (c *Chunks) Next() ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.pos >= c.end {
		return nil, io.EOF
	}
	sectorEnd := (c.pos/c.v.unit + 1) * c.v.unit
	n := min(sectorEnd, c.end) - c.pos
	b, err := c.v.readRange(c.pos, n)
	if err != nil {
		c.err = err
		return nil, err
	}
	c.pos += n
	return b, nil
}

// Offset returns the stream offset of the next chunk.
func (c *Chunks) Offset() int64 { return c.pos }

// All adapts Chunks to a range-over-func sequence. Iteration stops after the
// first error is yielded.
func (c *Chunks) All() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			b, err := c.Next()
			if err == io.EOF {
				return
			}
			if !yield(b, err) || err != nil {
				return
			}
		}
	}
}
