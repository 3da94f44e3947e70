package biff

import "github.com/joshuapare/vpxkit/pkg/cfb"

// Parse runs the records of a stream through top, starting at offset.
func Parse(s *cfb.Storage, stream string, offset int64, top *Level) error {
	p := NewParser(top)
	return s.StreamFiltered(stream, offset, p.Step)
}
