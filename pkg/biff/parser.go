package biff

import (
	"github.com/joshuapare/vpxkit/internal/buf"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// Handler receives one record. It returns the number of bytes it consumed
// from Record.Offset, or 0 to advance by the record's own length. Handlers
// that read past the record themselves (BITS image data) report the extra
// bytes this way.
type Handler func(Record) (int, error)

// Level maps the tags of one nesting level to handlers.
type Level struct {
	// Tags holds per-tag handlers.
	Tags map[Tag]Handler
	// Default receives tags missing from Tags. Nil ignores them.
	Default Handler
	// Nested lists tags that open a sub-level.
	Nested map[Tag]*Nested
	// Streamed lists tags whose payload follows a secondary length and is
	// read by the handler itself.
	Streamed map[Tag]bool
}

// Nested is a sub-level opened by a tag and closed by ENDB.
type Nested struct {
	Level
	// OnStart is called with the opening record, which carries no payload.
	OnStart func(Record) error
	// OnEnd is called when the sub-level's ENDB is reached.
	OnEnd func() error
}

func (l *Level) handler(t Tag) Handler {
	if h, ok := l.Tags[t]; ok {
		return h
	}
	return l.Default
}

type frame struct {
	level  *Level
	nested *Nested
	parent *frame
}

// Parser is the record splitting state machine. Its Step method is a
// cfb.Filter. The zero value is not usable; call NewParser.
type Parser struct {
	cur     *frame
	depth   int
	records int
}

// NewParser returns a parser positioned at the top level.
func NewParser(top *Level) *Parser {
	if top == nil {
		top = &Level{}
	}
	return &Parser{cur: &frame{level: top}}
}

// Depth is the current nesting depth; 0 at the top level.
func (p *Parser) Depth() int { return p.depth }

// Records counts the records dispatched so far, nested ones included.
func (p *Parser) Records() int { return p.records }

// Step decodes the record at the start of b, which begins at stream offset
// pos.
func (p *Parser) Step(b []byte, pos int64) (types.Step, error) {
	if len(b) < 8 {
		return types.NeedMore(8 - len(b)), nil
	}
	n := int(buf.I32LE(b))
	var tag Tag
	copy(tag[:], b[4:8])

	if tag.isEnd() {
		return p.end(n)
	}
	if n < 4 {
		return types.Step{}, types.Errorf(types.ErrKindCorrupt, "biff: %s at %d: length %d shorter than its tag", tag, pos, n)
	}
	if len(b) < n+4 {
		return types.NeedMore(n + 4 - len(b)), nil
	}
	lvl := p.cur.level

	if nested, ok := lvl.Nested[tag]; ok {
		if nested.OnStart != nil {
			if err := nested.OnStart(Record{Tag: tag, Offset: pos + 8, Len: n - 4}); err != nil {
				return types.Step{}, err
			}
		}
		p.cur = &frame{level: &nested.Level, nested: nested, parent: p.cur}
		p.depth++
		p.records++
		return types.Consumed(n + 4), nil
	}

	rec := Record{Tag: tag, Offset: pos + 8, Len: n - 4}
	if lvl.Streamed[tag] {
		if len(b) < n+8 {
			return types.NeedMore(n + 8 - len(b)), nil
		}
		secondary := int(buf.I32LE(b[n+4:]))
		if secondary < 0 {
			return types.Step{}, types.Errorf(types.ErrKindCorrupt, "biff: %s at %d: negative streamed length %d", tag, pos, secondary)
		}
		rec.Offset = pos + 4 + int64(n)
		rec.Len = secondary + 4
		n += secondary + 4
	} else {
		rec.Data = b[8 : 8+n-4]
	}

	p.records++
	if h := lvl.handler(tag); h != nil {
		used, err := h(rec)
		if err != nil {
			return types.Step{}, err
		}
		if used > 0 {
			return types.Consumed(int(rec.Offset-pos) + used), nil
		}
	}
	return types.Consumed(n + 4), nil
}

func (p *Parser) end(n int) (types.Step, error) {
	if p.cur.parent == nil {
		return types.Done(), nil
	}
	nested := p.cur.nested
	p.cur = p.cur.parent
	p.depth--
	if nested.OnEnd != nil {
		if err := nested.OnEnd(); err != nil {
			return types.Step{}, err
		}
	}
	return types.Consumed(max(n, 4) + 4), nil
}
