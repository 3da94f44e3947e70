package cfb

import (
	"github.com/joshuapare/vpxkit/pkg/types"
)

// Filter consumes a stream incrementally. buf holds the bytes available from
// stream offset pos; it is only valid for the duration of the call.
type Filter func(buf []byte, pos int64) (types.Step, error)

// windowSectors is the number of sectors kept loaded ahead of the position.
const windowSectors = 2

// StreamFiltered drives next over the named stream from offset until next
// returns types.Done(), an error, or the position reaches the end of the
// stream.
//
// The filter sees a window of up to two sectors starting at the current
// position. After types.Consumed(n) the window slides; sectors that are
// already loaded are kept and only the missing ones are read. After
// types.NeedMore(n) the filter is called again at the same position with at
// least n more bytes.
func (s *Storage) StreamFiltered(name string, offset int64, next Filter) error {
	v, err := s.view(name)
	if err != nil {
		return err
	}
	if _, err := v.window(offset, 0); err != nil {
		return err
	}
	w := &slidingWindow{v: v}
	for pos := offset; pos < v.size; {
		if err := w.seek(pos); err != nil {
			return err
		}
		for advanced := false; !advanced; {
			b := w.from(pos)
			step, err := next(b, pos)
			if err != nil {
				return err
			}
			switch step.Kind {
			case types.StepDone:
				return nil
			case types.StepConsumed:
				if step.N <= 0 {
					return types.Errorf(types.ErrKindCorrupt,
						"stream %q: filter made no progress at offset %d", v.name, pos)
				}
				pos += int64(step.N)
				advanced = true
			case types.StepNeedMore:
				want := pos + int64(len(b)) + int64(step.N)
				if step.N <= 0 || want > v.size {
					return types.Errorf(types.ErrKindCorrupt,
						"stream %q: %d more bytes requested at offset %d, stream ends at %d",
						v.name, step.N, pos+int64(len(b)), v.size)
				}
				s.doc.log.Debug("cfb: filter backfill", "stream", v.name, "pos", pos, "have", len(b), "need", step.N)
				if err := w.extend(want); err != nil {
					return err
				}
			default:
				return types.Errorf(types.ErrKindCorrupt, "stream %q: unknown filter step %v", v.name, step)
			}
		}
	}
	return nil
}

// slidingWindow holds whole logical sectors [first, first+len(data)/unit),
// the last one possibly cut short by the end of the stream.
type slidingWindow struct {
	v     *streamView
	first int64
	data  []byte
}

func (w *slidingWindow) start() int64 { return w.first * w.v.unit }

func (w *slidingWindow) end() int64 { return w.start() + int64(len(w.data)) }

// seek moves the window to the sector holding pos. Loaded sectors at or after
// that sector are kept; the window is then topped up to two sectors.
func (w *slidingWindow) seek(pos int64) error {
	idx := pos / w.v.unit
	if len(w.data) > 0 && idx >= w.first && pos < w.end() {
		w.data = w.data[(idx-w.first)*w.v.unit:]
	} else {
		w.data = nil
	}
	w.first = idx
	return w.extend(min((idx+windowSectors)*w.v.unit, w.v.size))
}

// extend loads whole sectors until the window reaches upto (clamped to the
// stream size).
func (w *slidingWindow) extend(upto int64) error {
	upto = min(upto, w.v.size)
	if w.end() >= upto {
		return nil
	}
	from := w.end()
	to := min((upto+w.v.unit-1)/w.v.unit*w.v.unit, w.v.size)
	more, err := w.v.readRange(from, to-from)
	if err != nil {
		return err
	}
	w.data = append(w.data, more...)
	return nil
}

// from returns the loaded bytes starting at pos.
func (w *slidingWindow) from(pos int64) []byte {
	return w.data[pos-w.start():]
}
