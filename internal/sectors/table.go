package sectors

import (
	"fmt"

	"github.com/joshuapare/vpxkit/internal/format"
)

// Table is a flattened allocation table: slot i holds the id of the sector
// following sector i in its chain.
type Table struct {
	next []int32
}

// NewTable wraps a decoded slot list. The slice is retained.
func NewTable(next []int32) *Table {
	return &Table{next: next}
}

// Len returns the number of slots.
func (t *Table) Len() int { return len(t.next) }

// Valid reports whether id addresses a slot of the table.
func (t *Table) Valid(id int32) bool {
	return id >= 0 && int(id) < len(t.next)
}

// Next returns the successor of id. An id outside the table is ErrBadLink.
func (t *Table) Next(id int32) (int32, error) {
	if !t.Valid(id) {
		return 0, fmt.Errorf("%w: sector %d outside table of %d", ErrBadLink, id, len(t.next))
	}
	return t.next[id], nil
}

// Chain follows the table from start to the end-of-chain sentinel and returns
// the visited sector ids in order. A start of EndOfChain yields an empty chain.
//
// Every hop must land on a valid slot or on EndOfChain; anything else
// (Free, FATSect, an id past the table) is ErrBadLink. A chain longer than the
// table can only be a cycle and is reported as ErrCycle.
func (t *Table) Chain(start int32) ([]int32, error) {
	if start == format.EndOfChain {
		return nil, nil
	}
	var chain []int32
	for id := start; id != format.EndOfChain; {
		if !t.Valid(id) {
			if len(chain) == 0 {
				return nil, fmt.Errorf("%w: start sector %d", ErrBadLink, id)
			}
			return nil, fmt.Errorf("%w: sector %d -> %d", ErrBadLink, chain[len(chain)-1], id)
		}
		if len(chain) >= len(t.next) {
			return nil, fmt.Errorf("%w: from sector %d", ErrCycle, start)
		}
		chain = append(chain, id)
		id = t.next[id]
	}
	return chain, nil
}
