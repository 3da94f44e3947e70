package sectors

import (
	"fmt"

	"github.com/joshuapare/vpxkit/internal/buf"
	"github.com/joshuapare/vpxkit/internal/format"
)

// SectorReader returns the raw bytes of one regular sector.
type SectorReader func(id int32) ([]byte, error)

// MasterIDs returns the ids of the sectors holding the regular allocation
// table, in table order: the header's 109 slots first, then the chained
// master sectors. Exactly hdr.FATSectorCount ids are returned.
func MasterIDs(hdr format.Header, read SectorReader) ([]int32, error) {
	want := int(hdr.FATSectorCount)
	perSector := hdr.SectorSize()/format.SectorIDSize - 1
	chained, ok := buf.MulOverflowSafe(int(hdr.MasterCount), perSector)
	if ok {
		chained, ok = buf.AddOverflowSafe(chained, format.MasterHeadEntries)
	}
	if ok && want > chained {
		return nil, fmt.Errorf("%w: %d allocation sectors do not fit %d master sectors",
			ErrSizeMismatch, want, hdr.MasterCount)
	}

	ids := make([]int32, 0, min(want, format.MasterHeadEntries))
	for _, id := range hdr.MasterHead {
		if len(ids) == want {
			return ids, nil
		}
		ids = append(ids, id)
	}

	seen := make(map[int32]struct{})
	id := hdr.MasterStart
	for n := uint32(0); len(ids) < want; n++ {
		if n >= hdr.MasterCount || id < 0 {
			return nil, fmt.Errorf("%w: master table lists %d of %d allocation sectors",
				ErrSizeMismatch, len(ids), want)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: master sector %d", ErrCycle, id)
		}
		seen[id] = struct{}{}
		raw, err := read(id)
		if err != nil {
			return nil, fmt.Errorf("master sector %d: %w", id, err)
		}
		slots := buf.I32sLE(nil, raw)
		if len(slots) <= perSector {
			return nil, fmt.Errorf("master sector %d: %w", id, format.ErrTruncated)
		}
		for _, s := range slots[:perSector] {
			if len(ids) == want {
				break
			}
			ids = append(ids, s)
		}
		id = slots[perSector]
	}
	return ids, nil
}

// LoadFAT assembles the regular allocation table.
func LoadFAT(hdr format.Header, read SectorReader) (*Table, error) {
	ids, err := MasterIDs(hdr, read)
	if err != nil {
		return nil, err
	}
	next := make([]int32, 0, len(ids)*hdr.SectorSize()/format.SectorIDSize)
	for i, id := range ids {
		if id < 0 {
			return nil, fmt.Errorf("%w: allocation sector %d of %d is unset (%d)",
				ErrSizeMismatch, i, len(ids), id)
		}
		raw, err := read(id)
		if err != nil {
			return nil, fmt.Errorf("allocation sector %d: %w", id, err)
		}
		next = buf.I32sLE(next, raw)
	}
	return NewTable(next), nil
}

// LoadShortFAT assembles the short allocation table by following its chain
// through fat. The chain length must match the header count.
func LoadShortFAT(hdr format.Header, fat *Table, read SectorReader) (*Table, error) {
	chain, err := fat.Chain(hdr.ShortFATStart)
	if err != nil {
		return nil, fmt.Errorf("short allocation table: %w", err)
	}
	if uint32(len(chain)) != hdr.ShortFATCount {
		return nil, fmt.Errorf("%w: short allocation table has %d sectors, header says %d",
			ErrSizeMismatch, len(chain), hdr.ShortFATCount)
	}
	next := make([]int32, 0, len(chain)*hdr.SectorSize()/format.SectorIDSize)
	for _, id := range chain {
		raw, err := read(id)
		if err != nil {
			return nil, fmt.Errorf("short allocation sector %d: %w", id, err)
		}
		next = buf.I32sLE(next, raw)
	}
	return NewTable(next), nil
}
