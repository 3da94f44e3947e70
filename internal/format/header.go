package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/vpxkit/internal/buf"
)

// Header captures the subset of the compound document preamble required to
// locate the allocation tables and the directory.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x000   8    D0 CF 11 E0 A1 B1 1A E1
//	 0x01E   2    Sector shift (sector size = 1 << shift)
//	 0x020   2    Short sector shift
//	 0x02C   4    Number of allocation table sectors
//	 0x030   4    First directory sector
//	 0x038   4    Short stream size threshold
//	 0x03C   4    First short allocation table sector
//	 0x040   4    Number of short allocation table sectors
//	 0x044   4    First master table sector
//	 0x048   4    Number of master table sectors
//	 0x04C 436    First 109 master table entries
//
// All fields are little-endian.
type Header struct {
	SectorShift          uint16
	ShortSectorShift     uint16
	FATSectorCount       uint32
	DirStartSector       int32
	ShortStreamThreshold uint32
	ShortFATStart        int32
	ShortFATCount        uint32
	MasterStart          int32
	MasterCount          uint32
	MasterHead           [MasterHeadEntries]int32
}

// SectorSize returns the regular sector size in bytes.
func (h Header) SectorSize() int { return 1 << h.SectorShift }

// ShortSectorSize returns the short sector size in bytes.
func (h Header) ShortSectorSize() int { return 1 << h.ShortSectorShift }

// IsShort reports whether a stream of the given size lives in the short
// sector pool.
func (h Header) IsShort(size uint32) bool { return size < h.ShortStreamThreshold }

// ParseHeader validates and extracts the header fields.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("header: %w (have %d, need %d)", ErrTruncated, len(b), HeaderSize)
	}
	if !bytes.Equal(b[:HeaderSignatureSize], Signature) {
		return Header{}, fmt.Errorf("header: %w", ErrSignatureMismatch)
	}
	h := Header{
		SectorShift:          buf.U16LE(b[HeaderSectorShiftOffset:]),
		ShortSectorShift:     buf.U16LE(b[HeaderShortShiftOffset:]),
		FATSectorCount:       buf.U32LE(b[HeaderFATCountOffset:]),
		DirStartSector:       buf.I32LE(b[HeaderDirStartOffset:]),
		ShortStreamThreshold: buf.U32LE(b[HeaderThresholdOffset:]),
		ShortFATStart:        buf.I32LE(b[HeaderShortFATStart:]),
		ShortFATCount:        buf.U32LE(b[HeaderShortFATCount:]),
		MasterStart:          buf.I32LE(b[HeaderMasterStartOffset:]),
		MasterCount:          buf.U32LE(b[HeaderMasterCountOffset:]),
	}
	if h.SectorShift < MinSectorShift || h.SectorShift > MaxSectorShift {
		return Header{}, fmt.Errorf("header: %w: sector shift %d", ErrSectorShift, h.SectorShift)
	}
	if h.ShortSectorShift < MinShortSectorShift || h.ShortSectorShift > h.SectorShift {
		return Header{}, fmt.Errorf("header: %w: short sector shift %d", ErrSectorShift, h.ShortSectorShift)
	}
	for i := range h.MasterHead {
		h.MasterHead[i] = buf.I32LE(b[HeaderMasterHeadOffset+i*SectorIDSize:])
	}
	return h, nil
}
