package format

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildHeader(secShift, shortShift uint16) []byte {
	b := make([]byte, HeaderSize)
	copy(b, Signature)
	binary.LittleEndian.PutUint16(b[HeaderSectorShiftOffset:], secShift)
	binary.LittleEndian.PutUint16(b[HeaderShortShiftOffset:], shortShift)
	binary.LittleEndian.PutUint32(b[HeaderFATCountOffset:], 1)
	binary.LittleEndian.PutUint32(b[HeaderDirStartOffset:], 1)
	binary.LittleEndian.PutUint32(b[HeaderThresholdOffset:], 4096)
	binary.LittleEndian.PutUint32(b[HeaderShortFATStart:], 2)
	binary.LittleEndian.PutUint32(b[HeaderShortFATCount:], 1)
	binary.LittleEndian.PutUint32(b[HeaderMasterStartOffset:], uint32(0xfffffffe))
	binary.LittleEndian.PutUint32(b[HeaderMasterCountOffset:], 0)
	for i := 0; i < MasterHeadEntries; i++ {
		binary.LittleEndian.PutUint32(b[HeaderMasterHeadOffset+i*4:], 0xffffffff)
	}
	binary.LittleEndian.PutUint32(b[HeaderMasterHeadOffset:], 0)
	return b
}

func TestParseHeaderSuccess(t *testing.T) {
	hdr, err := ParseHeader(buildHeader(9, 6))
	require.NoError(t, err)
	require.Equal(t, 512, hdr.SectorSize())
	require.Equal(t, 64, hdr.ShortSectorSize())
	require.Equal(t, uint32(1), hdr.FATSectorCount)
	require.Equal(t, int32(1), hdr.DirStartSector)
	require.Equal(t, uint32(4096), hdr.ShortStreamThreshold)
	require.Equal(t, int32(2), hdr.ShortFATStart)
	require.Equal(t, EndOfChain, hdr.MasterStart)
	require.Equal(t, int32(0), hdr.MasterHead[0])
	require.Equal(t, FreeSect, hdr.MasterHead[1])
	require.True(t, hdr.IsShort(4095))
	require.False(t, hdr.IsShort(4096))
}

func TestParseHeaderErrors(t *testing.T) {
	good := buildHeader(9, 6)

	_, err := ParseHeader(good[:100])
	require.ErrorIs(t, err, ErrTruncated)

	bad := append([]byte(nil), good...)
	copy(bad, []byte("NOTOLE2!"))
	_, err = ParseHeader(bad)
	require.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestParseHeaderSectorShifts(t *testing.T) {
	tests := []struct {
		name       string
		secShift   uint16
		shortShift uint16
		wantErr    bool
	}{
		{"v3 512/64", 9, 6, false},
		{"v4 4096/64", 12, 6, false},
		{"minimum sector", MinSectorShift, MinShortSectorShift, false},
		{"short equals sector", 9, 9, false},
		{"sector too small", MinSectorShift - 1, 4, true},
		{"sector too large", MaxSectorShift + 1, 6, true},
		{"short too small", 9, MinShortSectorShift - 1, true},
		{"short larger than sector", 9, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hdr, err := ParseHeader(buildHeader(tt.secShift, tt.shortShift))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrSectorShift)
				return
			}
			require.NoError(t, err)
			// Sizes derived from shifts are always powers of two.
			require.Equal(t, 0, hdr.SectorSize()&(hdr.SectorSize()-1))
			require.Equal(t, 0, hdr.ShortSectorSize()&(hdr.ShortSectorSize()-1))
			require.LessOrEqual(t, hdr.ShortSectorSize(), hdr.SectorSize())
		})
	}
}
