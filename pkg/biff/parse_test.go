package biff

import (
	"testing"

	"github.com/joshuapare/vpxkit/internal/testutil/cfbgen"
	"github.com/joshuapare/vpxkit/pkg/cfb"
	"github.com/joshuapare/vpxkit/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStream(t *testing.T) {
	big := make([]byte, 1500) // spans several 512 byte sectors
	for i := range big {
		big[i] = byte(i)
	}
	stream := concat(
		u32(1), // item type, skipped by the offset
		rec("NAME", []byte{1, 2, 3}),
		rec("DATA", big),
		rec("JPEG", nil),
		rec("SIZE", u32(77)),
		endb,
		rec("ALTV", u32(2)),
		endb,
		rec("JUNK", []byte("after the end")),
	)
	for len(stream) < 4096 {
		stream = append(stream, 0xCC) // keep it out of the short pool
	}
	raw := cfbgen.New().Stream("GameStg/GameItem0", stream).Bytes()
	doc, err := cfb.Load(source.NewBytes(raw))
	require.NoError(t, err)
	defer doc.Close()
	gs, err := doc.Storage("GameStg")
	require.NoError(t, err)

	seen := map[string]int{}
	var data []byte
	var size uint32
	count := func(rc Record) (int, error) {
		seen[rc.Tag.String()]++
		return 0, nil
	}
	top := &Level{
		Tags: map[Tag]Handler{
			T("DATA"): func(rc Record) (int, error) {
				data = rc.Bytes()
				return 0, nil
			},
		},
		Default: count,
		Nested: map[Tag]*Nested{T("JPEG"): {
			Level: Level{Tags: map[Tag]Handler{T("SIZE"): func(rc Record) (int, error) {
				var err error
				size, err = rc.Uint32()
				return 0, err
			}}},
		}},
	}
	require.NoError(t, Parse(gs, "GameItem0", 4, top))
	assert.Equal(t, big, data)
	assert.Equal(t, uint32(77), size)
	assert.Equal(t, map[string]int{"NAME": 1, "ALTV": 1}, seen)
}
