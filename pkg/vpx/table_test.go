package vpx

import (
	"bytes"
	"image"
	"image/color"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/vpxkit/internal/testutil/cfbgen"
	"github.com/joshuapare/vpxkit/pkg/cfb"
	"github.com/joshuapare/vpxkit/pkg/source"
	"github.com/joshuapare/vpxkit/pkg/types"
)

func TestInfo(t *testing.T) {
	tbl := openSample(t)
	info, err := tbl.Info()
	require.NoError(t, err)
	assert.Equal(t, "Space Station", info.Name)
	assert.Equal(t, "J. Doe", info.Author)
	assert.Equal(t, "1.2", info.Version)
	assert.Empty(t, info.Rules)
	assert.Equal(t, pngFile(2, 2), info.Screenshot)
	assert.Equal(t, []Property{{Name: "Rating", Value: "5 stars"}}, info.Custom)

	v, err := tbl.FileVersion()
	require.NoError(t, err)
	assert.Equal(t, int32(1072), v)
}

func TestInfoWithoutStorage(t *testing.T) {
	raw := cfbgen.New().Stream("GameStg/GameData", endb).Bytes()
	doc, err := cfb.Load(source.NewBytes(raw))
	require.NoError(t, err)
	tbl := New(doc)
	defer tbl.Close()

	info, err := tbl.Info()
	require.NoError(t, err)
	assert.Equal(t, Info{}, info)

	v, err := tbl.FileVersion()
	require.NoError(t, err)
	assert.Zero(t, v)

	items, err := tbl.Items()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGameData(t *testing.T) {
	tbl := openSample(t)
	gd, err := tbl.GameData()
	require.NoError(t, err)
	assert.Equal(t, "Table1", gd.Name)
	assert.Equal(t, 2, gd.Items)
	assert.Equal(t, 2, gd.Images)
	assert.Zero(t, gd.Sounds)
	assert.Equal(t, script, gd.Script)
	assert.Equal(t, 1, gd.Tags["CODE"])
	assert.Equal(t, 1, gd.Tags["LZWB"])
	assert.Equal(t, 8, len(gd.Tags))
}

func TestItems(t *testing.T) {
	tbl := openSample(t)
	items, err := tbl.Items()
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, Item{Index: 0, Stream: "GameItem0", Type: ItemFlipper, Name: "LeftFlipper"}, items[0])
	assert.Equal(t, Item{Index: 1, Stream: "GameItem1", Type: ItemPrimitive, Name: "Ramp Ω"}, items[1])
	assert.Equal(t, 10, items[2].Index, "numeric, not lexical, order")
	assert.Empty(t, items[2].Name)
	assert.Equal(t, "ItemType(99)", items[2].Type.String())
	assert.Equal(t, "Primitive", ItemPrimitive.String())
}

func TestImages(t *testing.T) {
	tbl := openSample(t)
	images, err := tbl.Images()
	require.NoError(t, err)
	require.Len(t, images, 2)

	raw := images[0]
	assert.Equal(t, "Playfield", raw.Name)
	assert.Equal(t, `C:\tables\playfield.bmp`, raw.Path)
	assert.Equal(t, "lzw", raw.Format)
	assert.Equal(t, [2]int{40, 30}, [2]int{raw.Width, raw.Height})
	assert.Equal(t, float32(0.5), raw.AlphaTest)
	assert.Nil(t, raw.Data)
	assert.Zero(t, raw.BadCodes)

	file := images[1]
	assert.Equal(t, "Backglass", file.Name)
	assert.Equal(t, "png", file.Format)
	assert.Equal(t, [2]int{5, 7}, [2]int{file.Width, file.Height})
	assert.Equal(t, pngFile(5, 7), file.Data)
	assert.Equal(t, float32(1), file.AlphaTest, "records after the nested block still parse")
}

func TestPicture(t *testing.T) {
	tbl := openSample(t, WithCacheSize(4))
	img, err := tbl.Image(0)
	require.NoError(t, err)

	pic, err := tbl.Picture(img)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 40, 30), pic.Bounds())
	for _, p := range []image.Point{{0, 0}, {39, 0}, {7, 13}, {39, 29}} {
		i := 4 * (p.Y*40 + p.X)
		want := color.NRGBA{R: byte(i / 7), G: byte(i / 3), B: byte(i), A: 0xFF}
		assert.Equal(t, want, pic.(*image.NRGBA).NRGBAAt(p.X, p.Y), "pixel %v", p)
	}

	again, err := tbl.Picture(img)
	require.NoError(t, err)
	assert.Same(t, pic.(*image.NRGBA), again.(*image.NRGBA), "served from the cache")
	assert.Equal(t, 1, tbl.cache.Len())

	file, err := tbl.Image(1)
	require.NoError(t, err)
	pic, err = tbl.Picture(file)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 7), pic.Bounds())

	_, err = tbl.Image(5)
	require.ErrorIs(t, err, types.ErrNotFound)
	_, err = tbl.Picture(Image{Name: "none"})
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestPictureSharedName(t *testing.T) {
	bitsImage := func(w, h int) []byte {
		return cat(
			rec("NAME", narrow("Decal")),
			rec("WDTH", i32(int32(w))),
			rec("HGHT", i32(int32(h))),
			rec("BITS"), lzwBlocks(bgra(w, h)),
			endb,
		)
	}
	b := cfbgen.New().
		Stream("GameStg/Image0", bitsImage(4, 4)).
		Stream("GameStg/Image1", bitsImage(6, 2)).
		Stream("GameStg/Image2", cat(rec("NAME", narrow("")), rec("JPEG"), rec("DATA", pngFile(3, 3)), endb, endb)).
		Stream("GameStg/Image3", cat(rec("NAME", narrow("")), rec("JPEG"), rec("DATA", pngFile(2, 5)), endb, endb))
	tbl, err := Open(writeTable(t, b))
	require.NoError(t, err)
	defer tbl.Close()

	imgs, err := tbl.Images()
	require.NoError(t, err)
	require.Len(t, imgs, 4)
	want := []image.Rectangle{
		image.Rect(0, 0, 4, 4),
		image.Rect(0, 0, 6, 2),
		image.Rect(0, 0, 3, 3),
		image.Rect(0, 0, 2, 5),
	}
	for i, img := range imgs {
		pic, err := tbl.Picture(img)
		require.NoError(t, err)
		assert.Equal(t, want[i], pic.Bounds(), img.Stream)
	}
	assert.Equal(t, 4, tbl.cache.Len())
}

func TestDamagedBitmapIsLogged(t *testing.T) {
	good := lzwBlocks(bgra(4, 4))
	// Replace the payload with codes far past the dictionary.
	damaged := append([]byte{}, good...)
	for i := 4; i < len(damaged)-3; i++ {
		damaged[i] = 0xFF
	}
	stream := cat(
		rec("NAME", narrow("Broken")),
		rec("WDTH", i32(4)),
		rec("HGHT", i32(4)),
		rec("BITS"), damaged,
		rec("PATH", narrow("after.bmp")),
		endb,
	)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	tbl, err := Open(writeTable(t, cfbgen.New().Stream("GameStg/Image0", stream)), WithLogger(logger))
	require.NoError(t, err)
	defer tbl.Close()

	img, err := tbl.Image(0)
	require.NoError(t, err)
	assert.Positive(t, img.BadCodes)
	assert.Equal(t, "after.bmp", img.Path, "parsing resumes after the compressed data")
	assert.Contains(t, logs.String(), "damaged bitmap")
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(t.TempDir() + "/missing.vpx")
	require.ErrorIs(t, err, types.ErrIO)

	b := cfbgen.New().Stream("GameStg/GameData", endb)
	b.Prefix = []byte("JUNKJUNK")
	_, err = Open(writeTable(t, b))
	require.ErrorIs(t, err, types.ErrStructural)

	tbl, err := Open(writeTable(t, b), WithSkipBytes(8))
	require.NoError(t, err)
	require.NoError(t, tbl.Close())
	require.NoError(t, tbl.Close())
	_, err = tbl.GameData()
	require.ErrorIs(t, err, types.ErrClosed)
}

func TestLimits(t *testing.T) {
	tight := types.Limits{MaxImageSide: 16, MaxImagePixels: 256, MaxScriptBytes: 10}
	tbl := openSample(t, WithLimits(tight))

	_, err := tbl.Image(0) // 40x30
	require.ErrorIs(t, err, types.ErrCorrupt)
	_, err = tbl.Image(1) // embedded files are not bounded here
	require.NoError(t, err)

	_, err = tbl.GameData()
	require.ErrorIs(t, err, types.ErrCorrupt)
}
