package vpx

import (
	"bytes"
	"compress/lzw"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/vpxkit/internal/testutil/cfbgen"
)

func rec(tag string, payload ...[]byte) []byte {
	var p []byte
	for _, part := range payload {
		p = append(p, part...)
	}
	b := binary.LittleEndian.AppendUint32(nil, uint32(4+len(p)))
	b = append(b, tag...)
	return append(b, p...)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func i32(v int32) []byte { return binary.LittleEndian.AppendUint32(nil, uint32(v)) }

func f32(v float32) []byte { return binary.LittleEndian.AppendUint32(nil, math.Float32bits(v)) }

func utf16(s string) []byte {
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return b
}

func narrow(s string) []byte { return append(i32(int32(len(s))), s...) }

func wide(s string) []byte {
	b := utf16(s)
	return append(i32(int32(len(b))), b...)
}

var endb = rec("ENDB")

// lzwBlocks compresses data into size-prefixed blocks.
func lzwBlocks(data []byte) []byte {
	var b bytes.Buffer
	w := lzw.NewWriter(&b, lzw.LSB, 8)
	if _, err := w.Write(data); err != nil {
		panic(err)
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	raw := b.Bytes()
	var out []byte
	for len(raw) > 0 {
		n := min(len(raw), 255)
		out = append(out, byte(n))
		out = append(out, raw[:n]...)
		raw = raw[n:]
	}
	return append(out, 0)
}

// bgra is a w x h opaque gradient in file order.
func bgra(w, h int) []byte {
	b := make([]byte, 4*w*h)
	for i := 0; i < len(b); i += 4 {
		b[i], b[i+1], b[i+2], b[i+3] = byte(i), byte(i/3), byte(i/7), 0xFF
	}
	return b
}

func pngFile(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	var b bytes.Buffer
	if err := png.Encode(&b, img); err != nil {
		panic(err)
	}
	return b.Bytes()
}

const script = "Option Explicit\r\n' café\r\nSub Table1_Init : End Sub\r\n"

func sampleTable() *cfbgen.Builder {
	gameData := cat(
		rec("NAME", wide("Table1")),
		rec("SEDT", i32(2)),
		rec("SSND", i32(0)),
		rec("SIMG", i32(2)),
		rec("SFNT", i32(0)),
		rec("SCOL", i32(0)),
		rec("CODE"), narrow(latin1(script)),
		rec("LZWB", i32(1)), // unknown tag, counted only
		endb,
	)

	lzwImage := cat(
		rec("NAME", narrow("Playfield")),
		rec("PATH", narrow(`C:\tables\playfield.bmp`)),
		rec("WDTH", i32(40)),
		rec("HGHT", i32(30)),
		rec("ALTV", f32(0.5)),
		rec("BITS"), lzwBlocks(bgra(40, 30)),
		endb,
	)
	fileImage := cat(
		rec("NAME", narrow("Backglass")),
		rec("PATH", narrow("backglass.png")),
		rec("WDTH", i32(0)),
		rec("HGHT", i32(0)),
		rec("JPEG"),
		rec("NAME", narrow("Backglass")),
		rec("PATH", narrow("backglass.png")),
		rec("SIZE", i32(int32(len(pngFile(5, 7))))),
		rec("DATA", pngFile(5, 7)),
		endb,
		rec("ALTV", f32(1)),
		endb,
	)

	return cfbgen.New().
		Stream("TableInfo/TableName", utf16("Space Station")).
		Stream("TableInfo/AuthorName", utf16("J. Doe\x00")).
		Stream("TableInfo/TableVersion", utf16("1.2")).
		Stream("TableInfo/Rating", utf16("5 stars")).
		Stream("TableInfo/Screenshot", pngFile(2, 2)).
		Stream("GameStg/Version", i32(1072)).
		Stream("GameStg/GameData", gameData).
		Stream("GameStg/CustomInfoTags", cat(rec("CUST", narrow("Rating")), endb)).
		Stream("GameStg/GameItem0", cat(i32(int32(ItemFlipper)), rec("WDTH", f32(3)), rec("NAME", wide("LeftFlipper")), endb)).
		Stream("GameStg/GameItem1", cat(i32(int32(ItemPrimitive)), rec("NAME", wide("Ramp Ω")), endb)).
		Stream("GameStg/GameItem10", cat(i32(99), endb)).
		Stream("GameStg/Image0", lzwImage).
		Stream("GameStg/Image1", fileImage)
}

// latin1 maps a string with runes below 256 to single bytes.
func latin1(s string) string {
	var b []byte
	for _, r := range s {
		b = append(b, byte(r))
	}
	return string(b)
}

func writeTable(t *testing.T, b *cfbgen.Builder) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.vpx")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}

func openSample(t *testing.T, opts ...Option) *Table {
	t.Helper()
	tbl, err := Open(writeTable(t, sampleTable()), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })
	return tbl
}
