package main

import (
	"bytes"
	"compress/lzw"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
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

func i32(v int32) []byte { return binary.LittleEndian.AppendUint32(nil, uint32(v)) }

func narrow(s string) []byte { return append(i32(int32(len(s))), s...) }

func wide(s string) []byte {
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return append(i32(int32(len(b))), b...)
}

func utf16(s string) []byte { return wide(s)[4:] }

func join(parts ...[]byte) []byte { return bytes.Join(parts, nil) }

func lzwBlocks(data []byte) []byte {
	var b bytes.Buffer
	w := lzw.NewWriter(&b, lzw.LSB, 8)
	_, _ = w.Write(data)
	_ = w.Close()
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

// sampleTable writes a small table with one item and one 8x4 raw bitmap.
func sampleTable(t *testing.T) string {
	t.Helper()
	endb := rec("ENDB")
	pixels := bytes.Repeat([]byte{0x20, 0x40, 0x60, 0xFF}, 8*4)
	raw := cfbgen.New().
		Stream("TableInfo/TableName", utf16("CLI Test")).
		Stream("TableInfo/AuthorName", utf16("Tester")).
		Stream("GameStg/Version", i32(1080)).
		Stream("GameStg/GameData", join(
			rec("NAME", wide("Table1")),
			rec("SEDT", i32(1)),
			rec("SIMG", i32(1)),
			rec("CODE"), narrow("Sub Init : End Sub"),
			endb,
		)).
		Stream("GameStg/GameItem0", join(i32(1), rec("NAME", wide("LeftFlipper")), endb)).
		Stream("GameStg/Image0", join(
			rec("NAME", narrow("Playfield")),
			rec("PATH", narrow("pf.bmp")),
			rec("WDTH", i32(8)),
			rec("HGHT", i32(4)),
			rec("BITS"), lzwBlocks(pixels),
			endb,
		)).
		Bytes()
	path := filepath.Join(t.TempDir(), "cli.vpx")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

// captureOutput runs fn with stdout redirected to a buffer and the global
// flags reset.
func captureOutput(t *testing.T, asJSON bool, fn func() error) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	verbose, quiet, jsonOut = false, false, asJSON
	color.NoColor = true
	t.Cleanup(func() {
		stdout = orig
		jsonOut = false
	})
	err := fn()
	return buf.String(), err
}

func decodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), v), "output: %s", out)
}
