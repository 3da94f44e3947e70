package cfb

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/joshuapare/vpxkit/internal/format"
	"github.com/joshuapare/vpxkit/internal/testutil/cfbgen"
	"github.com/joshuapare/vpxkit/pkg/source"
	"github.com/stretchr/testify/require"
)

// countingSource records every ReadAt.
type countingSource struct {
	*source.Bytes
	reads []int64
}

func newCountingSource(b []byte) *countingSource {
	return &countingSource{Bytes: source.NewBytes(b)}
}

func (c *countingSource) ReadAt(p []byte, off int64) (int, error) {
	c.reads = append(c.reads, off)
	return c.Bytes.ReadAt(p, off)
}

// pattern returns n bytes that differ at every offset modulo 251.
func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i%251) ^ seed
	}
	return b
}

var (
	shortData    = pattern(300, 0x11)  // 5 short sectors
	bigData      = pattern(5000, 0x22) // 10 regular sectors
	tinyData     = []byte("v1.0")
	gameDataSize = 4200
)

func sampleBuilder() *cfbgen.Builder {
	return cfbgen.New().
		Stream("Version", tinyData).
		Stream("TableInfo/TableName", shortData).
		Stream("GameStg/GameData", pattern(gameDataSize, 0x33)).
		Stream("GameStg/Image0", bigData).
		Stream("GameStg/Empty", nil).
		Storage("GameStg/Collections")
}

func loadBytes(t *testing.T, raw []byte, opts ...Option) *Document {
	t.Helper()
	doc, err := Load(source.NewBytes(raw), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = doc.Close() })
	return doc
}

func mustStorage(t *testing.T, d *Document, path string) *Storage {
	t.Helper()
	s, err := d.Storage(path)
	require.NoError(t, err)
	return s
}

// rootEntryOffset returns the byte offset of the root directory entry.
func rootEntryOffset(raw []byte) int {
	dirStart := int(int32(binary.LittleEndian.Uint32(raw[format.HeaderDirStartOffset:])))
	return (dirStart + 1) * 512
}

func requireSameBytes(t *testing.T, want, got []byte) {
	t.Helper()
	require.Equal(t, len(want), len(got), "length")
	if !bytes.Equal(want, got) {
		for i := range want {
			if want[i] != got[i] {
				t.Fatalf("first mismatch at %d: want %#x got %#x", i, want[i], got[i])
			}
		}
	}
}
