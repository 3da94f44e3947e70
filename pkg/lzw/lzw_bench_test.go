package lzw

import (
	"testing"
)

// Benchmark_Decode_Playfield decodes a 512x512 BGRA gradient.
func Benchmark_Decode_Playfield(b *testing.B) {
	const w, h = 512, 512
	data := gradient(4*w, h)
	src := compress(b, data)
	dst := make([]byte, len(data))
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for range b.N {
		if _, err := Decode(src, dst, Options{Width: 4 * w, Height: h}); err != nil {
			b.Fatal(err)
		}
	}
}
