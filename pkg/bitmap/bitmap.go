// Package bitmap turns image records into image.Image values.
package bitmap

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/joshuapare/vpxkit/pkg/lzw"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// DecodeLZW decodes a 32-bit BGRA LZW payload of the given size. Legacy
// files carry no alpha; an image whose alpha is zero everywhere is returned
// opaque.
func DecodeLZW(src []byte, width, height int) (*image.NRGBA, lzw.Result, error) {
	if width <= 0 || height <= 0 {
		return nil, lzw.Result{}, types.Errorf(types.ErrKindCorrupt, "bitmap: bad size %dx%d", width, height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	res, err := lzw.Decode(src, img.Pix, lzw.Options{
		Width:  4 * width,
		Height: height,
		Stride: img.Stride,
	})
	if err != nil {
		return nil, res, err
	}

	opaque := true
	for i := 0; i < len(img.Pix); i += 4 {
		p := img.Pix[i : i+4 : i+4]
		p[0], p[2] = p[2], p[0]
		if p[3] != 0 {
			opaque = false
		}
	}
	if opaque {
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xFF
		}
	}
	return img, res, nil
}

// DecodeFile decodes an embedded image file (PNG, JPEG, GIF, BMP or WebP)
// and reports its format name.
func DecodeFile(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", types.Wrap(types.ErrKindCorrupt, "bitmap: decode embedded image", err)
	}
	return img, format, nil
}

// DecodeFileConfig reads only the header of an embedded image file.
func DecodeFileConfig(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", types.Wrap(types.ErrKindCorrupt, "bitmap: decode embedded image header", err)
	}
	return cfg, format, nil
}

// EncodeBMP writes img as a BMP file.
func EncodeBMP(w io.Writer, img image.Image) error {
	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("bitmap: encode bmp: %w", err)
	}
	return nil
}
