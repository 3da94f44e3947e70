package vpx

import (
	"fmt"
	"image"
	"strconv"

	"github.com/joshuapare/vpxkit/pkg/biff"
	"github.com/joshuapare/vpxkit/pkg/bitmap"
	"github.com/joshuapare/vpxkit/pkg/cfb"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// Image is one entry of the table's image library.
type Image struct {
	Index  int
	Stream string
	Name   string
	Path   string
	Width  int
	Height int
	// AlphaTest is the alpha test threshold (ALTV), -1 when unset.
	AlphaTest float32
	// Format is "lzw" for raw bitmaps, otherwise the embedded file format
	// reported by the image decoders ("png", "jpeg", ...).
	Format string
	// Data is the embedded image file. It is nil for raw bitmaps.
	Data []byte
	// BadCodes counts damaged LZW codes seen while decoding a raw bitmap.
	BadCodes int

	bits *image.NRGBA
}

// Images lists the image library in stream order. Raw bitmaps are decoded
// while listing because their compressed length is only known once the
// LZW data has been read.
func (t *Table) Images() ([]Image, error) {
	gs, err := t.game()
	if err != nil {
		return nil, err
	}
	var out []Image
	for _, n := range numbered(gs, imagePrefix) {
		img, err := t.readImage(gs, n.stream)
		if err != nil {
			return out, err
		}
		img.Index = n.index
		out = append(out, img)
	}
	return out, nil
}

// Image reads GameStg/Image<i>.
func (t *Table) Image(i int) (Image, error) {
	gs, err := t.game()
	if err != nil {
		return Image{}, err
	}
	stream := imagePrefix + strconv.Itoa(i)
	if !gs.Has(stream) {
		return Image{}, notFound("image", i)
	}
	img, err := t.readImage(gs, stream)
	img.Index = i
	return img, err
}

// Picture returns the decoded pixels of img, going through the table's
// cache. Pictures are cached by stream, since image names may repeat.
func (t *Table) Picture(img Image) (image.Image, error) {
	if img.Stream != "" {
		if pic, ok := t.cache.Get(img.Stream); ok {
			return pic, nil
		}
	}
	var pic image.Image
	switch {
	case img.bits != nil:
		pic = img.bits
	case img.Data != nil:
		var err error
		if pic, _, err = bitmap.DecodeFile(img.Data); err != nil {
			return nil, err
		}
	default:
		return nil, types.Errorf(types.ErrKindNotFound, "vpx: image %q has no pixel data", img.Name)
	}
	if img.Stream != "" {
		t.cache.Add(img.Stream, pic)
	}
	return pic, nil
}

func (t *Table) readImage(gs *cfb.Storage, stream string) (Image, error) {
	img := Image{Stream: stream, AlphaTest: -1}
	str := func(dst *string) biff.Handler {
		return func(r biff.Record) (int, error) {
			var err error
			*dst, err = r.String()
			return 0, err
		}
	}
	num := func(dst *int) biff.Handler {
		return func(r biff.Record) (int, error) {
			v, err := r.Int32()
			*dst = int(v)
			return 0, err
		}
	}

	jpeg := &biff.Nested{
		Level: biff.Level{Tags: map[biff.Tag]biff.Handler{
			biff.T("NAME"): str(new(string)),
			biff.T("PATH"): str(new(string)),
			biff.T("SIZE"): func(biff.Record) (int, error) { return 0, nil },
			biff.T("DATA"): func(r biff.Record) (int, error) {
				img.Data = r.Bytes()
				return 0, nil
			},
		}},
		OnEnd: func() error {
			if img.Data == nil {
				return nil
			}
			cfg, format, err := bitmap.DecodeFileConfig(img.Data)
			if err != nil {
				t.log.Warn("vpx: unreadable embedded image", "stream", stream, "err", err)
				img.Format = "unknown"
				return nil
			}
			img.Format = format
			if img.Width == 0 || img.Height == 0 {
				img.Width, img.Height = cfg.Width, cfg.Height
			}
			return nil
		},
	}

	top := &biff.Level{
		Tags: map[biff.Tag]biff.Handler{
			biff.T("NAME"): str(&img.Name),
			biff.T("PATH"): str(&img.Path),
			biff.T("WDTH"): num(&img.Width),
			biff.T("HGHT"): num(&img.Height),
			biff.T("ALTV"): func(r biff.Record) (int, error) {
				var err error
				img.AlphaTest, err = r.Float32()
				return 0, err
			},
			biff.T("BITS"): func(r biff.Record) (int, error) {
				return t.readBits(gs, stream, r.Offset, &img)
			},
		},
		Nested: map[biff.Tag]*biff.Nested{biff.T("JPEG"): jpeg},
	}
	if err := biff.Parse(gs, stream, 0, top); err != nil {
		return img, err
	}
	return img, nil
}

// readBits decodes the LZW bitmap stored right after a BITS tag and reports
// how many bytes it occupied.
func (t *Table) readBits(gs *cfb.Storage, stream string, offset int64, img *Image) (int, error) {
	if err := t.limits.CheckImage(img.Width, img.Height); err != nil {
		return 0, fmt.Errorf("%s: %w", stream, err)
	}
	src, err := gs.Read(stream, offset, cfb.ToEnd)
	if err != nil {
		return 0, err
	}
	pic, res, err := bitmap.DecodeLZW(src, img.Width, img.Height)
	if err != nil {
		return 0, err
	}
	if res.BadCodes > 0 || !res.Ended {
		t.log.Warn("vpx: damaged bitmap", "stream", stream, "image", img.Name, "result", res.String())
	}
	img.Format = "lzw"
	img.BadCodes = res.BadCodes
	img.bits = pic
	return res.Consumed, nil
}
