package types

// Decode limits. Sizes in table files come from untrusted headers, so large
// allocations are checked against these before any buffer is made.
const (
	// MaxImageSideDefault is the largest width or height accepted for a raw
	// bitmap. The table editor caps imports at 16384.
	MaxImageSideDefault = 16384

	// MaxImagePixelsDefault bounds width*height of a raw bitmap (256 MB of
	// NRGBA pixels).
	MaxImagePixelsDefault = 1 << 26

	// MaxImagePixelsStrict is a conservative pixel bound (16 MB of pixels).
	MaxImagePixelsStrict = 1 << 22

	// MaxScriptBytesDefault bounds the table script.
	MaxScriptBytesDefault = 64 << 20

	// MaxScriptBytesStrict is a conservative script bound.
	MaxScriptBytesStrict = 4 << 20
)

// Limits constrains decoding of untrusted table files.
type Limits struct {
	// MaxImageSide is the largest accepted bitmap width or height.
	MaxImageSide int

	// MaxImagePixels is the largest accepted width*height of a bitmap.
	MaxImagePixels int

	// MaxScriptBytes is the largest accepted table script.
	MaxScriptBytes int
}

// DefaultLimits accepts every table the editor can produce.
func DefaultLimits() Limits {
	return Limits{
		MaxImageSide:   MaxImageSideDefault,
		MaxImagePixels: MaxImagePixelsDefault,
		MaxScriptBytes: MaxScriptBytesDefault,
	}
}

// StrictLimits is meant for services that open files from unknown sources.
func StrictLimits() Limits {
	return Limits{
		MaxImageSide:   MaxImageSideDefault / 4,
		MaxImagePixels: MaxImagePixelsStrict,
		MaxScriptBytes: MaxScriptBytesStrict,
	}
}

// CheckImage reports a corrupt-data error when a width x height bitmap is
// outside the limits.
func (l Limits) CheckImage(width, height int) error {
	if width <= 0 || height <= 0 || width > l.MaxImageSide || height > l.MaxImageSide {
		return Errorf(ErrKindCorrupt, "image size %dx%d outside 1..%d", width, height, l.MaxImageSide)
	}
	if width*height > l.MaxImagePixels {
		return Errorf(ErrKindCorrupt, "image size %dx%d exceeds %d pixels", width, height, l.MaxImagePixels)
	}
	return nil
}

// CheckScript reports a corrupt-data error when a script of n bytes is
// outside the limits.
func (l Limits) CheckScript(n int) error {
	if n < 0 || n > l.MaxScriptBytes {
		return Errorf(ErrKindCorrupt, "script length %d outside 0..%d", n, l.MaxScriptBytes)
	}
	return nil
}
