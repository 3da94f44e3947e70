package format

import "errors"

var (
	// ErrSignatureMismatch indicates the header did not start with the magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrSectorShift indicates an out-of-range sector or short-sector shift.
	ErrSectorShift = errors.New("format: invalid sector shift")
	// ErrBadName indicates a directory entry name that cannot be decoded.
	ErrBadName = errors.New("format: invalid entry name")
)
