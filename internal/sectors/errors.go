package sectors

import "errors"

var (
	// ErrBadLink indicates a chain hop to an id that is neither a valid sector
	// nor the end-of-chain sentinel.
	ErrBadLink = errors.New("sectors: undefined chain link")

	// ErrCycle indicates a chain that revisits a sector.
	ErrCycle = errors.New("sectors: chain cycle")

	// ErrSizeMismatch indicates a table whose on-disk length disagrees with
	// the count recorded in the header.
	ErrSizeMismatch = errors.New("sectors: table size mismatch")
)
