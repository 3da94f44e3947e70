package types

import (
	"errors"
	"fmt"
	"io"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindStructural ErrKind = iota // container layout is unusable (bad magic, broken chain, no root)
	ErrKindNotFound                  // missing storage/stream
	ErrKindRange                     // read window outside the stream
	ErrKindCorrupt                   // record-level damage tolerated up to this point (truncation, no progress)
	ErrKindIO                        // the byte source failed
	ErrKindState                     // invalid operation for current state (e.g., closed)
)

// String implements fmt.Stringer.
func (k ErrKind) String() string {
	switch k {
	case ErrKindStructural:
		return "structural"
	case ErrKindNotFound:
		return "not-found"
	case ErrKindRange:
		return "range"
	case ErrKindCorrupt:
		return "corrupt"
	case ErrKindIO:
		return "io"
	case ErrKindState:
		return "state"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is an *Error of the same kind. This lets callers
// match against the sentinels below with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels commonly returned by implementations. Compare with errors.Is.
var (
	// ErrStructural indicates the container cannot be navigated.
	ErrStructural = &Error{Kind: ErrKindStructural, Msg: "structural error"}
	// ErrNotFound indicates a missing storage or stream.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrRange indicates a read window outside the stream.
	ErrRange = &Error{Kind: ErrKindRange, Msg: "range exceeds stream"}
	// ErrCorrupt indicates damaged record data.
	ErrCorrupt = &Error{Kind: ErrKindCorrupt, Msg: "corrupt data"}
	// ErrIO indicates the byte source failed.
	ErrIO = &Error{Kind: ErrKindIO, Msg: "i/o error"}
	// ErrClosed indicates use of a closed document.
	ErrClosed = &Error{Kind: ErrKindState, Msg: "document is closed"}
)

// Errorf builds a typed error of the given kind with a formatted message.
func Errorf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a typed error of the given kind around cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind.
func IsKind(err error, kind ErrKind) bool {
	var te *Error
	if !errors.As(err, &te) {
		return false
	}
	return te.Kind == kind
}

// -----------------------------------------------------------------------------
// Byte source
// -----------------------------------------------------------------------------

// ByteSource is the random-access input a compound document is parsed from.
//
// ReadAt follows the io.ReaderAt contract: it returns len(p) bytes or an
// error, and a short read at the end of the source reports io.EOF.
// Implementations are not required to be safe for concurrent use.
type ByteSource interface {
	io.ReaderAt
	Open() error
	Close() error
	IsOpen() bool
}

// -----------------------------------------------------------------------------
// Streaming filter result
// -----------------------------------------------------------------------------

// StepKind discriminates a Step.
type StepKind uint8

const (
	StepConsumed StepKind = iota // advance by N bytes
	StepNeedMore                 // re-invoke with N more bytes at the same position
	StepDone                     // stop streaming
)

// Step is the result of one invocation of a streaming filter callback.
type Step struct {
	Kind StepKind
	N    int
}

// Consumed advances the stream position by n bytes.
func Consumed(n int) Step { return Step{Kind: StepConsumed, N: n} }

// NeedMore asks for the same position again with at least n additional bytes.
func NeedMore(n int) Step { return Step{Kind: StepNeedMore, N: n} }

// Done terminates the stream.
func Done() Step { return Step{Kind: StepDone} }

func (s Step) String() string {
	switch s.Kind {
	case StepConsumed:
		return fmt.Sprintf("consumed(%d)", s.N)
	case StepNeedMore:
		return fmt.Sprintf("need-more(%d)", s.N)
	case StepDone:
		return "done"
	default:
		return fmt.Sprintf("step(%d,%d)", s.Kind, s.N)
	}
}
