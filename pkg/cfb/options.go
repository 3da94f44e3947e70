package cfb

import (
	"io"
	"log/slog"
)

type options struct {
	logger *slog.Logger
	skip   int64
}

// Option configures Load.
type Option func(*options)

// WithLogger routes diagnostic events to l. The default discards them.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSkipBytes declares n bytes of foreign data before the header. All
// physical offsets are shifted by n.
func WithSkipBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.skip = n
		}
	}
}

func defaultOptions() options {
	return options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
