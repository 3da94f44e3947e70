package vpx

import (
	"io"
	"log/slog"

	"github.com/joshuapare/vpxkit/pkg/bitmap"
	"github.com/joshuapare/vpxkit/pkg/types"
)

type options struct {
	logger    *slog.Logger
	cacheSize int
	skip      int64
	limits    types.Limits
}

// Option configures Open and New.
type Option func(*options)

// WithLogger routes diagnostic events (including those of the underlying
// document when opened with Open) to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCacheSize bounds the number of decoded pictures kept per table.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithLimits replaces types.DefaultLimits for image and script sizes.
func WithLimits(l types.Limits) Option {
	return func(o *options) { o.limits = l }
}

// WithSkipBytes is passed through to cfb.WithSkipBytes by Open.
func WithSkipBytes(n int64) Option {
	return func(o *options) { o.skip = n }
}

func defaultOptions() options {
	return options{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		cacheSize: bitmap.DefaultCacheSize,
		limits:    types.DefaultLimits(),
	}
}
