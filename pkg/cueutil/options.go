// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize bounds the input accepted by ParseAndDecode and Validate.
// ham configs and settings files are small; 5MB leaves generous headroom.
const DefaultMaxFileSize int64 = 5 << 20

type (
	// Option adjusts how input is parsed and validated.
	Option func(*options)

	options struct {
		maxFileSize int64
		concrete    bool
		filename    string
	}
)

func newOptions(opts []Option) options {
	o := options{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
		filename:    "<input>",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(o *options) { o.maxFileSize = size }
}

// WithConcrete controls whether every value must be concrete after
// unification. Settings files pass false since all of their fields are
// optional.
func WithConcrete(concrete bool) Option {
	return func(o *options) { o.concrete = concrete }
}

// WithFilename names the input in error messages. Empty names are ignored.
func WithFilename(name string) Option {
	return func(o *options) {
		if name != "" {
			o.filename = name
		}
	}
}
