// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

import "go.uber.org/zap"

const (
	defaultBufferSize          = 1 << 20 // 1 MiB
	defaultColorTableFileName  = "color_table"
	defaultGenerationsFileName = "generations"
	recordSize                 = 8
	magicHeaderSize            = 8
)

// Config holds the tunables for a Store. Construct one with
// NewConfig and zero or more Options; the zero value is not ready to
// use.
type Config struct {
	// BufferSize is the capacity, in bytes, of the fragment file's
	// user-space write buffer.
	BufferSize int

	// ColorTableFileName is the fragment table's filename, relative
	// to the store directory.
	ColorTableFileName string

	// GenerationsFileName is the generation registry sidecar's
	// filename, relative to the store directory.
	GenerationsFileName string

	// Logger receives structured diagnostics for generation
	// lifecycle, sync, and corruption events. Defaults to a no-op
	// logger.
	Logger *zap.Logger

	// DebugTrackExtensions enables a per-generation check that no
	// source ColorId is extended more than once. It is not part of
	// the durable on-disk format and exists only to catch caller
	// contract violations (see GenerationSession.Extend) in tests and
	// development builds; it adds bookkeeping overhead and is off by
	// default.
	DebugTrackExtensions bool
}

// Option configures a Config.
type Option func(*Config)

// NewConfig builds a Config from defaults and the given options.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		BufferSize:          defaultBufferSize,
		ColorTableFileName:  defaultColorTableFileName,
		GenerationsFileName: defaultGenerationsFileName,
		Logger:              zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBufferSize sets the fragment file's write buffer capacity.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.BufferSize = size
		}
	}
}

// WithColorTableFileName overrides the fragment table's filename.
func WithColorTableFileName(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.ColorTableFileName = name
		}
	}
}

// WithGenerationsFileName overrides the generation sidecar's filename.
func WithGenerationsFileName(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.GenerationsFileName = name
		}
	}
}

// WithLogger sets the structured logger a Store reports to.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithDebugTrackExtensions enables the debug-only double-extend check
// described on Config.DebugTrackExtensions.
func WithDebugTrackExtensions(enabled bool) Option {
	return func(c *Config) {
		c.DebugTrackExtensions = enabled
	}
}
