// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

import "fmt"

// ErrorKind classifies the errors this package returns.
type ErrorKind int

const (
	// ErrIo wraps an underlying I/O failure.
	ErrIo ErrorKind = iota
	// ErrCorruptMagic means the fragment table's first record does
	// not match the expected magic header.
	ErrCorruptMagic
	// ErrCorruptLength means the fragment table's length is not a
	// multiple of the record size.
	ErrCorruptLength
	// ErrCorruptRegistry means the generation sidecar could not be
	// parsed, or its ranges overlap.
	ErrCorruptRegistry
	// ErrInvalidColorId means a caller passed a ColorId at or beyond
	// the current head to Fork or Extend.
	ErrInvalidColorId
	// ErrBadGenerationState means Start or End was called in the
	// wrong registry state, or a mutation was attempted outside an
	// open generation.
	ErrBadGenerationState
	// ErrInvalidGeneration means Start was called with a generation
	// number not greater than the last closed one.
	ErrInvalidGeneration
	// ErrResourceBusy means an operation needed exclusive access to
	// the fragment file while a ReadView held it mapped, or vice
	// versa.
	ErrResourceBusy
)

func (k ErrorKind) String() string {
	switch k {
	case ErrIo:
		return "io error"
	case ErrCorruptMagic:
		return "corrupt magic header"
	case ErrCorruptLength:
		return "corrupt file length"
	case ErrCorruptRegistry:
		return "corrupt generation registry"
	case ErrInvalidColorId:
		return "invalid color id"
	case ErrBadGenerationState:
		return "bad generation state"
	case ErrInvalidGeneration:
		return "invalid generation"
	case ErrResourceBusy:
		return "resource busy"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by this package. Callers that need
// to distinguish error kinds should use errors.As and inspect Kind,
// rather than string-matching Error().
type Error struct {
	Kind ErrorKind
	// Detail is an optional kind-specific value, such as the
	// offending ColorId or generation number.
	Detail any
	// Err is the underlying cause, if any (e.g. an *os.PathError).
	Err error
}

func (e *Error) Error() string {
	if e.Detail != nil {
		if e.Err != nil {
			return fmt.Sprintf("colortable: %s (%v): %v", e.Kind, e.Detail, e.Err)
		}
		return fmt.Sprintf("colortable: %s (%v)", e.Kind, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("colortable: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("colortable: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

func newErr(kind ErrorKind, detail any) error {
	return &Error{Kind: kind, Detail: detail}
}

func invalidColorId(id ColorId) error {
	return newErr(ErrInvalidColorId, id)
}

func invalidGeneration(g uint64) error {
	return newErr(ErrInvalidGeneration, g)
}

func badGenerationState(why string) error {
	return &Error{Kind: ErrBadGenerationState, Detail: why}
}
