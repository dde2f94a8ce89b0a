// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package colortable implements an append-only, memory-mappable store
// for color classes: compressed bitsets that record, for a given
// k-mer identifier, the set of samples in which it occurs.
//
// A color class is a chain of fixed-size color fragments. Each
// fragment contributes 32 bits of membership for one generation and
// points at the fragment that precedes it, so that many classes can
// share a common chain suffix. Opening a generation with
// Store.WithGeneration yields a GenerationSession that can create new
// classes, fork existing ones, or extend them with another 32 bits.
// Store.Map yields a ReadView over the current file contents, from
// which ChainIter walks a class's chain back to its root.
package colortable // import "github.com/ibsamsky/colortable/colortable"
