// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

import "fmt"

// ReadView is a scoped handle over a live mmap of a Store's fragment
// table. It borrows the store for its lifetime and must be closed
// when the caller is done with it, releasing the advisory lock and
// the mapping.
//
// A reader that opened its ReadView before a generation opened will
// not observe any of that generation's fragments, since the mapping's
// length is fixed at Map time. A reader that opens its ReadView while
// a generation is in progress may observe some of that generation's
// fragments without the registry being able to report their
// generation yet; see ChainIter.Next for how that surfaces.
type ReadView struct {
	store   *Store
	mapping *Mapping
}

// Close releases the mapping and the advisory file lock.
func (rv *ReadView) Close() error {
	// mapping.Close touches the FragmentFile's mapped counter, which
	// Append and Map also touch; all three must go through writeMu.
	rv.store.writeMu.Lock()
	err := rv.mapping.Close()
	rv.store.writeMu.Unlock()

	if unlockErr := flockUnlock(int(rv.store.frags.Fd())); err == nil {
		err = unlockErr
	}
	return err
}

// Class returns an iterator over id's chain. If id is the null class,
// or id.FragmentIndex() is at or beyond the head this ReadView was
// mapped at, the iterator yields nothing — this is not an error, per
// spec.md's boundary-behavior rules.
func (rv *ReadView) Class(id ColorId) *ChainIter {
	idx := id.FragmentIndex()
	if idx == NoParent || int(idx) >= rv.mapping.Len() {
		return &ChainIter{view: rv, empty: true}
	}

	it := &ChainIter{view: rv, next: idx}
	if gen, ok := rv.store.registry.Find(idx); ok {
		it.startGen = gen
		it.haveStartGen = true
	}
	return it
}

// ParentOf returns the fragment that frag's parent pointer refers to,
// or false if frag is a chain root.
func (rv *ReadView) ParentOf(frag ColorFragment) (ColorFragment, bool) {
	if frag.ParentPointer == NoParent {
		return ColorFragment{}, false
	}
	return rv.mapping.Fragment(frag.ParentPointer)
}

// ChainIter walks a color class's chain from its head back to its
// root, yielding (color, generation) pairs in reverse chronological
// order: most recent fragment first.
type ChainIter struct {
	view  *ReadView
	next  FragmentIndex // 0 once exhausted
	empty bool          // true if constructed for a null/invalid id

	color      uint32
	generation uint64
	err        error

	startGen     uint64
	haveStartGen bool
}

// Next advances the iterator and reports whether a pair is available.
// Once Next returns false, Err reports whether that was due to
// exhaustion (nil), a fragment outside the mapping, or a fragment
// the registry has no generation for (a stale read of an in-progress
// generation, or a corrupt registry).
func (it *ChainIter) Next() bool {
	if it.err != nil || it.next == NoParent {
		return false
	}

	frag, ok := it.view.mapping.Fragment(it.next)
	if !ok {
		it.err = fmt.Errorf("colortable: fragment %d out of bounds of mapping", it.next)
		return false
	}

	gen, ok := it.view.store.registry.Find(it.next)
	if !ok {
		// A fragment exists outside any generation range: either a
		// stale read of an in-progress generation (see ReadView's
		// doc comment) or a genuine registry bug. We can't tell the
		// difference from here, so we report it and let the caller
		// decide; this is not silently swallowed.
		it.err = fmt.Errorf("colortable: fragment %d has no generation (stale or corrupt read)", it.next)
		return false
	}

	it.color = frag.Color
	it.generation = gen
	it.next = frag.ParentPointer
	return true
}

// Color returns the current fragment's partial color bits.
func (it *ChainIter) Color() uint32 { return it.color }

// Generation returns the current fragment's generation number.
func (it *ChainIter) Generation() uint64 { return it.generation }

// Err returns the first error encountered by Next, if any.
func (it *ChainIter) Err() error { return it.err }

// SizeHint returns a lower and upper bound on the number of pairs
// this iterator will yield. The lower bound is 0 or 1 depending on
// whether the class is empty; the upper bound is derived from the
// starting fragment's generation number plus one (an iterator cannot
// yield more pairs than there are generations at or before its
// head), and is -1 if unknown.
func (it *ChainIter) SizeHint() (lo int, hi int) {
	if it.empty {
		return 0, 0
	}
	if !it.haveStartGen {
		return 1, -1
	}
	return 1, int(it.startGen) + 1
}
