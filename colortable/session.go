// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

// GenerationSession is the capability handle a caller receives inside
// Store.WithGeneration. It is valid only for the duration of that
// call and borrows the Store.
//
// Enforcement of "at most one extend per class per generation" is a
// caller contract, not runtime-enforced by default: because Extend
// returns a new id, the old id remains a legitimate fork point, so
// the rule reduces to "don't Extend the same returned id twice in one
// generation," which this type does not track unless
// Config.DebugTrackExtensions is set.
type GenerationSession struct {
	store      *Store
	generation uint64

	// extended records source ids already passed to Extend this
	// generation, when Config.DebugTrackExtensions is set.
	extended map[ColorId]bool
}

// NewClass appends a root fragment (parent 0, color) and returns its
// index as the new class's id.
func (s *GenerationSession) NewClass(color uint32) (ColorId, error) {
	idx, err := s.store.appendFragment(ColorFragment{ParentPointer: NoParent, Color: color})
	if err != nil {
		return 0, err
	}
	return idx.ColorId(), nil
}

// Fork validates that parent is a known class, appends a fragment
// pointing at it, and returns the new index as the forked class's id.
// The original class is unaffected and may still be extended this
// generation.
func (s *GenerationSession) Fork(parent ColorId, color uint32) (ColorId, error) {
	if err := s.validate(parent); err != nil {
		return 0, err
	}
	idx, err := s.store.appendFragment(ColorFragment{
		ParentPointer: parent.FragmentIndex(),
		Color:         color,
	})
	if err != nil {
		return 0, err
	}
	return idx.ColorId(), nil
}

// Extend has identical append semantics to Fork, but returns the new
// head id representing the extended class. Callers must replace their
// handle with the returned id: parent is not mutated, and continues
// to address the pre-extend head, which remains a legal fork point
// but must not be extended again this generation.
func (s *GenerationSession) Extend(parent ColorId, color uint32) (ColorId, error) {
	if err := s.validate(parent); err != nil {
		return 0, err
	}
	if s.extended != nil {
		if s.extended[parent] {
			return 0, newErr(ErrBadGenerationState, "class already extended this generation")
		}
		s.extended[parent] = true
	}
	idx, err := s.store.appendFragment(ColorFragment{
		ParentPointer: parent.FragmentIndex(),
		Color:         color,
	})
	if err != nil {
		return 0, err
	}
	return idx.ColorId(), nil
}

func (s *GenerationSession) validate(id ColorId) error {
	if id.FragmentIndex() >= s.store.head() {
		return invalidColorId(id)
	}
	return nil
}
