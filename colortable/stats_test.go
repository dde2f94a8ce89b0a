// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributionOfEmpty(t *testing.T) {
	d := distributionOf(nil)
	assert.Equal(t, Distribution{}, d)
}

func TestDistributionOfBasic(t *testing.T) {
	d := distributionOf([]float64{1, 2, 3, 4, 5})
	assert.Equal(t, 5, d.Count)
	assert.InDelta(t, 3.0, d.Mean, 1e-9)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 5.0, d.Max)
}

func TestChainLengthDistribution(t *testing.T) {
	dir := t.TempDir()
	s, err := Create(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	var a, b ColorId
	require.NoError(t, s.WithGeneration(0, func(sess *GenerationSession) error {
		var err error
		a, err = sess.NewClass(1)
		if err != nil {
			return err
		}
		b, err = sess.Fork(a, 2)
		return err
	}))
	require.NoError(t, s.WithGeneration(1, func(sess *GenerationSession) error {
		var err error
		b, err = sess.Extend(b, 4)
		return err
	}))

	rv, err := s.Map()
	require.NoError(t, err)
	defer rv.Close()

	d, err := rv.ChainLengthDistribution([]ColorId{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Count)
	assert.Equal(t, 1.0, d.Min) // a's chain length
	assert.Equal(t, 3.0, d.Max) // b's chain length, after extend
}

func TestGenerationSizeDistribution(t *testing.T) {
	dir := t.TempDir()
	s, err := Create(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WithGeneration(0, func(sess *GenerationSession) error {
		for i := 0; i < 3; i++ {
			if _, err := sess.NewClass(uint32(i)); err != nil {
				return err
			}
		}
		return nil
	}))
	require.NoError(t, s.WithGeneration(1, func(sess *GenerationSession) error {
		_, err := sess.NewClass(99)
		return err
	}))

	d := s.GenerationSizeDistribution()
	assert.Equal(t, 2, d.Count)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 3.0, d.Max)
}
