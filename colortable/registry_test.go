// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRegistryFreshMustStartAtOne(t *testing.T) {
	g := NewGenerationRegistry()
	require.Error(t, g.Start(2, 0))
	require.NoError(t, g.Start(1, 0))
}

func TestGenerationRegistrySingletonReservedThenRemoved(t *testing.T) {
	g := NewGenerationRegistry()
	require.NoError(t, g.Start(1, 0))

	// Zero-append generation: head hasn't moved at End time.
	gen, ok := g.Find(1)
	require.True(t, ok)
	assert.Equal(t, uint64(0), gen)

	require.NoError(t, g.End(1))
	_, ok = g.Find(1)
	assert.False(t, ok, "singleton range should be removed when nothing was appended")

	// Start index 1 may be reused, but generation 0 did close, so its
	// number may not be.
	require.Error(t, g.Start(1, 0), "Start requires gen > lastGen once closed")
}

func TestGenerationRegistryWidenOnNonEmptyGeneration(t *testing.T) {
	g := NewGenerationRegistry()
	require.NoError(t, g.Start(1, 0))
	require.NoError(t, g.End(3)) // pretend two fragments were appended

	gen, ok := g.Find(1)
	require.True(t, ok)
	assert.Equal(t, uint64(0), gen)
	gen, ok = g.Find(2)
	require.True(t, ok)
	assert.Equal(t, uint64(0), gen)
	_, ok = g.Find(3)
	assert.False(t, ok)
}

func TestGenerationRegistryRejectsNonIncreasingGeneration(t *testing.T) {
	g := NewGenerationRegistry()
	require.NoError(t, g.Start(1, 5))
	require.NoError(t, g.End(2))

	assert.Error(t, g.Start(2, 5))
	assert.Error(t, g.Start(2, 4))
	assert.NoError(t, g.Start(2, 6))
}

func TestGenerationRegistryRejectsDoubleOpen(t *testing.T) {
	g := NewGenerationRegistry()
	require.NoError(t, g.Start(1, 0))
	assert.Error(t, g.Start(2, 1))
}

func TestGenerationRegistrySkippedGenerationNumbers(t *testing.T) {
	g := NewGenerationRegistry()
	require.NoError(t, g.Start(1, 0))
	require.NoError(t, g.End(2))
	require.NoError(t, g.Start(2, 100))
	require.NoError(t, g.End(5))

	gen, ok := g.Find(1)
	require.True(t, ok)
	assert.Equal(t, uint64(0), gen)
	gen, ok = g.Find(4)
	require.True(t, ok)
	assert.Equal(t, uint64(100), gen)
}

func TestGenerationRegistryRoundTrip(t *testing.T) {
	g := NewGenerationRegistry()
	require.NoError(t, g.Start(1, 0))
	require.NoError(t, g.End(4))
	require.NoError(t, g.Start(4, 7))
	require.NoError(t, g.End(9))

	var buf bytes.Buffer
	n, err := g.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	g2, err := ReadGenerationRegistry(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.Ranges(), g2.Ranges())

	cur, ok := g2.Current()
	assert.False(t, ok)
	_ = cur
}

func TestGenerationRegistryRoundTripOpenState(t *testing.T) {
	g := NewGenerationRegistry()
	require.NoError(t, g.Start(1, 0))
	require.NoError(t, g.End(4))
	require.NoError(t, g.Start(4, 7))

	var buf bytes.Buffer
	_, err := g.WriteTo(&buf)
	require.NoError(t, err)

	g2, err := ReadGenerationRegistry(&buf)
	require.NoError(t, err)
	gen, ok := g2.Current()
	require.True(t, ok)
	assert.Equal(t, uint64(7), gen)
}

func TestGenerationRegistryDoubleSyncIsIdempotent(t *testing.T) {
	g := NewGenerationRegistry()
	require.NoError(t, g.Start(1, 0))
	require.NoError(t, g.End(4))

	var buf1, buf2 bytes.Buffer
	_, err := g.WriteTo(&buf1)
	require.NoError(t, err)
	_, err = g.WriteTo(&buf2)
	require.NoError(t, err)
	assert.Equal(t, buf1.Bytes(), buf2.Bytes())
}

func TestReadGenerationRegistryRejectsOverlap(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{tagFresh})
	buf.Write([]byte{2}) // count = 2
	// range 1: [1, 5) gen 0
	buf.Write([]byte{1, 5, 0})
	// range 2: [3, 6) gen 1 -- overlaps
	buf.Write([]byte{3, 6, 1})

	_, err := ReadGenerationRegistry(&buf)
	assert.Error(t, err)
}
