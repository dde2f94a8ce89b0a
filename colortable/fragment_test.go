// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFragmentFileCreateAndReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "color_table")

	ff, err := CreateFragmentFile(path, defaultBufferSize)
	require.NoError(t, err)
	require.Equal(t, FragmentIndex(1), ff.Head())

	idx, err := ff.Append(ColorFragment{Color: 0xDEADBEEF})
	require.NoError(t, err)
	require.Equal(t, FragmentIndex(1), idx)
	require.NoError(t, ff.Close())

	reopened, err := OpenFragmentFile(path, defaultBufferSize)
	require.NoError(t, err)
	require.Equal(t, FragmentIndex(2), reopened.Head())
	require.NoError(t, reopened.Close())
}

func TestFragmentFileCorruptMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "color_table")

	ff, err := CreateFragmentFile(path, defaultBufferSize)
	require.NoError(t, err)
	require.NoError(t, ff.Close())

	// Corrupt the magic header.
	f, err := os.OpenFile(path, os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{'X'}, 0)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = OpenFragmentFile(path, defaultBufferSize)
	require.Error(t, err)
	var ctErr *Error
	require.True(t, errors.As(err, &ctErr))
	require.Equal(t, ErrCorruptMagic, ctErr.Kind)
}

func TestFragmentFileCorruptLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "color_table")

	ff, err := CreateFragmentFile(path, defaultBufferSize)
	require.NoError(t, err)
	require.NoError(t, ff.Close())

	require.NoError(t, appendStrayByte(path))

	_, err = OpenFragmentFile(path, defaultBufferSize)
	require.Error(t, err)
	var ctErr *Error
	require.True(t, errors.As(err, &ctErr))
	require.Equal(t, ErrCorruptLength, ctErr.Kind)
}

func TestFragmentFileAppendFailsWhileMapped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "color_table")

	ff, err := CreateFragmentFile(path, defaultBufferSize)
	require.NoError(t, err)

	m, err := ff.Map()
	require.NoError(t, err)

	_, err = ff.Append(ColorFragment{Color: 1})
	require.Error(t, err)
	var ctErr *Error
	require.True(t, errors.As(err, &ctErr))
	require.Equal(t, ErrResourceBusy, ctErr.Kind)

	require.NoError(t, m.Close())
	require.NoError(t, ff.Close())
}

func appendStrayByte(path string) error {
	// Appends one stray byte so the file length is no longer a
	// multiple of the record size.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte{0})
	return err
}
