// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package colortable

import (
	"golang.org/x/sys/unix"
)

// Mapping is a read-only memory map of a FragmentFile's contents at
// the moment it was created. Its length is fixed; fragments appended
// after Map was called are not visible through it.
type Mapping struct {
	data []byte
	ff   *FragmentFile
}

// Map flushes the write buffer, duplicates the file descriptor,
// mmaps the file's entire current length read-only, and advises the
// kernel of random access (the chain-walk workload reads backward
// sparsely). The caller must call Close when done.
func (ff *FragmentFile) Map() (*Mapping, error) {
	if err := ff.Flush(); err != nil {
		return nil, err
	}

	info, err := ff.file.Stat()
	if err != nil {
		return nil, wrapErr(ErrIo, err)
	}
	size := info.Size()
	if size == 0 {
		return nil, newErr(ErrCorruptLength, size)
	}

	fd, err := unix.Dup(int(ff.file.Fd()))
	if err != nil {
		return nil, wrapErr(ErrIo, err)
	}
	defer unix.Close(fd)

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, wrapErr(ErrIo, err)
	}
	if err := unix.Madvise(data, unix.MADV_RANDOM); err != nil {
		unix.Munmap(data)
		return nil, wrapErr(ErrIo, err)
	}

	ff.mapped++
	return &Mapping{data: data, ff: ff}, nil
}

// Fragment returns the fragment at idx, or false if idx is out of
// bounds of the mapping.
func (m *Mapping) Fragment(idx FragmentIndex) (ColorFragment, bool) {
	off := int(idx) * recordSize
	if off < 0 || off+recordSize > len(m.data) {
		return ColorFragment{}, false
	}
	return decodeFragment(m.data[off : off+recordSize]), true
}

// Len returns the number of records (including the magic header)
// visible through the mapping.
func (m *Mapping) Len() int { return len(m.data) / recordSize }

// Close unmaps the region. It is safe to call once.
func (m *Mapping) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	m.ff.mapped--
	return wrapErr(ErrIo, err)
}

// flockShared takes a shared (reader) advisory lock on fd.
func flockShared(fd int) error {
	return wrapErr(ErrIo, unix.Flock(fd, unix.LOCK_SH))
}

// flockUnlock releases an advisory lock taken with flockShared.
func flockUnlock(fd int) error {
	return wrapErr(ErrIo, unix.Flock(fd, unix.LOCK_UN))
}
