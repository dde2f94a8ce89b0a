// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// FragmentIndex identifies a slot in the fragment table. Index 0 is
// the sentinel "no parent" value and never refers to a real fragment;
// real indices are >= 1, assigned densely in file-append order.
type FragmentIndex uint32

// NoParent is the sentinel FragmentIndex meaning "chain root."
const NoParent FragmentIndex = 0

// ColorId identifies a color class. ColorId(0) is the null class (the
// empty chain). For any non-null class, the ColorId equals the
// FragmentIndex of that class's current head fragment: the aliasing
// removes the need for a separate id-to-head table.
type ColorId uint32

// NullClass is the empty color class.
const NullClass ColorId = 0

// FragmentIndex returns id's value reinterpreted as a FragmentIndex.
func (id ColorId) FragmentIndex() FragmentIndex { return FragmentIndex(id) }

// ColorId reinterprets a FragmentIndex as the ColorId of the class
// whose head it is.
func (idx FragmentIndex) ColorId() ColorId { return ColorId(idx) }

// ColorFragment is a fixed-size, densely-packed record: 32 bits of
// sample membership for one generation's window, plus a pointer to
// the fragment immediately preceding it in the same class's chain.
// Bit b of Color is set iff sample number (generation*32)+b contains
// the k-mer(s) assigned to this class.
type ColorFragment struct {
	ParentPointer FragmentIndex
	Color         uint32
}

// magic is the fragment table's 8-byte header: an ASCII tag plus a
// one-byte format version, zero-padded to a full record.
var magic = [recordSize]byte{'C', 'T', 'B', 'L', formatVersion, 0, 0, 0}

const formatVersion = 1

// Header describes the fragment table's 8-byte magic record: an
// ASCII tag identifying the format, and a version byte. Reading
// fragment index 0 as a ColorFragment is defined but meaningless; use
// Header to interpret it instead.
type Header struct {
	Tag     string
	Version byte
}

func decodeHeader(buf [recordSize]byte) Header {
	return Header{Tag: string(buf[:4]), Version: buf[4]}
}

// Header returns the fragment table's decoded magic record.
func (ff *FragmentFile) Header() (Header, error) {
	var buf [recordSize]byte
	if _, err := ff.file.ReadAt(buf[:], 0); err != nil {
		return Header{}, wrapErr(ErrIo, err)
	}
	return decodeHeader(buf), nil
}

// encode writes f's on-disk representation (little-endian) into buf,
// which must be at least recordSize bytes.
func (f ColorFragment) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(f.ParentPointer))
	binary.LittleEndian.PutUint32(buf[4:8], f.Color)
}

// decodeFragment reads a ColorFragment from buf, which must be at
// least recordSize bytes.
func decodeFragment(buf []byte) ColorFragment {
	return ColorFragment{
		ParentPointer: FragmentIndex(binary.LittleEndian.Uint32(buf[0:4])),
		Color:         binary.LittleEndian.Uint32(buf[4:8]),
	}
}

// FragmentFile is a fixed-size append-only array of ColorFragment
// records, backed by a single file. Writes are buffered in user space
// and the file is reopenable: Open reconstructs head from the file's
// length.
type FragmentFile struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	head   FragmentIndex // index of the next free slot

	// mapped counts live mappings; Append refuses to run while > 0
	// (see Store.Map / ReadView), matching the single-writer,
	// shared-reader discipline spec'd for this store.
	mapped int
}

// CreateFragmentFile truncates (or creates) the file at path, writes
// the magic header, and returns a FragmentFile with head == 1.
func CreateFragmentFile(path string, bufferSize int) (*FragmentFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, wrapErr(ErrIo, err)
	}
	ff := &FragmentFile{
		path:   path,
		file:   f,
		writer: bufio.NewWriterSize(f, bufferSize),
		head:   1,
	}
	if _, err := ff.writer.Write(magic[:]); err != nil {
		f.Close()
		return nil, wrapErr(ErrIo, err)
	}
	if err := ff.writer.Flush(); err != nil {
		f.Close()
		return nil, wrapErr(ErrIo, err)
	}
	return ff, nil
}

// OpenFragmentFile opens an existing fragment file at path, verifying
// its length is a multiple of the record size and that its first
// record matches the expected magic.
func OpenFragmentFile(path string, bufferSize int) (*FragmentFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, wrapErr(ErrIo, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wrapErr(ErrIo, err)
	}
	size := info.Size()
	if size%recordSize != 0 {
		f.Close()
		return nil, newErr(ErrCorruptLength, size)
	}
	if size == 0 {
		f.Close()
		return nil, newErr(ErrCorruptLength, size)
	}

	var hdr [recordSize]byte
	if _, err := f.ReadAt(hdr[:], 0); err != nil {
		f.Close()
		return nil, wrapErr(ErrIo, err)
	}
	if hdr != magic {
		f.Close()
		return nil, newErr(ErrCorruptMagic, fmt.Sprintf("%x", hdr))
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, wrapErr(ErrIo, err)
	}

	return &FragmentFile{
		path:   path,
		file:   f,
		writer: bufio.NewWriterSize(f, bufferSize),
		head:   FragmentIndex(size / recordSize),
	}, nil
}

// Head returns the index of the next free slot.
func (ff *FragmentFile) Head() FragmentIndex { return ff.head }

// Append writes a new record at the current head and returns its
// index. It fails if a ReadView currently holds this file mapped.
func (ff *FragmentFile) Append(frag ColorFragment) (FragmentIndex, error) {
	if ff.mapped > 0 {
		return 0, newErr(ErrResourceBusy, "append while mapped")
	}
	var buf [recordSize]byte
	frag.encode(buf[:])
	if _, err := ff.writer.Write(buf[:]); err != nil {
		return 0, wrapErr(ErrIo, err)
	}
	idx := ff.head
	ff.head++
	return idx, nil
}

// Flush drains the write buffer to the OS.
func (ff *FragmentFile) Flush() error {
	return wrapErr(ErrIo, ff.writer.Flush())
}

// Close flushes and closes the underlying file.
func (ff *FragmentFile) Close() error {
	if err := ff.Flush(); err != nil {
		ff.file.Close()
		return err
	}
	return wrapErr(ErrIo, ff.file.Close())
}

// Fd returns the underlying file descriptor, for mmap/flock use by
// the rest of the package.
func (ff *FragmentFile) Fd() uintptr { return ff.file.Fd() }

// File returns the underlying *os.File.
func (ff *FragmentFile) File() *os.File { return ff.file }
