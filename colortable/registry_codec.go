// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
)

// Sidecar state tags, per spec.md §6.
const (
	tagFresh  = 0
	tagClosed = 1
	tagOpen   = 2
)

// WriteTo serializes the registry to w as
// (state_tag, state_payload, count, [(start, end, gen) x count]),
// using encoding/binary's standard LEB128-style varints for every
// integer field — stdlib machinery the teacher already leans on
// throughout perffile, and a self-describing scheme as spec.md §6
// requires without needing a new dependency.
func (g *GenerationRegistry) WriteTo(w io.Writer) (int64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cw := &countingWriter{w: w}
	buf := make([]byte, binary.MaxVarintLen64)

	putUvarint := func(v uint64) error {
		n := binary.PutUvarint(buf, v)
		_, err := cw.Write(buf[:n])
		return err
	}

	switch g.state {
	case stateFresh:
		if err := putUvarint(tagFresh); err != nil {
			return cw.n, wrapErr(ErrIo, err)
		}
	case stateClosed:
		if err := putUvarint(tagClosed); err != nil {
			return cw.n, wrapErr(ErrIo, err)
		}
		if err := putUvarint(g.lastGen); err != nil {
			return cw.n, wrapErr(ErrIo, err)
		}
	case stateOpen:
		if err := putUvarint(tagOpen); err != nil {
			return cw.n, wrapErr(ErrIo, err)
		}
		if err := putUvarint(g.openGen); err != nil {
			return cw.n, wrapErr(ErrIo, err)
		}
		if err := putUvarint(uint64(g.openStart)); err != nil {
			return cw.n, wrapErr(ErrIo, err)
		}
	}

	if err := putUvarint(uint64(len(g.ranges))); err != nil {
		return cw.n, wrapErr(ErrIo, err)
	}
	for _, r := range g.ranges {
		if err := putUvarint(uint64(r.Start)); err != nil {
			return cw.n, wrapErr(ErrIo, err)
		}
		if err := putUvarint(uint64(r.End)); err != nil {
			return cw.n, wrapErr(ErrIo, err)
		}
		if err := putUvarint(r.Gen); err != nil {
			return cw.n, wrapErr(ErrIo, err)
		}
	}
	return cw.n, nil
}

// ReadGenerationRegistry deserializes a registry from r, reinserting
// its entries and verifying they are pairwise disjoint; any overlap
// is reported as ErrCorruptRegistry.
func ReadGenerationRegistry(r io.Reader) (*GenerationRegistry, error) {
	br := bufio.NewReader(r)

	readUvarint := func() (uint64, error) {
		v, err := binary.ReadUvarint(br)
		if err != nil {
			return 0, newErr(ErrCorruptRegistry, err.Error())
		}
		return v, nil
	}

	tag, err := readUvarint()
	if err != nil {
		return nil, err
	}

	g := &GenerationRegistry{}
	switch tag {
	case tagFresh:
		g.state = stateFresh
	case tagClosed:
		last, err := readUvarint()
		if err != nil {
			return nil, err
		}
		g.state = stateClosed
		g.lastGen = last
	case tagOpen:
		gen, err := readUvarint()
		if err != nil {
			return nil, err
		}
		start, err := readUvarint()
		if err != nil {
			return nil, err
		}
		g.state = stateOpen
		g.openGen = gen
		g.openStart = FragmentIndex(start)
	default:
		return nil, newErr(ErrCorruptRegistry, "unknown state tag")
	}

	count, err := readUvarint()
	if err != nil {
		return nil, err
	}

	var prevEnd FragmentIndex
	ranges := make([]genRange, 0, count)
	for i := uint64(0); i < count; i++ {
		start, err := readUvarint()
		if err != nil {
			return nil, err
		}
		end, err := readUvarint()
		if err != nil {
			return nil, err
		}
		gen, err := readUvarint()
		if err != nil {
			return nil, err
		}
		r := genRange{Start: FragmentIndex(start), End: FragmentIndex(end), Gen: gen}
		if r.Start >= r.End {
			return nil, newErr(ErrCorruptRegistry, "empty or inverted range")
		}
		if i > 0 && r.Start < prevEnd {
			return nil, newErr(ErrCorruptRegistry, "overlapping ranges")
		}
		prevEnd = r.End
		ranges = append(ranges, r)
	}
	g.ranges = ranges

	return g, nil
}

// SaveGenerationRegistry serializes g to the file at path, replacing
// its contents.
func SaveGenerationRegistry(g *GenerationRegistry, path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return wrapErr(ErrIo, err)
	}
	if _, err := g.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return wrapErr(ErrIo, f.Close())
}

// LoadGenerationRegistry reads a registry sidecar from path.
func LoadGenerationRegistry(path string) (*GenerationRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(ErrIo, err)
	}
	defer f.Close()
	return ReadGenerationRegistry(f)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
