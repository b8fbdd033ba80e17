/*
Zaparoo MacroPad
Copyright (c) 2026 The Zaparoo Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of Zaparoo MacroPad.

Zaparoo MacroPad is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Zaparoo MacroPad is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Zaparoo MacroPad.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package bindings owns the key-to-command mapping and the file it is
// persisted in.
package bindings

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/ZaparooProject/macropad/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrInvalidUTF8 is returned for commands that are not valid UTF-8, which
// the bindings file can't store byte for byte.
var ErrInvalidUTF8 = errors.New("command is not valid UTF-8")

// Map holds one command per key, keyed by Key.EventName. An empty command
// means the key is unbound.
type Map map[string]string

// Defaults returns a mapping with all nine keys unbound.
func Defaults() Map {
	m := make(Map, NumKeys)
	for _, k := range AllKeys() {
		m[k.EventName()] = ""
	}
	return m
}

// normalize returns a copy of m containing exactly the nine canonical keys.
// Unknown entries are dropped and missing ones are filled in as unbound.
func normalize(m Map) Map {
	out := Defaults()
	for name, cmd := range m {
		if _, ok := KeyFromEventName(name); !ok {
			log.Warn().Msgf("ignoring unknown binding entry: %q", name)
			continue
		}
		out[name] = cmd
	}
	return out
}

// Store is the persisted binding set. All mutation goes through Set or
// Save, both of which write the whole set to disk before returning.
type Store struct {
	fs       afero.Fs
	bindings Map
	path     string
	mu       syncutil.RWMutex
}

// NewStore creates a store backed by path on fs and loads it. A missing
// or unreadable file is the first-run state, not an error.
func NewStore(fs afero.Fs, path string) *Store {
	s := &Store{
		fs:   fs,
		path: path,
	}
	s.bindings = s.Load()
	return s
}

// Path returns the bindings file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the bindings file, falling back to all-unbound defaults if it
// is missing or malformed. It does not change the in-memory set.
func (s *Store) Load() Map {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Msgf("no bindings file at %s, starting with empty bindings", s.path)
		return Defaults()
	} else if err != nil {
		log.Warn().Err(err).Msgf("failed to read bindings file %s, using empty bindings", s.path)
		return Defaults()
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		log.Warn().Err(err).Msgf("failed to parse bindings file %s, using empty bindings", s.path)
		return Defaults()
	}

	return normalize(m)
}

// write serializes m and atomically replaces the bindings file. The new
// contents go to a temp file in the same directory which is then renamed
// over the old one, so readers never see a partial file.
func (s *Store) write(m Map) error {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal bindings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create bindings directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp bindings file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		if rmErr := s.fs.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn().Err(rmErr).Msgf("failed to remove temp bindings file: %s", tmpName)
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temp bindings file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync temp bindings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp bindings file: %w", err)
	}

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace bindings file: %w", err)
	}

	return nil
}

// Save replaces the whole binding set and persists it. Nothing changes if
// any command is not valid UTF-8.
func (s *Store) Save(m Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := normalize(m)
	for name, cmd := range next {
		if !utf8.ValidString(cmd) {
			return fmt.Errorf("cannot save %s: %w", name, ErrInvalidUTF8)
		}
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.bindings = next
	return nil
}

// Get returns the command bound to k, or "" if it is unbound.
func (s *Store) Get(k Key) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bindings[k.EventName()]
}

// Set binds command to k and persists the full set before returning. If the
// write fails the in-memory set is left as it was and the error returned.
func (s *Store) Set(k Key, command string) error {
	if !k.Valid() {
		return fmt.Errorf("cannot bind key %d: %w", k, ErrInvalidKey)
	}
	if !utf8.ValidString(command) {
		return fmt.Errorf("cannot bind %s: %w", k, ErrInvalidUTF8)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.bindings)
	next[k.EventName()] = command
	if err := s.write(next); err != nil {
		return fmt.Errorf("failed to save binding for %s: %w", k, err)
	}
	s.bindings = next

	log.Info().Msgf("updated %s to %q", k.EventName(), command)
	return nil
}

// All returns a snapshot of every binding. The caller owns the copy.
func (s *Store) All() Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.bindings)
}
