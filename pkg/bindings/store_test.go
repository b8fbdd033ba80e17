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

package bindings

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPath = "/data/macropad/macros.json"

func TestNewStore_MissingFileDefaults(t *testing.T) {
	t.Parallel()

	s := NewStore(afero.NewMemMapFs(), testPath)
	all := s.All()

	require.Len(t, all, NumKeys)
	for _, k := range AllKeys() {
		cmd, ok := all[k.EventName()]
		assert.True(t, ok, "missing %s", k.EventName())
		assert.Empty(t, cmd)
	}
}

func TestLoad_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "this is not json"},
		{name: "truncated", content: `{"Button 1 pressed": "echo a"`},
		{name: "wrong value type", content: `{"Button 1 pressed": 42}`},
		{name: "array", content: `["echo a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, testPath, []byte(tt.content), 0o600))

			s := NewStore(fs, testPath)

			assert.Equal(t, Defaults(), s.All())
		})
	}
}

func TestLoad_ExistingFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	content := `{
    "Button 1 pressed": "echo a",
    "Button 5 pressed": "notify-send hi",
    "Button 10 pressed": "ignored",
    "Something else": "ignored"
}`
	require.NoError(t, afero.WriteFile(fs, testPath, []byte(content), 0o600))

	s := NewStore(fs, testPath)
	all := s.All()

	assert.Len(t, all, NumKeys)
	assert.Equal(t, "echo a", s.Get(1))
	assert.Equal(t, "notify-send hi", s.Get(5))
	assert.Empty(t, s.Get(2), "missing entries are unbound")
	assert.NotContains(t, all, "Button 10 pressed")
	assert.NotContains(t, all, "Something else")
}

func TestSet_PersistsImmediately(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := NewStore(fs, testPath)

	require.NoError(t, s.Set(3, "echo three"))

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)

	var onDisk map[string]string
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Len(t, onDisk, NumKeys)
	assert.Equal(t, "echo three", onDisk["Button 3 pressed"])

	// a fresh store over the same file sees the edit
	assert.Equal(t, "echo three", NewStore(fs, testPath).Get(3))
}

func TestSet_Unbind(t *testing.T) {
	t.Parallel()

	s := NewStore(afero.NewMemMapFs(), testPath)
	require.NoError(t, s.Set(9, "echo nine"))
	require.NoError(t, s.Set(9, ""))

	assert.Empty(t, s.Get(9))
}

func TestSet_InvalidKey(t *testing.T) {
	t.Parallel()

	s := NewStore(afero.NewMemMapFs(), testPath)

	for _, k := range []Key{0, 10, -1} {
		err := s.Set(k, "echo bad")
		require.ErrorIs(t, err, ErrInvalidKey)
	}
}

func TestSet_InvalidUTF8(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := NewStore(fs, testPath)
	require.NoError(t, s.Set(1, "echo before"))

	err := s.Set(1, "echo \xff")

	require.ErrorIs(t, err, ErrInvalidUTF8)
	assert.Equal(t, "echo before", s.Get(1))
	assert.Equal(t, s.All(), NewStore(fs, testPath).All(), "memory and disk must agree")
}

func TestSave_InvalidUTF8(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := NewStore(fs, testPath)
	require.NoError(t, s.Set(2, "echo two"))

	err := s.Save(Map{"Button 2 pressed": "echo \xfe\xff"})

	require.ErrorIs(t, err, ErrInvalidUTF8)
	assert.Equal(t, "echo two", s.Get(2))
	assert.Equal(t, s.All(), s.Load())
}

func TestSet_WriteFailureSurfaces(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	seed := NewStore(base, testPath)
	require.NoError(t, seed.Set(1, "echo before"))

	s := NewStore(afero.NewReadOnlyFs(base), testPath)
	require.Equal(t, "echo before", s.Get(1))

	err := s.Set(1, "echo after")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save binding")
	assert.Equal(t, "echo before", s.Get(1), "failed save must not change memory")
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := NewStore(fs, testPath)

	for i, k := range AllKeys() {
		require.NoError(t, s.Set(k, strings.Repeat("x", i+1)))
	}

	entries, err := afero.ReadDir(fs, filepath.Dir(testPath))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "macros.json", entries[0].Name())
}

func TestSave_ReplacesWholeSet(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := NewStore(fs, testPath)
	require.NoError(t, s.Set(2, "echo old"))

	require.NoError(t, s.Save(Map{"Button 4 pressed": "echo four"}))

	assert.Empty(t, s.Get(2))
	assert.Equal(t, "echo four", s.Get(4))
	assert.Equal(t, s.All(), s.Load())
}

func TestAll_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewStore(afero.NewMemMapFs(), testPath)
	all := s.All()
	all["Button 1 pressed"] = "mutated"

	assert.Empty(t, s.Get(1))
}
