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

package config

import "path/filepath"

// Macros holds the binding file settings.
type Macros struct {
	File       string `toml:"file,omitempty"`
	PushOnEdit bool   `toml:"push_on_edit"`
}

// MacrosPath returns the binding file location. Relative paths resolve
// against the data directory.
func (c *Instance) MacrosPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path := c.vals.Macros.File
	if path == "" {
		return filepath.Join(c.paths.DataDir, MacrosFile)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.paths.DataDir, path)
}

// PushOnEdit reports whether edits are sent to a connected device.
func (c *Instance) PushOnEdit() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Macros.PushOnEdit
}

// SetPushOnEdit toggles pushing edits to the device.
func (c *Instance) SetPushOnEdit(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Macros.PushOnEdit = enabled
}
