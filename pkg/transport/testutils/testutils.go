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

// Package testutils provides device doubles for transport, supervisor and
// dispatch tests.
package testutils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// CreateTempDevicePath returns a path that passes the transport's stat
// check. On Windows the check is skipped so a COM name is enough.
func CreateTempDevicePath(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		return "COM1"
	}

	path := filepath.Join(t.TempDir(), "ttyACM0")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("failed to create temp device path: %v", err)
	}
	return path
}
