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

// Package transport is the line-oriented link to the macro pad.
package transport

import (
	"context"
	"errors"
)

// ErrNotConnected is returned by Write when no port is open.
var ErrNotConnected = errors.New("device not connected")

// Transport is a serial-like byte channel to the device. Every failure path
// ends in Close, so "believed connected" only ever becomes "known
// disconnected" in one place, and the supervisor polls IsConnected to notice.
type Transport interface {
	// ListEndpoints returns candidate endpoints in the order to try them.
	// It has no side effects and may return an empty list.
	ListEndpoints() ([]string, error)
	// Open takes an exclusive handle on endpoint and discards anything the
	// device sent before the handle was ready. Cancelling ctx abandons any
	// wait after the handle is taken; the handle is then released.
	Open(ctx context.Context, endpoint string) error
	// IsConnected is true only while a handle is held, that handle has not
	// been invalidated by an I/O error, and the connected flag is set.
	IsConnected() bool
	// Endpoint is the currently open endpoint, or "".
	Endpoint() string
	// Write sends data to the device. A transport error closes the
	// connection; the error is logged and returned.
	Write(data []byte) error
	// ReadLine never blocks waiting for data. It returns a line only if a
	// complete newline-terminated line is available, with surrounding
	// whitespace removed.
	ReadLine() (string, bool)
	// Close releases the handle. Safe to call when already closed.
	Close() error
}
