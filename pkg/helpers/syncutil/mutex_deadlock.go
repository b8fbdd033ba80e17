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

//go:build deadlock

// Package syncutil provides the mutexes used across MacroPad. Build with
// -tags=deadlock to swap in the go-deadlock detector while debugging the
// supervisor and listener goroutines.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether the deadlock detector is compiled in.
const DeadlockEnabled = true

func init() {
	// The supervisor holds no lock across a sleep, so anything held this
	// long is a real bug.
	deadlock.Opts.DeadlockTimeout = 10 * time.Second
}

// Mutex reports lock waits longer than the deadlock timeout.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex reports lock waits longer than the deadlock timeout.
type RWMutex struct {
	deadlock.RWMutex
}
