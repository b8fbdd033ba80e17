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

// Package models holds the types shared between the service and its
// presentation layers.
package models

import (
	"time"
)

// ConnectionState is where the supervisor is in its connect cycle.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// Status is published by the connection supervisor on every state
// transition.
type Status struct {
	Time     time.Time
	Endpoint string
	// RetryIn is the backoff the supervisor is about to sleep for. Only set
	// on Disconnected.
	RetryIn time.Duration
	State   ConnectionState
}

// Message is the status line text shown to the user.
func (s Status) Message() string {
	switch s.State {
	case StateConnected:
		return "Connected: " + s.Endpoint
	case StateConnecting:
		return "Connecting..."
	default:
		return "Disconnected"
	}
}

// EditingEnabled reports whether key editing should be available.
func (s Status) EditingEnabled() bool {
	return s.State == StateConnected
}

const (
	KeyStatusConnected    = "Connected"
	KeyStatusDisconnected = "Disconnected"
)
