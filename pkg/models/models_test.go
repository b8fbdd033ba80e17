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

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  Status
		message string
		editing bool
	}{
		{
			name:    "connected",
			status:  Status{State: StateConnected, Endpoint: "/dev/ttyACM0"},
			message: "Connected: /dev/ttyACM0",
			editing: true,
		},
		{
			name:    "connecting",
			status:  Status{State: StateConnecting},
			message: "Connecting...",
		},
		{
			name:    "disconnected",
			status:  Status{State: StateDisconnected, RetryIn: 4 * time.Second},
			message: "Disconnected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.message, tt.status.Message())
			assert.Equal(t, tt.editing, tt.status.EditingEnabled())
		})
	}
}

func TestConnectionStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Disconnected", StateDisconnected.String())
	assert.Equal(t, "Connecting", StateConnecting.String())
	assert.Equal(t, "Connected", StateConnected.String())
	assert.Equal(t, "Unknown", ConnectionState(42).String())
}
