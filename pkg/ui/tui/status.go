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

package tui

import (
	"strings"
	"time"

	"github.com/ZaparooProject/macropad/pkg/models"
)

// animationInterval is how often the "Connecting" dots advance.
const animationInterval = 500 * time.Millisecond

// connectingFrame returns the status text for the nth animation tick,
// cycling through one to three dots.
func connectingFrame(n int) string {
	if n < 0 {
		n = -n
	}
	return "Connecting" + strings.Repeat(".", n%3+1)
}

// statusText is the status line for st. frame only matters while
// connecting.
func statusText(st models.Status, frame int) string {
	switch st.State {
	case models.StateConnecting:
		return connectingFrame(frame)
	case models.StateDisconnected:
		if st.RetryIn > 0 {
			return "Disconnected (retrying in " + st.RetryIn.String() + ")"
		}
		return st.Message()
	default:
		return st.Message()
	}
}
