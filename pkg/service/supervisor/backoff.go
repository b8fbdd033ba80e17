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

package supervisor

import "time"

// Backoff is a capped doubling delay. Next returns the current delay and
// doubles it for the following call; Reset returns to the floor.
type Backoff struct {
	floor   time.Duration
	ceiling time.Duration
	current time.Duration
}

// NewBackoff starts at floor. A ceiling below floor is raised to floor.
func NewBackoff(floor, ceiling time.Duration) *Backoff {
	if ceiling < floor {
		ceiling = floor
	}
	return &Backoff{
		floor:   floor,
		ceiling: ceiling,
		current: floor,
	}
}

// Next returns the delay to wait now and doubles the next one, up to the
// ceiling.
func (b *Backoff) Next() time.Duration {
	d := b.current
	b.current = min(b.current*2, b.ceiling)
	return d
}

// Reset drops the delay back to the floor.
func (b *Backoff) Reset() {
	b.current = b.floor
}
