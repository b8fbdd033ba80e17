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
	"fmt"
	"strconv"
	"strings"
)

// NumKeys is the number of physical keys on the pad.
const NumKeys = 9

// Key identifies one of the nine physical keys, numbered 1-9 like a
// phone keypad's digits.
type Key int

// ErrInvalidKey is returned for key numbers outside 1-9.
var ErrInvalidKey = fmt.Errorf("key must be between 1 and %d", NumKeys)

const (
	eventPrefix = "Button "
	eventSuffix = " pressed"
)

// AllKeys returns every key in ascending order.
func AllKeys() []Key {
	keys := make([]Key, NumKeys)
	for i := range keys {
		keys[i] = Key(i + 1)
	}
	return keys
}

// Valid reports whether k is one of the nine pad keys.
func (k Key) Valid() bool {
	return k >= 1 && k <= NumKeys
}

// EventName is the canonical mapping key for k, e.g. "Button 3 pressed".
// It doubles as the field name in the bindings file.
func (k Key) EventName() string {
	return eventPrefix + strconv.Itoa(int(k)) + eventSuffix
}

// String is the short display name, e.g. "Button 3".
func (k Key) String() string {
	return "Button " + strconv.Itoa(int(k))
}

// ParseKey parses a bare key number such as "7".
func ParseKey(s string) (Key, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid key %q: %w", s, err)
	}
	k := Key(n)
	if !k.Valid() {
		return 0, fmt.Errorf("invalid key %d: %w", n, ErrInvalidKey)
	}
	return k, nil
}

// KeyFromEventName is the inverse of EventName.
func KeyFromEventName(name string) (Key, bool) {
	if !strings.HasPrefix(name, eventPrefix) || !strings.HasSuffix(name, eventSuffix) {
		return 0, false
	}
	num := strings.TrimSuffix(strings.TrimPrefix(name, eventPrefix), eventSuffix)
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, false
	}
	k := Key(n)
	// reject forms like "Button 03 pressed" so the mapping stays canonical
	if !k.Valid() || k.EventName() != name {
		return 0, false
	}
	return k, true
}
