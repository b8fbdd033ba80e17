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

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Parity values accepted in the device section, in either case.
const (
	ParityNone = "N"
	ParityEven = "E"
	ParityOdd  = "O"
)

// Device holds the serial port settings and port selection.
type Device struct {
	Parity        string   `toml:"parity"`
	VID           string   `toml:"vid,omitempty"`
	PID           string   `toml:"pid,omitempty"`
	Ports         []string `toml:"ports,omitempty,multiline"`
	BaudRate      int      `toml:"baud_rate"`
	DataBits      int      `toml:"data_bits"`
	StopBits      int      `toml:"stop_bits"`
	SettleDelayMs int      `toml:"settle_delay_ms"`
}

func (d Device) validate() error {
	if d.BaudRate <= 0 {
		return fmt.Errorf("baud rate must be positive, got %d", d.BaudRate)
	}
	if d.DataBits < 5 || d.DataBits > 8 {
		return fmt.Errorf("data bits must be between 5 and 8, got %d", d.DataBits)
	}
	if d.StopBits != 1 && d.StopBits != 2 {
		return fmt.Errorf("stop bits must be 1 or 2, got %d", d.StopBits)
	}
	if !slices.Contains([]string{ParityNone, ParityEven, ParityOdd}, strings.ToUpper(d.Parity)) {
		return fmt.Errorf("unsupported parity %q", d.Parity)
	}
	if d.SettleDelayMs < 0 {
		return fmt.Errorf("settle delay must not be negative, got %d", d.SettleDelayMs)
	}
	return nil
}

// Device returns a copy of the device settings.
func (c *Instance) Device() Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d := c.vals.Device
	d.Ports = slices.Clone(d.Ports)
	return d
}

// SettleDelay is how long to wait after opening a port before flushing
// whatever the device printed while it reset.
func (c *Instance) SettleDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Device.SettleDelayMs) * time.Millisecond
}

// SetPorts replaces the configured port list. It is not saved until Save.
func (c *Instance) SetPorts(ports []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Device.Ports = slices.Clone(ports)
}
