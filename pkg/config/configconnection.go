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
	"time"
)

// Connection holds the supervisor timing settings.
type Connection struct {
	RetryMinSeconds     int `toml:"retry_min_seconds"`
	RetryMaxSeconds     int `toml:"retry_max_seconds"`
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	ListenIntervalMs    int `toml:"listen_interval_ms"`
}

func (c Connection) validate() error {
	if c.RetryMinSeconds <= 0 {
		return fmt.Errorf("retry_min_seconds must be positive, got %d", c.RetryMinSeconds)
	}
	if c.RetryMaxSeconds < c.RetryMinSeconds {
		return fmt.Errorf(
			"retry_max_seconds (%d) must not be less than retry_min_seconds (%d)",
			c.RetryMaxSeconds, c.RetryMinSeconds,
		)
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive, got %d", c.PollIntervalSeconds)
	}
	if c.ListenIntervalMs <= 0 {
		return fmt.Errorf("listen_interval_ms must be positive, got %d", c.ListenIntervalMs)
	}
	return nil
}

// RetryBounds returns the backoff floor and ceiling.
func (c *Instance) RetryBounds() (floor, ceiling time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Connection.RetryMinSeconds) * time.Second,
		time.Duration(c.vals.Connection.RetryMaxSeconds) * time.Second
}

// PollInterval is the supervisor's sleep between health checks while connected.
func (c *Instance) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Connection.PollIntervalSeconds) * time.Second
}

// ListenInterval is the listener's sleep between non-blocking line reads.
func (c *Instance) ListenInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Connection.ListenIntervalMs) * time.Millisecond
}
