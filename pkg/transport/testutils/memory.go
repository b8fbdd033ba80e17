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

package testutils

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ZaparooProject/macropad/pkg/helpers/syncutil"
)

var errMemoryNotConnected = errors.New("memory transport not connected")

// MemoryTransport implements transport.Transport over an in-memory line
// queue. Endpoints listed in Fail refuse to open. With HoldOpen set, Open
// waits until its context is done, like a board that never settles.
type MemoryTransport struct {
	Fail       map[string]bool
	WriteError error
	HoldOpen   bool
	endpoint   string
	Endpoints  []string
	lines      []string
	writes     []string
	opens      []string
	closes     int
	reads      int
	mu         syncutil.Mutex
	connected  bool
}

// NewMemoryTransport returns a disconnected transport listing endpoints.
func NewMemoryTransport(endpoints ...string) *MemoryTransport {
	return &MemoryTransport{
		Endpoints: endpoints,
		Fail:      make(map[string]bool),
	}
}

func (m *MemoryTransport) ListEndpoints() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Endpoints), nil
}

// SetEndpoints replaces the listed endpoints.
func (m *MemoryTransport) SetEndpoints(endpoints ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Endpoints = endpoints
}

// SetFail makes endpoint refuse to open, or open again.
func (m *MemoryTransport) SetFail(endpoint string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fail[endpoint] = fail
}

func (m *MemoryTransport) Open(ctx context.Context, endpoint string) error {
	m.mu.Lock()
	m.opens = append(m.opens, endpoint)
	hold := m.HoldOpen
	m.mu.Unlock()

	if hold {
		<-ctx.Done()
		return fmt.Errorf("open of %s cancelled: %w", endpoint, ctx.Err())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail[endpoint] {
		return fmt.Errorf("failed to open %s", endpoint)
	}
	// opening flushes anything queued before the connection
	m.lines = nil
	m.endpoint = endpoint
	m.connected = true
	return nil
}

func (m *MemoryTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MemoryTransport) Endpoint() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endpoint
}

func (m *MemoryTransport) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return errMemoryNotConnected
	}
	if m.WriteError != nil {
		m.connected = false
		m.endpoint = ""
		return m.WriteError
	}
	m.writes = append(m.writes, string(data))
	return nil
}

func (m *MemoryTransport) ReadLine() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if !m.connected || len(m.lines) == 0 {
		return "", false
	}
	line := m.lines[0]
	m.lines = m.lines[1:]
	return line, true
}

func (m *MemoryTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	m.connected = false
	m.endpoint = ""
	return nil
}

// Push queues a line as if the device had sent it.
func (m *MemoryTransport) Push(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
}

// Drop simulates the device disappearing.
func (m *MemoryTransport) Drop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

// Pending is the number of queued lines not yet read.
func (m *MemoryTransport) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines)
}

// Writes returns every payload written while connected.
func (m *MemoryTransport) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.writes)
}

// Opens returns every endpoint Open was called with, in order.
func (m *MemoryTransport) Opens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.opens)
}

// Closes counts Close calls.
func (m *MemoryTransport) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// Reads counts ReadLine calls.
func (m *MemoryTransport) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}
