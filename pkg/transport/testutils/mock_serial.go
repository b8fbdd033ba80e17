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
	"errors"
	"time"

	"github.com/ZaparooProject/macropad/pkg/helpers/syncutil"
)

// MockSerialPort is an in-memory serial port. Bytes queued with Feed are
// returned by Read; bytes passed to Write are recorded.
type MockSerialPort struct {
	ReadError  error
	WriteError error
	CloseError error
	TimeoutErr error
	ResetErr   error
	ReadFunc   func(p []byte) (n int, err error)
	readData   []byte
	written    []byte
	resets     int
	closed     bool
	mu         syncutil.Mutex
}

// NewMockSerialPort returns an open port with nothing queued.
func NewMockSerialPort() *MockSerialPort {
	return &MockSerialPort{}
}

// Feed queues data to be returned by later reads.
func (m *MockSerialPort) Feed(data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readData = append(m.readData, data...)
}

func (m *MockSerialPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, errors.New("port closed")
	}
	readFunc := m.ReadFunc
	readErr := m.ReadError
	m.mu.Unlock()

	if readFunc != nil {
		return readFunc(p)
	}
	if readErr != nil {
		return 0, readErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.readData) == 0 {
		// behave like a port with a short read timeout
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	n := copy(p, m.readData)
	m.readData = m.readData[n:]
	return n, nil
}

func (m *MockSerialPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errors.New("port closed")
	}
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	m.written = append(m.written, p...)
	return len(p), nil
}

func (m *MockSerialPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.CloseError
}

func (m *MockSerialPort) SetReadTimeout(_ time.Duration) error {
	return m.TimeoutErr
}

// ResetInputBuffer drops anything queued so far, like the real call.
func (m *MockSerialPort) ResetInputBuffer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	if m.ResetErr != nil {
		return m.ResetErr
	}
	m.readData = nil
	return nil
}

// IsClosed reports whether Close has been called.
func (m *MockSerialPort) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Written returns everything written so far.
func (m *MockSerialPort) Written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.written)
}

// Resets counts ResetInputBuffer calls.
func (m *MockSerialPort) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}
