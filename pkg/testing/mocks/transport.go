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

package mocks

import (
	"context"

	"github.com/ZaparooProject/macropad/pkg/transport"
	"github.com/stretchr/testify/mock"
)

// MockTransport is a testify mock for transport.Transport, for tests that
// need to assert exact calls. MemoryTransport in transport/testutils is a
// better fit when a working fake is enough.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) ListEndpoints() ([]string, error) {
	args := m.Called()
	endpoints, _ := args.Get(0).([]string)
	//nolint:wrapcheck // mock returns are wrapped by the caller
	return endpoints, args.Error(1)
}

func (m *MockTransport) Open(ctx context.Context, endpoint string) error {
	args := m.Called(ctx, endpoint)
	//nolint:wrapcheck // mock returns are wrapped by the caller
	return args.Error(0)
}

func (m *MockTransport) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockTransport) Endpoint() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTransport) Write(data []byte) error {
	args := m.Called(data)
	//nolint:wrapcheck // mock returns are wrapped by the caller
	return args.Error(0)
}

func (m *MockTransport) ReadLine() (string, bool) {
	args := m.Called()
	return args.String(0), args.Bool(1)
}

func (m *MockTransport) Close() error {
	args := m.Called()
	//nolint:wrapcheck // mock returns are wrapped by the caller
	return args.Error(0)
}

var _ transport.Transport = (*MockTransport)(nil)
