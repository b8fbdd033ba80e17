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

package service

import (
	"testing"
	"time"

	"github.com/ZaparooProject/macropad/pkg/bindings"
	"github.com/ZaparooProject/macropad/pkg/config"
	"github.com/ZaparooProject/macropad/pkg/helpers/command"
	"github.com/ZaparooProject/macropad/pkg/models"
	"github.com/ZaparooProject/macropad/pkg/testing/mocks"
	"github.com/ZaparooProject/macropad/pkg/transport/testutils"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

func testConfig() *config.Instance {
	return config.NewInstance(config.Paths{
		ConfigDir: "/config",
		DataDir:   "/data",
		LogDir:    "/data/logs",
	}, config.BaseDefaults)
}

func waitFor(t *testing.T, ch <-chan models.Status, state models.ConnectionState) models.Status {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case st, ok := <-ch:
			require.True(t, ok, "status channel closed")
			if st.State == state {
				return st
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", state)
			return models.Status{}
		}
	}
}

func TestStart_KeyPressRunsBoundCommand(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	tr := testutils.NewMemoryTransport("/dev/ttyACM0")
	exec := &mocks.MockCommandExecutor{}
	started := make(chan struct{}, 1)
	exec.On("StartWithOptions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { started <- struct{}{} }).
		Return(nil)

	cfg := testConfig()
	svc, err := Start(cfg, Options{
		Transport: tr,
		Fs:        fs,
		Executor:  exec,
		Clock:     clockwork.NewFakeClock(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Stop() })

	statuses, _ := svc.Subscribe(10)
	waitFor(t, statuses, models.StateConnected)

	require.NoError(t, svc.Macros.Set(1, "Button 1 pressed"))
	assert.Equal(t, []string{"SET1\tButton 1 pressed\n"}, tr.Writes())

	tr.Push("Button 1 pressed")
	select {
	case <-started:
	case <-time.After(waitTimeout):
		t.Fatal("bound command was not executed")
	}

	exists, err := afero.Exists(fs, "/data/macros.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStart_NilConfig(t *testing.T) {
	t.Parallel()

	_, err := Start(nil, Options{})
	require.Error(t, err)
}

func TestStop_ClosesTransport(t *testing.T) {
	t.Parallel()

	tr := testutils.NewMemoryTransport("/dev/ttyACM0")
	svc, err := Start(testConfig(), Options{
		Transport: tr,
		Fs:        afero.NewMemMapFs(),
		Executor:  &command.RealExecutor{},
		Clock:     clockwork.NewFakeClock(),
	})
	require.NoError(t, err)

	statuses, _ := svc.Subscribe(10)
	waitFor(t, statuses, models.StateConnected)

	require.NoError(t, svc.Stop())
	assert.False(t, tr.IsConnected())
	assert.Equal(t, 1, tr.Closes())

	select {
	case <-svc.Done():
	default:
		t.Fatal("done not closed after stop")
	}

	// second stop does nothing
	require.NoError(t, svc.Stop())
	assert.Equal(t, 1, tr.Closes())

	// subscriber channels are closed on shutdown
	for range statuses {
	}
}

func TestKeyStatus(t *testing.T) {
	t.Parallel()

	connected := KeyStatus(models.Status{State: models.StateConnected, Endpoint: "COM3"})
	assert.Len(t, connected, bindings.NumKeys)
	for _, k := range bindings.AllKeys() {
		assert.Equal(t, models.KeyStatusConnected, connected[k.EventName()])
	}

	for _, state := range []models.ConnectionState{models.StateDisconnected, models.StateConnecting} {
		st := KeyStatus(models.Status{State: state})
		assert.Equal(t, models.KeyStatusDisconnected, st["Button 5 pressed"])
	}
}

func TestOpenTable_Offline(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	tr := testutils.NewMemoryTransport()
	table, got := OpenTable(testConfig(), Options{Transport: tr, Fs: fs})
	assert.Same(t, tr, got)

	require.NoError(t, table.Set(4, "echo four"))
	assert.Empty(t, tr.Writes())

	reloaded := bindings.NewStore(fs, "/data/macros.json")
	assert.Equal(t, "echo four", reloaded.Get(4))
}
