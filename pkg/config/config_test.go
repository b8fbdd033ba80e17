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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		ConfigDir: filepath.Join(dir, "config"),
		DataDir:   filepath.Join(dir, "data"),
		LogDir:    filepath.Join(dir, "data", "logs"),
	}
}

// Tests below use t.Setenv and can't run in parallel.

func TestNewConfig_WritesDefaults(t *testing.T) {
	t.Setenv(CfgEnv, "")
	paths := testPaths(t)

	cfg, err := NewConfig(paths, BaseDefaults)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(paths.ConfigDir, CfgFile))
	require.NoError(t, err)

	floor, ceiling := cfg.RetryBounds()
	assert.Equal(t, 2*time.Second, floor)
	assert.Equal(t, 60*time.Second, ceiling)
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Equal(t, 10*time.Millisecond, cfg.ListenInterval())
	assert.Equal(t, 2*time.Second, cfg.SettleDelay())
	assert.Equal(t, 9600, cfg.Device().BaudRate)
	assert.True(t, cfg.PushOnEdit())
	assert.Equal(t, filepath.Join(paths.DataDir, MacrosFile), cfg.MacrosPath())
}

func TestNewConfig_EnvOverride(t *testing.T) {
	paths := testPaths(t)
	cfgPath := filepath.Join(t.TempDir(), "custom.toml")
	t.Setenv(CfgEnv, cfgPath)

	_, err := NewConfig(paths, BaseDefaults)
	require.NoError(t, err)

	_, err = os.Stat(cfgPath)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(paths.ConfigDir, CfgFile))
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	t.Setenv(CfgEnv, cfgPath)

	data := `config_schema = 1

[device]
baud_rate = 115200
parity = "e"
ports = ["/dev/ttyUSB0"]

[connection]
retry_min_seconds = 1
retry_max_seconds = 5

[macros]
file = "pad.json"
push_on_edit = false
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(data), 0o600))

	paths := testPaths(t)
	cfg, err := NewConfig(paths, BaseDefaults)
	require.NoError(t, err)

	dev := cfg.Device()
	assert.Equal(t, 115200, dev.BaudRate)
	assert.Equal(t, 8, dev.DataBits, "unset keys keep their defaults")
	assert.Equal(t, []string{"/dev/ttyUSB0"}, dev.Ports)

	floor, ceiling := cfg.RetryBounds()
	assert.Equal(t, time.Second, floor)
	assert.Equal(t, 5*time.Second, ceiling)
	assert.False(t, cfg.PushOnEdit())
	assert.Equal(t, filepath.Join(paths.DataDir, "pad.json"), cfg.MacrosPath())
}

func TestLoad_SchemaMismatch(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	t.Setenv(CfgEnv, cfgPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte("config_schema = 99\n"), 0o600))

	_, err := NewConfig(testPaths(t), BaseDefaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version mismatch")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "zero baud",
			body: "[device]\nbaud_rate = 0\n",
			want: "baud rate",
		},
		{
			name: "bad parity",
			body: "[device]\nparity = \"X\"\n",
			want: "parity",
		},
		{
			name: "three stop bits",
			body: "[device]\nstop_bits = 3\n",
			want: "stop bits",
		},
		{
			name: "ceiling below floor",
			body: "[connection]\nretry_min_seconds = 10\nretry_max_seconds = 5\n",
			want: "retry_max_seconds",
		},
		{
			name: "zero listen interval",
			body: "[connection]\nlisten_interval_ms = 0\n",
			want: "listen_interval_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), CfgFile)
			t.Setenv(CfgEnv, cfgPath)
			body := "config_schema = 1\n" + tt.body
			require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

			_, err := NewConfig(testPaths(t), BaseDefaults)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	t.Setenv(CfgEnv, cfgPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte("[device\n"), 0o600))

	_, err := NewConfig(testPaths(t), BaseDefaults)
	require.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	t.Setenv(CfgEnv, cfgPath)

	cfg, err := NewConfig(testPaths(t), BaseDefaults)
	require.NoError(t, err)

	cfg.SetPorts([]string{"COM3", "COM4"})
	cfg.SetPushOnEdit(false)
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfig(testPaths(t), BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, []string{"COM3", "COM4"}, reloaded.Device().Ports)
	assert.False(t, reloaded.PushOnEdit())
}

func TestNewInstance_NoDisk(t *testing.T) {
	t.Parallel()

	cfg := NewInstance(Paths{DataDir: "/data"}, BaseDefaults)
	assert.Equal(t, filepath.Join("/data", MacrosFile), cfg.MacrosPath())
	require.Error(t, cfg.Load())
	require.Error(t, cfg.Save())
}

func TestMacrosPath_Absolute(t *testing.T) {
	t.Parallel()

	vals := BaseDefaults
	abs := filepath.Join(t.TempDir(), "pad.json")
	vals.Macros.File = abs
	cfg := NewInstance(Paths{DataDir: "/data"}, vals)
	assert.Equal(t, abs, cfg.MacrosPath())
}

func TestDevice_ReturnsCopy(t *testing.T) {
	t.Parallel()

	cfg := NewInstance(Paths{}, BaseDefaults)
	cfg.SetPorts([]string{"/dev/ttyACM0"})

	dev := cfg.Device()
	dev.Ports[0] = "changed"
	assert.Equal(t, []string{"/dev/ttyACM0"}, cfg.Device().Ports)
}
