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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/macropad/pkg/helpers/syncutil"
	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SchemaVersion is the config_schema value this build reads and writes.
const SchemaVersion = 1

// Values is the TOML layout of the config file.
type Values struct {
	Device       Device     `toml:"device"`
	Connection   Connection `toml:"connection"`
	Macros       Macros     `toml:"macros"`
	ConfigSchema int        `toml:"config_schema"`
	DebugLogging bool       `toml:"debug_logging"`
}

// BaseDefaults are used for any key the config file leaves out.
var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Device: Device{
		BaudRate:      9600,
		DataBits:      8,
		Parity:        ParityNone,
		StopBits:      1,
		SettleDelayMs: 2000,
	},
	Connection: Connection{
		RetryMinSeconds:     2,
		RetryMaxSeconds:     60,
		PollIntervalSeconds: 2,
		ListenIntervalMs:    10,
	},
	Macros: Macros{
		PushOnEdit: true,
	},
}

// Paths holds the directories the app reads and writes. It is resolved once
// at startup and handed to everything that touches the filesystem.
type Paths struct {
	ConfigDir string
	DataDir   string
	LogDir    string
}

// DefaultPaths returns the XDG locations for the current user.
func DefaultPaths() Paths {
	data := filepath.Join(xdg.DataHome, AppName)
	return Paths{
		ConfigDir: filepath.Join(xdg.ConfigHome, AppName),
		DataDir:   data,
		LogDir:    filepath.Join(data, LogsDir),
	}
}

// LogPath is the full path of the rotating log file.
func (p Paths) LogPath() string {
	return filepath.Join(p.LogDir, LogFile)
}

// Instance is the loaded config. All accessors are safe for concurrent use.
type Instance struct {
	paths    Paths
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads the config file named by CfgEnv, or config.toml in the
// config directory, writing the defaults first if it doesn't exist.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(paths Paths, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(paths.ConfigDir, CfgFile)
	}

	cfg := Instance{
		paths:    paths,
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// NewInstance builds an in-memory config that is never read from or
// written to disk. Used by tests and one-off CLI commands.
//
//nolint:gocritic // config struct copied for immutability
func NewInstance(paths Paths, vals Values) *Instance {
	return &Instance{
		paths:    paths,
		vals:     vals,
		defaults: vals,
	}
}

// Load rereads the config file over the defaults. The current values are
// kept if the file is unreadable or invalid.
func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	if err := newVals.Device.validate(); err != nil {
		return fmt.Errorf("invalid device config: %w", err)
	}
	if err := newVals.Connection.validate(); err != nil {
		return fmt.Errorf("invalid connection config: %w", err)
	}

	c.vals = newVals
	return nil
}

// Save writes the current values back to the config file.
func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Paths returns the directories the config was created with.
func (c *Instance) Paths() Paths {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paths
}

// DebugLogging reports whether debug logging is on.
func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

// SetDebugLogging toggles debug logging and updates the global log level.
func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
